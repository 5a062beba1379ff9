package port

import (
	"context"
	"time"

	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/entity"
)

// OfferRepository defines persistence operations for Offer.
type OfferRepository interface {
	Create(ctx context.Context, offer *entity.Offer) error
	GetByID(ctx context.Context, id int64) (*entity.Offer, error)
	ListPublished(ctx context.Context, limit, offset int) ([]*entity.Offer, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error

	// AdmitOne atomically increments filled_positions, guarded by remaining
	// capacity and published status. Returns entity.ErrCapacityExceeded when
	// the conditional update matches no row.
	AdmitOne(ctx context.Context, id int64) error

	// ReleaseOne decrements filled_positions, flooring at zero.
	ReleaseOne(ctx context.Context, id int64) error
}

// ApplicationRepository defines persistence operations for Application.
type ApplicationRepository interface {
	Create(ctx context.Context, app *entity.Application) error
	GetByID(ctx context.Context, id int64) (*entity.Application, error)
	GetByStudentAndOffer(ctx context.Context, studentID, offerID int64) (*entity.Application, error)
	ListByOffer(ctx context.Context, offerID int64) ([]*entity.Application, error)
	UpdateStatus(ctx context.Context, app *entity.Application) error
	Delete(ctx context.Context, id int64) error

	// CountBlockingDeletion counts applications whose status is outside
	// {rejected, withdrawn}; an offer with any such application cannot be deleted.
	CountBlockingDeletion(ctx context.Context, offerID int64) (int, error)
}

// ApplicationHistoryRepository defines persistence operations for the
// application transition audit trail.
type ApplicationHistoryRepository interface {
	Create(ctx context.Context, history *entity.ApplicationHistory) error
	ListByApplicationID(ctx context.Context, applicationID int64) ([]*entity.ApplicationHistory, error)
}

// InternshipRepository defines persistence operations for Internship.
type InternshipRepository interface {
	Create(ctx context.Context, internship *entity.Internship) error
	GetByID(ctx context.Context, id int64) (*entity.Internship, error)
	GetByApplicationID(ctx context.Context, applicationID int64) (*entity.Internship, error)
	UpdateStatus(ctx context.Context, id int64, status string) error

	// AddCompletedHours atomically accrues validated hours onto the internship.
	AddCompletedHours(ctx context.Context, id int64, hours float64) error

	// PromoteStarted moves upcoming internships whose start date has passed to
	// active. Returns the number of rows transitioned.
	PromoteStarted(ctx context.Context, now time.Time) (int64, error)

	// CompleteEnded moves active internships whose end date has passed to
	// completed. Returns the number of rows transitioned.
	CompleteEnded(ctx context.Context, now time.Time) (int64, error)
}

// AttendanceRepository defines persistence operations for AttendanceRecord.
type AttendanceRepository interface {
	Create(ctx context.Context, record *entity.AttendanceRecord) error
	GetByID(ctx context.Context, id int64) (*entity.AttendanceRecord, error)
	GetByInternshipAndDate(ctx context.Context, internshipID int64, date time.Time) (*entity.AttendanceRecord, error)
	ListByInternship(ctx context.Context, internshipID int64) ([]*entity.AttendanceRecord, error)

	// UpdateTimes applies check-in/check-out with COALESCE semantics: a nil
	// argument leaves the stored value untouched. Status is not reset.
	UpdateTimes(ctx context.Context, id int64, checkIn, checkOut *string, notes string) error

	// UpdateValidation writes the validation outcome: status, computed hours,
	// accumulated notes, validator and timestamp.
	UpdateValidation(ctx context.Context, record *entity.AttendanceRecord) error
}

// LogbookRepository defines persistence operations for LogbookEntry.
type LogbookRepository interface {
	Create(ctx context.Context, entry *entity.LogbookEntry) error
	GetByID(ctx context.Context, id int64) (*entity.LogbookEntry, error)
	ListByInternship(ctx context.Context, internshipID int64) ([]*entity.LogbookEntry, error)
	Update(ctx context.Context, entry *entity.LogbookEntry) error
	UpdateReview(ctx context.Context, entry *entity.LogbookEntry) error
	Delete(ctx context.Context, id int64) error
}

// EvaluationRepository defines persistence operations for Evaluation.
type EvaluationRepository interface {
	Create(ctx context.Context, evaluation *entity.Evaluation) error
	GetByID(ctx context.Context, id int64) (*entity.Evaluation, error)
	ListByInternship(ctx context.Context, internshipID int64) ([]*entity.Evaluation, error)
	Update(ctx context.Context, evaluation *entity.Evaluation) error
}

// NotificationRepository defines persistence operations for Notification.
type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id, userID int64) error
	CountUnread(ctx context.Context, userID int64) (int, error)
}

// PreferenceRepository defines persistence operations for notification
// preferences. Missing rows resolve to the default preference set.
type PreferenceRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*entity.NotificationPreference, error)
	Upsert(ctx context.Context, pref *entity.NotificationPreference) error
}

// ServiceRepository defines read operations for hospital services, used for
// the head-doctor validation guard.
type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.HospitalService, error)
}

// TransactionManager manages database transactions at the application layer.
type TransactionManager interface {
	// WithTransaction executes fn within a transaction. The transaction is
	// carried in the context; nested calls reuse the outer transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
