package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/entity"
	"github.com/AymenZahed/pgsm-internship-management-sub002/pkg/database"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// ApplicationRepository handles application database operations.
type ApplicationRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *database.DB, logger *zap.Logger) *ApplicationRepository {
	return &ApplicationRepository{
		db:     db,
		logger: logger,
	}
}

const applicationColumns = `
	id, student_id, offer_id, status, cover_letter, motivation, experience,
	availability_date, rejection_reason, reviewed_by, reviewed_at, created_at, updated_at
`

// Create inserts a new pending application. The unique (student_id, offer_id)
// index turns a duplicate submission into entity.ErrDuplicateApplication.
func (r *ApplicationRepository) Create(ctx context.Context, app *entity.Application) error {
	if app.Status == "" {
		app.Status = entity.ApplicationStatusPending
	}

	query := `
		INSERT INTO applications (
			student_id, offer_id, status, cover_letter, motivation, experience, availability_date
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		app.StudentID,
		app.OfferID,
		app.Status,
		app.CoverLetter,
		app.Motivation,
		app.Experience,
		app.AvailabilityDate,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("student %d already applied to offer %d: %w",
				app.StudentID, app.OfferID, entity.ErrDuplicateApplication)
		}
		r.logger.Error("Failed to create application", zap.Error(err))
		return fmt.Errorf("failed to create application: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	app.ID = id
	return nil
}

// GetByID retrieves an application by ID.
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*entity.Application, error) {
	query := `SELECT` + applicationColumns + `FROM applications WHERE id = ?`

	app, err := r.scanApplication(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("application %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get application", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return app, nil
}

// GetByStudentAndOffer retrieves the application a student made to an offer,
// if any.
func (r *ApplicationRepository) GetByStudentAndOffer(ctx context.Context, studentID, offerID int64) (*entity.Application, error) {
	query := `SELECT` + applicationColumns + `FROM applications WHERE student_id = ? AND offer_id = ?`

	app, err := r.scanApplication(r.db.Executor(ctx).QueryRowContext(ctx, query, studentID, offerID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("application for student %d on offer %d: %w", studentID, offerID, entity.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get application by student and offer",
			zap.Int64("student_id", studentID), zap.Int64("offer_id", offerID), zap.Error(err))
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return app, nil
}

// ListByOffer retrieves all applications targeting an offer, oldest first.
func (r *ApplicationRepository) ListByOffer(ctx context.Context, offerID int64) ([]*entity.Application, error) {
	query := `SELECT` + applicationColumns + `FROM applications WHERE offer_id = ? ORDER BY created_at ASC`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, offerID)
	if err != nil {
		r.logger.Error("Failed to list applications", zap.Int64("offer_id", offerID), zap.Error(err))
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []*entity.Application
	for rows.Next() {
		app, err := r.scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

// UpdateStatus writes the application's status together with reviewer
// attribution and the optional rejection reason.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, app *entity.Application) error {
	query := `
		UPDATE applications
		SET status = ?, rejection_reason = ?, reviewed_by = ?, reviewed_at = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		app.Status,
		app.RejectionReason,
		app.ReviewedBy,
		app.ReviewedAt,
		app.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update application status",
			zap.Int64("id", app.ID), zap.String("status", app.Status), zap.Error(err))
		return fmt.Errorf("failed to update application status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("application %d: %w", app.ID, entity.ErrNotFound)
	}

	return nil
}

// Delete permanently removes an application. Withdrawal uses this; the
// transition history row written alongside is the only surviving trace.
func (r *ApplicationRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx, `DELETE FROM applications WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete application", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete application: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("application %d: %w", id, entity.ErrNotFound)
	}

	return nil
}

// CountBlockingDeletion counts applications whose status blocks offer
// deletion, i.e. everything outside {rejected, withdrawn}.
func (r *ApplicationRepository) CountBlockingDeletion(ctx context.Context, offerID int64) (int, error) {
	query := `SELECT COUNT(*) FROM applications WHERE offer_id = ? AND status NOT IN (?, ?)`

	var count int
	err := r.db.Executor(ctx).QueryRowContext(ctx, query,
		offerID, entity.ApplicationStatusRejected, entity.ApplicationStatusWithdrawn,
	).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count blocking applications", zap.Int64("offer_id", offerID), zap.Error(err))
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}

	return count, nil
}

func (r *ApplicationRepository) scanApplication(row rowScanner) (*entity.Application, error) {
	var app entity.Application
	var coverLetter, motivation, experience sql.NullString
	var availabilityDate, reviewedAt sql.NullTime
	var rejectionReason sql.NullString
	var reviewedBy sql.NullInt64

	err := row.Scan(
		&app.ID,
		&app.StudentID,
		&app.OfferID,
		&app.Status,
		&coverLetter,
		&motivation,
		&experience,
		&availabilityDate,
		&rejectionReason,
		&reviewedBy,
		&reviewedAt,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	app.CoverLetter = coverLetter.String
	app.Motivation = motivation.String
	app.Experience = experience.String
	if availabilityDate.Valid {
		t := availabilityDate.Time
		app.AvailabilityDate = &t
	}
	if rejectionReason.Valid {
		s := rejectionReason.String
		app.RejectionReason = &s
	}
	if reviewedBy.Valid {
		app.ReviewedBy = &reviewedBy.Int64
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		app.ReviewedAt = &t
	}

	return &app, nil
}

// isUniqueViolation reports whether the error is a sqlite unique constraint
// failure.
func isUniqueViolation(err error) bool {
	if sqliteErr, ok := err.(sqlite3.Error); ok {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
