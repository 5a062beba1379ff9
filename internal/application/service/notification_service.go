package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/application/dispatcher"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/application/port"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/entity"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/event"
)

// NotificationService receives domain events and fans them out: one persisted
// in-app notification per recipient, plus a best-effort email filtered by the
// recipient's preferences. It also serves the read-side queries.
type NotificationService interface {
	// Notify persists an in-app notification and enqueues an email when the
	// recipient's preferences allow it.
	Notify(ctx context.Context, userID int64, notificationType, title, message string, data map[string]interface{}) error

	List(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, actor entity.Actor, notificationID int64) error
	CountUnread(ctx context.Context, userID int64) (int, error)

	GetPreferences(ctx context.Context, userID int64) (*entity.NotificationPreference, error)
	UpdatePreferences(ctx context.Context, actor entity.Actor, pref *entity.NotificationPreference) error

	// RegisterHandlers subscribes the fan-out handlers to the dispatcher.
	RegisterHandlers(d dispatcher.Dispatcher)
}

type notificationServiceImpl struct {
	notificationRepo port.NotificationRepository
	preferenceRepo   port.PreferenceRepository
	emails           port.EmailEnqueuer
	logger           Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notificationRepo port.NotificationRepository,
	preferenceRepo port.PreferenceRepository,
	emails port.EmailEnqueuer,
	logger Logger,
) NotificationService {
	return &notificationServiceImpl{
		notificationRepo: notificationRepo,
		preferenceRepo:   preferenceRepo,
		emails:           emails,
		logger:           logger,
	}
}

// Notify persists the in-app notification row, then enqueues the email if the
// recipient's preferences allow delivery for this type. The email leg never
// fails the call.
func (s *notificationServiceImpl) Notify(ctx context.Context, userID int64, notificationType, title, message string, data map[string]interface{}) error {
	notification := &entity.Notification{
		UserID:  userID,
		Type:    notificationType,
		Title:   title,
		Message: message,
	}
	if len(data) > 0 {
		encoded, err := json.Marshal(data)
		if err != nil {
			s.logger.Warn("Failed to encode notification data", "error", err, "user_id", userID)
		} else {
			notification.Data = string(encoded)
		}
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	pref, err := s.preferenceRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to load notification preferences, skipping email",
			"error", err, "user_id", userID)
		return nil
	}
	if pref.AllowsEmail(notificationType) {
		s.emails.Enqueue(userID, title, message)
	}

	return nil
}

// List retrieves a user's notifications, newest first.
func (s *notificationServiceImpl) List(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.notificationRepo.ListByUser(ctx, userID, unreadOnly, limit, offset)
}

// MarkRead marks one of the actor's own notifications as read.
func (s *notificationServiceImpl) MarkRead(ctx context.Context, actor entity.Actor, notificationID int64) error {
	return s.notificationRepo.MarkRead(ctx, notificationID, actor.ID)
}

// CountUnread returns the number of unread notifications for a user.
func (s *notificationServiceImpl) CountUnread(ctx context.Context, userID int64) (int, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

// GetPreferences retrieves a user's preferences, defaulting to all-enabled.
func (s *notificationServiceImpl) GetPreferences(ctx context.Context, userID int64) (*entity.NotificationPreference, error) {
	return s.preferenceRepo.GetByUserID(ctx, userID)
}

// UpdatePreferences upserts the actor's own preference row.
func (s *notificationServiceImpl) UpdatePreferences(ctx context.Context, actor entity.Actor, pref *entity.NotificationPreference) error {
	if !actor.IsAdmin() && actor.ID != pref.UserID {
		return fmt.Errorf("preferences belong to another user: %w", entity.ErrForbidden)
	}
	if err := s.preferenceRepo.Upsert(ctx, pref); err != nil {
		s.logger.Error("Failed to update notification preferences", "error", err, "user_id", pref.UserID)
		return err
	}
	s.logger.Info("Notification preferences updated", "user_id", pref.UserID)
	return nil
}

// RegisterHandlers wires the workflow events to their notification fan-out.
func (s *notificationServiceImpl) RegisterHandlers(d dispatcher.Dispatcher) {
	d.Subscribe(event.TypeApplicationSubmitted, "notify_hospital_of_application", s.onApplicationSubmitted)
	d.Subscribe(event.TypeApplicationReviewing, "notify_student_of_review", s.onApplicationReviewing)
	d.Subscribe(event.TypeApplicationAccepted, "notify_student_of_acceptance", s.onApplicationAccepted)
	d.Subscribe(event.TypeApplicationRejected, "notify_student_of_rejection", s.onApplicationRejected)
	d.Subscribe(event.TypeAttendanceValidated, "notify_student_of_attendance", s.onAttendanceValidated)
	d.Subscribe(event.TypeLogbookSubmitted, "notify_hospital_of_logbook", s.onLogbookSubmitted)
	d.Subscribe(event.TypeLogbookReviewed, "notify_student_of_logbook_review", s.onLogbookReviewed)
	d.Subscribe(event.TypeEvaluationSubmitted, "notify_student_of_evaluation", s.onEvaluationScored)
	d.Subscribe(event.TypeEvaluationAmended, "notify_student_of_evaluation_amendment", s.onEvaluationScored)
}

func (s *notificationServiceImpl) onApplicationSubmitted(ctx context.Context, evt *event.Event) error {
	hospitalID := evt.GetInt("hospital_id")
	if hospitalID == 0 {
		return nil
	}
	return s.Notify(ctx, hospitalID, entity.NotificationTypeApplicationStatus,
		"New application received",
		fmt.Sprintf("A new application was submitted for %q.", evt.GetString("offer_title")),
		map[string]interface{}{"application_id": evt.SubjectID, "offer_id": evt.GetInt("offer_id")},
	)
}

func (s *notificationServiceImpl) onApplicationReviewing(ctx context.Context, evt *event.Event) error {
	return s.Notify(ctx, evt.GetInt("student_id"), entity.NotificationTypeApplicationStatus,
		"Application under review",
		fmt.Sprintf("Your application for %q is now under review.", evt.GetString("offer_title")),
		map[string]interface{}{"application_id": evt.SubjectID},
	)
}

func (s *notificationServiceImpl) onApplicationAccepted(ctx context.Context, evt *event.Event) error {
	if err := s.Notify(ctx, evt.GetInt("student_id"), entity.NotificationTypeApplicationStatus,
		"Application accepted",
		fmt.Sprintf("Congratulations! Your application for %q was accepted.", evt.GetString("offer_title")),
		map[string]interface{}{"application_id": evt.SubjectID},
	); err != nil {
		return err
	}

	internshipID := evt.GetInt("internship_id")
	if internshipID == 0 {
		return nil
	}
	return s.Notify(ctx, evt.GetInt("student_id"), entity.NotificationTypeInternship,
		"Internship created",
		fmt.Sprintf("Your internship for %q has been set up.", evt.GetString("offer_title")),
		map[string]interface{}{"internship_id": internshipID, "status": evt.GetString("internship_status")},
	)
}

func (s *notificationServiceImpl) onApplicationRejected(ctx context.Context, evt *event.Event) error {
	message := fmt.Sprintf("Your application for %q was not retained.", evt.GetString("offer_title"))
	if reason := evt.GetString("rejection_reason"); reason != "" {
		message = fmt.Sprintf("%s Reason: %s", message, reason)
	}
	return s.Notify(ctx, evt.GetInt("student_id"), entity.NotificationTypeApplicationStatus,
		"Application rejected", message,
		map[string]interface{}{"application_id": evt.SubjectID},
	)
}

func (s *notificationServiceImpl) onAttendanceValidated(ctx context.Context, evt *event.Event) error {
	return s.Notify(ctx, evt.GetInt("student_id"), entity.NotificationTypeAttendance,
		"Attendance validated",
		fmt.Sprintf("Your attendance for %s was marked %s.", evt.GetString("date"), evt.GetString("status")),
		map[string]interface{}{"record_id": evt.SubjectID, "internship_id": evt.GetInt("internship_id")},
	)
}

func (s *notificationServiceImpl) onLogbookSubmitted(ctx context.Context, evt *event.Event) error {
	hospitalID := evt.GetInt("hospital_id")
	if hospitalID == 0 {
		return nil
	}
	return s.Notify(ctx, hospitalID, entity.NotificationTypeLogbook,
		"New logbook entry",
		fmt.Sprintf("A logbook entry for %s awaits review.", evt.GetString("date")),
		map[string]interface{}{"entry_id": evt.SubjectID, "internship_id": evt.GetInt("internship_id")},
	)
}

func (s *notificationServiceImpl) onLogbookReviewed(ctx context.Context, evt *event.Event) error {
	return s.Notify(ctx, evt.GetInt("student_id"), entity.NotificationTypeLogbook,
		"Logbook entry reviewed",
		fmt.Sprintf("Your logbook entry for %s was %s.", evt.GetString("date"), evt.GetString("status")),
		map[string]interface{}{"entry_id": evt.SubjectID, "internship_id": evt.GetInt("internship_id")},
	)
}

func (s *notificationServiceImpl) onEvaluationScored(ctx context.Context, evt *event.Event) error {
	message := fmt.Sprintf("A %s evaluation of your internship was recorded.", evt.GetString("type"))
	if _, ok := evt.Payload["overall_score"]; ok {
		message = fmt.Sprintf("%s Overall score: %.2f.", message, evt.GetFloat("overall_score"))
	}
	return s.Notify(ctx, evt.GetInt("student_id"), entity.NotificationTypeEvaluation,
		"Evaluation recorded", message,
		map[string]interface{}{"evaluation_id": evt.SubjectID, "internship_id": evt.GetInt("internship_id")},
	)
}
