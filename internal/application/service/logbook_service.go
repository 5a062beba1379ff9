package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/application/dispatcher"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/application/port"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/entity"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/event"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/workflow"
	"github.com/AymenZahed/pgsm-internship-management-sub002/pkg/utils"
	"github.com/go-playground/validator/v10"
)

// CreateLogbookInput carries a student's dated activity report.
type CreateLogbookInput struct {
	InternshipID       int64  `validate:"required,gt=0"`
	Date               string `validate:"required,datetime=2006-01-02"`
	Activities         string `validate:"required,max=8000"`
	LearningObjectives string `validate:"max=4000"`
}

// UpdateLogbookInput carries a student's edit of an existing entry.
type UpdateLogbookInput struct {
	Activities         string `validate:"required,max=8000"`
	LearningObjectives string `validate:"max=4000"`
}

// ReviewLogbookInput carries a supervisor's review decision.
type ReviewLogbookInput struct {
	Status   string `validate:"required"`
	Comments string `validate:"max=4000"`
}

// LogbookService drives the logbook entry lifecycle: student submission and
// editing, and supervisor review with the resubmission loop.
type LogbookService interface {
	Create(ctx context.Context, actor entity.Actor, input CreateLogbookInput) (*entity.LogbookEntry, error)
	Get(ctx context.Context, id int64) (*entity.LogbookEntry, error)
	ListByInternship(ctx context.Context, internshipID int64) ([]*entity.LogbookEntry, error)
	Update(ctx context.Context, actor entity.Actor, entryID int64, input UpdateLogbookInput) (*entity.LogbookEntry, error)
	Delete(ctx context.Context, actor entity.Actor, entryID int64) error
	Review(ctx context.Context, actor entity.Actor, entryID int64, input ReviewLogbookInput) error
}

type logbookServiceImpl struct {
	logbookRepo    port.LogbookRepository
	internshipRepo port.InternshipRepository
	events         dispatcher.Dispatcher
	validate       *validator.Validate
	logger         Logger
	now            func() time.Time
}

// NewLogbookService creates a new LogbookService
func NewLogbookService(
	logbookRepo port.LogbookRepository,
	internshipRepo port.InternshipRepository,
	events dispatcher.Dispatcher,
	logger Logger,
) LogbookService {
	return &logbookServiceImpl{
		logbookRepo:    logbookRepo,
		internshipRepo: internshipRepo,
		events:         events,
		validate:       validator.New(),
		logger:         logger,
		now:            time.Now,
	}
}

// Create submits a new logbook entry in pending status.
func (s *logbookServiceImpl) Create(ctx context.Context, actor entity.Actor, input CreateLogbookInput) (*entity.LogbookEntry, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}

	internship, err := s.internshipRepo.GetByID(ctx, input.InternshipID)
	if err != nil {
		return nil, err
	}
	if actor.Role != entity.RoleStudent || actor.ID != internship.StudentID {
		return nil, fmt.Errorf("internship %d belongs to another student: %w", internship.ID, entity.ErrForbidden)
	}
	if internship.Status != entity.InternshipStatusActive {
		return nil, fmt.Errorf("internship %d is %s: %w", internship.ID, internship.Status, entity.ErrInvalidState)
	}

	date, err := utils.ParseDate(input.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}

	entry := &entity.LogbookEntry{
		InternshipID:       internship.ID,
		StudentID:          actor.ID,
		Date:               date,
		Activities:         input.Activities,
		LearningObjectives: input.LearningObjectives,
		Status:             entity.LogbookStatusPending,
	}
	if err := s.logbookRepo.Create(ctx, entry); err != nil {
		s.logger.Error("Failed to create logbook entry", "error", err, "internship_id", internship.ID)
		return nil, err
	}

	s.logger.Info("Logbook entry created", "id", entry.ID, "internship_id", internship.ID, "date", input.Date)

	s.publish(ctx, event.New(event.TypeLogbookSubmitted, entry.ID, map[string]interface{}{
		"student_id":    actor.ID,
		"internship_id": internship.ID,
		"hospital_id":   internship.HospitalID,
		"date":          input.Date,
	}))

	return entry, nil
}

// Get retrieves a logbook entry by ID.
func (s *logbookServiceImpl) Get(ctx context.Context, id int64) (*entity.LogbookEntry, error) {
	return s.logbookRepo.GetByID(ctx, id)
}

// ListByInternship retrieves all logbook entries of an internship.
func (s *logbookServiceImpl) ListByInternship(ctx context.Context, internshipID int64) ([]*entity.LogbookEntry, error) {
	return s.logbookRepo.ListByInternship(ctx, internshipID)
}

// Update edits an entry that is not yet approved. Any edit resets the entry to
// pending and clears the previous review, restarting the review loop.
func (s *logbookServiceImpl) Update(ctx context.Context, actor entity.Actor, entryID int64, input UpdateLogbookInput) (*entity.LogbookEntry, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}

	entry, err := s.logbookRepo.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if actor.Role != entity.RoleStudent || actor.ID != entry.StudentID {
		return nil, fmt.Errorf("logbook entry %d belongs to another student: %w", entryID, entity.ErrForbidden)
	}
	if !entry.Editable() {
		return nil, fmt.Errorf("logbook entry %d is approved: %w", entryID, entity.ErrInvalidState)
	}

	entry.Activities = input.Activities
	entry.LearningObjectives = input.LearningObjectives
	entry.Status = entity.LogbookStatusPending
	entry.SupervisorComments = nil
	entry.ReviewedBy = nil
	entry.ReviewedAt = nil

	if err := s.logbookRepo.Update(ctx, entry); err != nil {
		s.logger.Error("Failed to update logbook entry", "error", err, "id", entryID)
		return nil, err
	}

	s.logger.Info("Logbook entry updated", "id", entryID, "student_id", actor.ID)
	return entry, nil
}

// Delete removes an entry that is not yet approved.
func (s *logbookServiceImpl) Delete(ctx context.Context, actor entity.Actor, entryID int64) error {
	entry, err := s.logbookRepo.GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if actor.Role != entity.RoleStudent || actor.ID != entry.StudentID {
		return fmt.Errorf("logbook entry %d belongs to another student: %w", entryID, entity.ErrForbidden)
	}
	if !entry.Editable() {
		return fmt.Errorf("logbook entry %d is approved: %w", entryID, entity.ErrInvalidState)
	}

	if err := s.logbookRepo.Delete(ctx, entryID); err != nil {
		s.logger.Error("Failed to delete logbook entry", "error", err, "id", entryID)
		return err
	}

	s.logger.Info("Logbook entry deleted", "id", entryID, "student_id", actor.ID)
	return nil
}

// Review applies a supervisor's decision: approve or request revision.
func (s *logbookServiceImpl) Review(ctx context.Context, actor entity.Actor, entryID int64, input ReviewLogbookInput) error {
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}

	entry, err := s.logbookRepo.GetByID(ctx, entryID)
	if err != nil {
		return err
	}

	internship, err := s.internshipRepo.GetByID(ctx, entry.InternshipID)
	if err != nil {
		return err
	}
	if err := requireReviewer(actor, internship); err != nil {
		return err
	}

	trigger, err := workflow.LogbookTriggerFor(input.Status)
	if err != nil {
		return fmt.Errorf("%w: logbook status %q", entity.ErrValidation, input.Status)
	}

	machine := workflow.NewLogbookMachine(workflow.State(entry.Status))
	if err := machine.Fire(ctx, trigger); err != nil {
		return fmt.Errorf("logbook entry %d cannot move from %s to %s: %w",
			entryID, entry.Status, input.Status, entity.ErrInvalidState)
	}

	reviewedAt := s.now()
	entry.Status = machine.State().String()
	entry.ReviewedBy = &actor.ID
	entry.ReviewedAt = &reviewedAt
	if input.Comments != "" {
		comments := input.Comments
		entry.SupervisorComments = &comments
	}

	if err := s.logbookRepo.UpdateReview(ctx, entry); err != nil {
		s.logger.Error("Failed to review logbook entry", "error", err, "id", entryID, "status", input.Status)
		return err
	}

	s.logger.Info("Logbook entry reviewed", "id", entryID, "status", entry.Status, "reviewer_id", actor.ID)

	s.publish(ctx, event.New(event.TypeLogbookReviewed, entry.ID, map[string]interface{}{
		"student_id":    entry.StudentID,
		"internship_id": entry.InternshipID,
		"status":        entry.Status,
		"date":          entry.Date.Format(utils.DateLayout),
	}))

	return nil
}

// requireReviewer authorizes logbook review: only the internship's assigned
// tutor or an admin.
func requireReviewer(actor entity.Actor, internship *entity.Internship) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.Role == entity.RoleDoctor && internship.TutorID != nil && *internship.TutorID == actor.ID {
		return nil
	}
	return fmt.Errorf("actor %d may not review for internship %d: %w", actor.ID, internship.ID, entity.ErrForbidden)
}

func (s *logbookServiceImpl) publish(ctx context.Context, evt *event.Event) {
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Event dispatch failed", "event_type", evt.Type, "event_id", evt.ID, "error", err)
	}
}
