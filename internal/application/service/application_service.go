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
	"github.com/go-playground/validator/v10"
)

// CreateApplicationInput carries a student's application to an offer.
type CreateApplicationInput struct {
	OfferID          int64   `validate:"required,gt=0"`
	CoverLetter      string  `validate:"max=4000"`
	Motivation       string  `validate:"max=4000"`
	Experience       string  `validate:"max=4000"`
	AvailabilityDate *string `validate:"omitempty,datetime=2006-01-02"`
}

// SetApplicationStatusInput carries a hospital's review decision.
type SetApplicationStatusInput struct {
	Status          string `validate:"required"`
	RejectionReason string `validate:"max=2000"`
	Note            string `validate:"max=2000"`
}

// ApplicationService drives the application lifecycle: creation against a
// published offer, hospital review, the transactional acceptance that creates
// the internship, and student withdrawal.
type ApplicationService interface {
	Create(ctx context.Context, actor entity.Actor, input CreateApplicationInput) (*entity.Application, error)
	Get(ctx context.Context, id int64) (*entity.Application, error)
	SetStatus(ctx context.Context, actor entity.Actor, applicationID int64, input SetApplicationStatusInput) error
	Withdraw(ctx context.Context, actor entity.Actor, applicationID int64) error
	History(ctx context.Context, applicationID int64) ([]*entity.ApplicationHistory, error)
}

type applicationServiceImpl struct {
	appRepo        port.ApplicationRepository
	offerRepo      port.OfferRepository
	historyRepo    port.ApplicationHistoryRepository
	internshipRepo port.InternshipRepository
	txManager      port.TransactionManager
	events         dispatcher.Dispatcher
	validate       *validator.Validate
	logger         Logger
	now            func() time.Time
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(
	appRepo port.ApplicationRepository,
	offerRepo port.OfferRepository,
	historyRepo port.ApplicationHistoryRepository,
	internshipRepo port.InternshipRepository,
	txManager port.TransactionManager,
	events dispatcher.Dispatcher,
	logger Logger,
) ApplicationService {
	return &applicationServiceImpl{
		appRepo:        appRepo,
		offerRepo:      offerRepo,
		historyRepo:    historyRepo,
		internshipRepo: internshipRepo,
		txManager:      txManager,
		events:         events,
		validate:       validator.New(),
		logger:         logger,
		now:            time.Now,
	}
}

// Create submits a student's application to a published offer with spare
// capacity. No partial writes occur: a guard failure leaves nothing behind.
func (s *applicationServiceImpl) Create(ctx context.Context, actor entity.Actor, input CreateApplicationInput) (*entity.Application, error) {
	if actor.Role != entity.RoleStudent {
		return nil, fmt.Errorf("only students may apply: %w", entity.ErrForbidden)
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}

	offer, err := s.offerRepo.GetByID(ctx, input.OfferID)
	if err != nil {
		return nil, err
	}

	if !offer.AcceptsApplications() {
		return nil, fmt.Errorf("offer %d is %s: %w", offer.ID, offer.Status, entity.ErrInvalidState)
	}
	if !offer.HasCapacity() {
		return nil, fmt.Errorf("offer %d is full: %w", offer.ID, entity.ErrCapacityExceeded)
	}

	app := &entity.Application{
		StudentID:   actor.ID,
		OfferID:     offer.ID,
		Status:      entity.ApplicationStatusPending,
		CoverLetter: input.CoverLetter,
		Motivation:  input.Motivation,
		Experience:  input.Experience,
	}
	if input.AvailabilityDate != nil {
		t, err := time.Parse("2006-01-02", *input.AvailabilityDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", entity.ErrValidation, err)
		}
		app.AvailabilityDate = &t
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.appRepo.Create(txCtx, app); err != nil {
			return err
		}
		return s.historyRepo.Create(txCtx, &entity.ApplicationHistory{
			ApplicationID:  app.ID,
			OfferID:        offer.ID,
			StudentID:      actor.ID,
			PreviousStatus: "",
			NewStatus:      entity.ApplicationStatusPending,
			ActorID:        actor.ID,
			Note:           "application submitted",
		})
	})
	if err != nil {
		s.logger.Error("Failed to create application", "error", err, "student_id", actor.ID, "offer_id", offer.ID)
		return nil, err
	}

	s.logger.Info("Application created", "id", app.ID, "student_id", actor.ID, "offer_id", offer.ID)

	s.publish(ctx, event.New(event.TypeApplicationSubmitted, app.ID, map[string]interface{}{
		"student_id":  actor.ID,
		"offer_id":    offer.ID,
		"offer_title": offer.Title,
		"hospital_id": offer.HospitalID,
	}))

	return app, nil
}

// Get retrieves an application by ID.
func (s *applicationServiceImpl) Get(ctx context.Context, id int64) (*entity.Application, error) {
	return s.appRepo.GetByID(ctx, id)
}

// History retrieves the transition audit trail of an application.
func (s *applicationServiceImpl) History(ctx context.Context, applicationID int64) ([]*entity.ApplicationHistory, error) {
	return s.historyRepo.ListByApplicationID(ctx, applicationID)
}

// SetStatus transitions an application to reviewing, accepted or rejected.
// Acceptance is a single transaction: the capacity claim, the internship
// creation and the audit row all commit or none do. The notification fan-out
// fires after commit and never affects the transition's outcome.
func (s *applicationServiceImpl) SetStatus(ctx context.Context, actor entity.Actor, applicationID int64, input SetApplicationStatusInput) error {
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}

	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}

	offer, err := s.offerRepo.GetByID(ctx, app.OfferID)
	if err != nil {
		return err
	}

	if err := requireOfferOwnership(actor, offer); err != nil {
		return err
	}

	trigger, err := workflow.ApplicationTriggerFor(input.Status)
	if err != nil {
		return fmt.Errorf("%w: application status %q", entity.ErrValidation, input.Status)
	}

	machine := workflow.NewApplicationMachine(workflow.State(app.Status))
	if err := machine.Fire(ctx, trigger); err != nil {
		return fmt.Errorf("application %d cannot move from %s to %s: %w",
			applicationID, app.Status, input.Status, entity.ErrInvalidState)
	}

	previousStatus := app.Status
	reviewedAt := s.now()
	app.Status = machine.State().String()
	app.ReviewedBy = &actor.ID
	app.ReviewedAt = &reviewedAt
	if input.Status == entity.ApplicationStatusRejected && input.RejectionReason != "" {
		reason := input.RejectionReason
		app.RejectionReason = &reason
	}

	var internship *entity.Internship

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.appRepo.UpdateStatus(txCtx, app); err != nil {
			return err
		}

		if app.Status == entity.ApplicationStatusAccepted {
			if err := s.offerRepo.AdmitOne(txCtx, offer.ID); err != nil {
				return err
			}
			internship, err = s.createInternship(txCtx, app, offer)
			if err != nil {
				return err
			}
		}

		return s.historyRepo.Create(txCtx, &entity.ApplicationHistory{
			ApplicationID:  app.ID,
			OfferID:        offer.ID,
			StudentID:      app.StudentID,
			PreviousStatus: previousStatus,
			NewStatus:      app.Status,
			ActorID:        actor.ID,
			Note:           input.Note,
		})
	})
	if err != nil {
		s.logger.Error("Failed to update application status",
			"error", err, "id", applicationID, "status", input.Status)
		return err
	}

	s.logger.Info("Application status updated",
		"id", applicationID, "from", previousStatus, "to", app.Status, "actor_id", actor.ID)

	s.publishStatusEvent(ctx, app, offer, internship)
	return nil
}

// Withdraw permanently deletes a student's own application while it is not
// yet accepted. The final history row remains as the tombstone.
func (s *applicationServiceImpl) Withdraw(ctx context.Context, actor entity.Actor, applicationID int64) error {
	app, err := s.appRepo.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}

	if actor.Role != entity.RoleStudent || actor.ID != app.StudentID {
		return fmt.Errorf("application %d belongs to another student: %w", applicationID, entity.ErrForbidden)
	}

	machine := workflow.NewApplicationMachine(workflow.State(app.Status))
	if err := machine.Fire(ctx, workflow.TriggerWithdraw); err != nil {
		return fmt.Errorf("application %d cannot be withdrawn from %s: %w",
			applicationID, app.Status, entity.ErrInvalidState)
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.historyRepo.Create(txCtx, &entity.ApplicationHistory{
			ApplicationID:  app.ID,
			OfferID:        app.OfferID,
			StudentID:      app.StudentID,
			PreviousStatus: app.Status,
			NewStatus:      entity.ApplicationStatusWithdrawn,
			ActorID:        actor.ID,
			Note:           "application withdrawn by student",
		}); err != nil {
			return err
		}
		return s.appRepo.Delete(txCtx, app.ID)
	})
	if err != nil {
		s.logger.Error("Failed to withdraw application", "error", err, "id", applicationID)
		return err
	}

	s.logger.Info("Application withdrawn", "id", applicationID, "student_id", actor.ID)

	s.publish(ctx, event.New(event.TypeApplicationWithdrawn, app.ID, map[string]interface{}{
		"student_id": app.StudentID,
		"offer_id":   app.OfferID,
	}))

	return nil
}

// createInternship realizes the placement for an accepted application.
// Idempotent per application: an existing internship short-circuits creation,
// and the unique application_id index backs the check at the storage layer.
func (s *applicationServiceImpl) createInternship(ctx context.Context, app *entity.Application, offer *entity.Offer) (*entity.Internship, error) {
	existing, err := s.internshipRepo.GetByApplicationID(ctx, app.ID)
	if err == nil {
		s.logger.Warn("Internship already exists for application", "application_id", app.ID, "internship_id", existing.ID)
		return existing, nil
	}

	internship := &entity.Internship{
		ApplicationID: app.ID,
		StudentID:     app.StudentID,
		HospitalID:    offer.HospitalID,
		ServiceID:     offer.ServiceID,
		StartDate:     offer.StartDate,
		EndDate:       offer.EndDate,
		Status:        entity.InitialInternshipStatus(offer.StartDate, s.now()),
	}

	if err := s.internshipRepo.Create(ctx, internship); err != nil {
		return nil, fmt.Errorf("create internship: %w", err)
	}

	s.logger.Info("Internship created",
		"id", internship.ID, "application_id", app.ID, "status", internship.Status)
	return internship, nil
}

func (s *applicationServiceImpl) publishStatusEvent(ctx context.Context, app *entity.Application, offer *entity.Offer, internship *entity.Internship) {
	payload := map[string]interface{}{
		"student_id":  app.StudentID,
		"offer_id":    offer.ID,
		"offer_title": offer.Title,
	}

	var evt *event.Event
	switch app.Status {
	case entity.ApplicationStatusReviewing:
		evt = event.New(event.TypeApplicationReviewing, app.ID, payload)
	case entity.ApplicationStatusAccepted:
		if internship != nil {
			payload["internship_id"] = internship.ID
			payload["internship_status"] = internship.Status
		}
		evt = event.New(event.TypeApplicationAccepted, app.ID, payload)
	case entity.ApplicationStatusRejected:
		if app.RejectionReason != nil {
			payload["rejection_reason"] = *app.RejectionReason
		}
		evt = event.New(event.TypeApplicationRejected, app.ID, payload)
	default:
		return
	}

	s.publish(ctx, evt)
}

// publish dispatches a domain event. Fan-out failures are logged and
// swallowed; they never roll back or fail the committed transition.
func (s *applicationServiceImpl) publish(ctx context.Context, evt *event.Event) {
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Event dispatch failed", "event_type", evt.Type, "event_id", evt.ID, "error", err)
	}
}
