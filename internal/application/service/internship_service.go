package service

import (
	"context"
	"fmt"

	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/application/port"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/entity"
)

// InternshipService exposes internship reads and the cancellation path.
// Internships are never created directly: acceptance of an application is the
// only creation path, and the scheduler owns the time-based transitions.
type InternshipService interface {
	Get(ctx context.Context, id int64) (*entity.Internship, error)
	GetByApplication(ctx context.Context, applicationID int64) (*entity.Internship, error)
	Cancel(ctx context.Context, actor entity.Actor, internshipID int64) error
}

type internshipServiceImpl struct {
	internshipRepo port.InternshipRepository
	appRepo        port.ApplicationRepository
	offerRepo      port.OfferRepository
	txManager      port.TransactionManager
	logger         Logger
}

// NewInternshipService creates a new InternshipService
func NewInternshipService(
	internshipRepo port.InternshipRepository,
	appRepo port.ApplicationRepository,
	offerRepo port.OfferRepository,
	txManager port.TransactionManager,
	logger Logger,
) InternshipService {
	return &internshipServiceImpl{
		internshipRepo: internshipRepo,
		appRepo:        appRepo,
		offerRepo:      offerRepo,
		txManager:      txManager,
		logger:         logger,
	}
}

// Get retrieves an internship by ID.
func (s *internshipServiceImpl) Get(ctx context.Context, id int64) (*entity.Internship, error) {
	return s.internshipRepo.GetByID(ctx, id)
}

// GetByApplication retrieves the internship realized from an application.
func (s *internshipServiceImpl) GetByApplication(ctx context.Context, applicationID int64) (*entity.Internship, error) {
	return s.internshipRepo.GetByApplicationID(ctx, applicationID)
}

// Cancel marks an internship cancelled and releases the position it claimed on
// the offer, in one transaction. Allowed for the owning hospital or an admin,
// and only while the internship is not already completed or cancelled.
func (s *internshipServiceImpl) Cancel(ctx context.Context, actor entity.Actor, internshipID int64) error {
	internship, err := s.internshipRepo.GetByID(ctx, internshipID)
	if err != nil {
		return err
	}

	if !actor.IsAdmin() && !(actor.Role == entity.RoleHospital && actor.HospitalID == internship.HospitalID) {
		return fmt.Errorf("actor %d cannot cancel internship %d: %w", actor.ID, internshipID, entity.ErrForbidden)
	}

	switch internship.Status {
	case entity.InternshipStatusCompleted, entity.InternshipStatusCancelled:
		return fmt.Errorf("internship %d is already %s: %w", internshipID, internship.Status, entity.ErrInvalidState)
	}

	app, err := s.appRepo.GetByID(ctx, internship.ApplicationID)
	if err != nil {
		return err
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.internshipRepo.UpdateStatus(txCtx, internshipID, entity.InternshipStatusCancelled); err != nil {
			return err
		}
		return s.offerRepo.ReleaseOne(txCtx, app.OfferID)
	})
	if err != nil {
		s.logger.Error("Failed to cancel internship", "error", err, "id", internshipID)
		return err
	}

	s.logger.Info("Internship cancelled", "id", internshipID, "offer_id", app.OfferID, "actor_id", actor.ID)
	return nil
}
