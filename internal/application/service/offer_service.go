package service

import (
	"context"
	"fmt"

	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/application/port"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/entity"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/workflow"
	"github.com/AymenZahed/pgsm-internship-management-sub002/pkg/utils"
	"github.com/go-playground/validator/v10"
)

// CreateOfferInput carries the fields of a new internship offer.
type CreateOfferInput struct {
	ServiceID           *int64  `validate:"omitempty,gt=0"`
	Title               string  `validate:"required,max=255"`
	Description         string  `validate:"max=4000"`
	Positions           int     `validate:"required,gte=1"`
	StartDate           string  `validate:"required,datetime=2006-01-02"`
	EndDate             string  `validate:"required,datetime=2006-01-02"`
	ApplicationDeadline *string `validate:"omitempty,datetime=2006-01-02"`
}

// OfferService drives the offer publication lifecycle and deletion guard.
type OfferService interface {
	Create(ctx context.Context, actor entity.Actor, input CreateOfferInput) (*entity.Offer, error)
	Get(ctx context.Context, id int64) (*entity.Offer, error)
	ListPublished(ctx context.Context, limit, offset int) ([]*entity.Offer, error)
	SetStatus(ctx context.Context, actor entity.Actor, offerID int64, status string) error
	Delete(ctx context.Context, actor entity.Actor, offerID int64) error
}

type offerServiceImpl struct {
	offerRepo port.OfferRepository
	appRepo   port.ApplicationRepository
	validate  *validator.Validate
	logger    Logger
}

// NewOfferService creates a new OfferService
func NewOfferService(
	offerRepo port.OfferRepository,
	appRepo port.ApplicationRepository,
	logger Logger,
) OfferService {
	return &offerServiceImpl{
		offerRepo: offerRepo,
		appRepo:   appRepo,
		validate:  validator.New(),
		logger:    logger,
	}
}

// Create registers a new draft offer for the actor's hospital.
func (s *offerServiceImpl) Create(ctx context.Context, actor entity.Actor, input CreateOfferInput) (*entity.Offer, error) {
	if actor.Role != entity.RoleHospital && !actor.IsAdmin() {
		return nil, fmt.Errorf("only hospitals may create offers: %w", entity.ErrForbidden)
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}

	offer, err := buildOffer(actor.HospitalID, input)
	if err != nil {
		return nil, err
	}

	if err := s.offerRepo.Create(ctx, offer); err != nil {
		s.logger.Error("Failed to create offer", "error", err, "hospital_id", actor.HospitalID)
		return nil, err
	}

	s.logger.Info("Offer created", "id", offer.ID, "hospital_id", offer.HospitalID, "positions", offer.Positions)
	return offer, nil
}

// Get retrieves an offer by ID.
func (s *offerServiceImpl) Get(ctx context.Context, id int64) (*entity.Offer, error) {
	return s.offerRepo.GetByID(ctx, id)
}

// ListPublished retrieves offers visible in public listings.
func (s *offerServiceImpl) ListPublished(ctx context.Context, limit, offset int) ([]*entity.Offer, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.offerRepo.ListPublished(ctx, limit, offset)
}

// SetStatus transitions the offer's publication status. Only the owning
// hospital or an admin may transition it.
func (s *offerServiceImpl) SetStatus(ctx context.Context, actor entity.Actor, offerID int64, status string) error {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return err
	}

	if err := requireOfferOwnership(actor, offer); err != nil {
		return err
	}

	trigger, err := workflow.OfferTriggerFor(status)
	if err != nil {
		return fmt.Errorf("%w: offer status %q", entity.ErrValidation, status)
	}

	machine := workflow.NewOfferMachine(workflow.State(offer.Status))
	if err := machine.Fire(ctx, trigger); err != nil {
		return fmt.Errorf("offer %d cannot move from %s to %s: %w",
			offerID, offer.Status, status, entity.ErrInvalidState)
	}

	if err := s.offerRepo.UpdateStatus(ctx, offerID, machine.State().String()); err != nil {
		s.logger.Error("Failed to update offer status", "error", err, "id", offerID, "status", status)
		return err
	}

	s.logger.Info("Offer status updated", "id", offerID, "from", offer.Status, "to", status)
	return nil
}

// Delete removes an offer, permitted only while it has no applications
// outside {rejected, withdrawn}.
func (s *offerServiceImpl) Delete(ctx context.Context, actor entity.Actor, offerID int64) error {
	offer, err := s.offerRepo.GetByID(ctx, offerID)
	if err != nil {
		return err
	}

	if err := requireOfferOwnership(actor, offer); err != nil {
		return err
	}

	blocking, err := s.appRepo.CountBlockingDeletion(ctx, offerID)
	if err != nil {
		return err
	}
	if blocking > 0 {
		return fmt.Errorf("offer %d has %d active applications: %w", offerID, blocking, entity.ErrInvalidState)
	}

	if err := s.offerRepo.Delete(ctx, offerID); err != nil {
		s.logger.Error("Failed to delete offer", "error", err, "id", offerID)
		return err
	}

	s.logger.Info("Offer deleted", "id", offerID)
	return nil
}

func buildOffer(hospitalID int64, input CreateOfferInput) (*entity.Offer, error) {
	startDate, err := utils.ParseDate(input.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}
	endDate, err := utils.ParseDate(input.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("%w: end_date before start_date", entity.ErrValidation)
	}

	offer := &entity.Offer{
		HospitalID:  hospitalID,
		ServiceID:   input.ServiceID,
		Title:       input.Title,
		Description: input.Description,
		Positions:   input.Positions,
		Status:      entity.OfferStatusDraft,
		StartDate:   startDate,
		EndDate:     endDate,
	}

	if input.ApplicationDeadline != nil {
		deadline, err := utils.ParseDate(*input.ApplicationDeadline)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", entity.ErrValidation, err)
		}
		offer.ApplicationDeadline = &deadline
	}

	return offer, nil
}

func requireOfferOwnership(actor entity.Actor, offer *entity.Offer) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.Role == entity.RoleHospital && actor.HospitalID == offer.HospitalID {
		return nil
	}
	return fmt.Errorf("actor %d does not own offer %d: %w", actor.ID, offer.ID, entity.ErrForbidden)
}
