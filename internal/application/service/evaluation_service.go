package service

import (
	"context"
	"fmt"

	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/application/dispatcher"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/application/port"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/entity"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/event"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/scoring"
	"github.com/go-playground/validator/v10"
)

// EvaluationScoresInput carries the optional component scores, each on the
// 0-100 band.
type EvaluationScoresInput struct {
	TechnicalSkills  *float64 `validate:"omitempty,gte=0,lte=100"`
	PatientRelations *float64 `validate:"omitempty,gte=0,lte=100"`
	Teamwork         *float64 `validate:"omitempty,gte=0,lte=100"`
	Professionalism  *float64 `validate:"omitempty,gte=0,lte=100"`
}

// CreateEvaluationInput carries a doctor's assessment of an internship.
type CreateEvaluationInput struct {
	InternshipID int64  `validate:"required,gt=0"`
	Type         string `validate:"required"`
	Scores       EvaluationScoresInput
	Comments     string `validate:"max=8000"`
}

// AmendEvaluationInput carries an evaluator's correction of an existing
// evaluation.
type AmendEvaluationInput struct {
	Scores   EvaluationScoresInput
	Comments string `validate:"max=8000"`
}

// EvaluationService creates and amends scored assessments. The overall score
// is always derived, never accepted from the caller.
type EvaluationService interface {
	Create(ctx context.Context, actor entity.Actor, input CreateEvaluationInput) (*entity.Evaluation, error)
	Get(ctx context.Context, id int64) (*entity.Evaluation, error)
	ListByInternship(ctx context.Context, internshipID int64) ([]*entity.Evaluation, error)
	Amend(ctx context.Context, actor entity.Actor, evaluationID int64, input AmendEvaluationInput) (*entity.Evaluation, error)
}

type evaluationServiceImpl struct {
	evaluationRepo port.EvaluationRepository
	internshipRepo port.InternshipRepository
	serviceRepo    port.ServiceRepository
	events         dispatcher.Dispatcher
	validate       *validator.Validate
	logger         Logger
}

// NewEvaluationService creates a new EvaluationService
func NewEvaluationService(
	evaluationRepo port.EvaluationRepository,
	internshipRepo port.InternshipRepository,
	serviceRepo port.ServiceRepository,
	events dispatcher.Dispatcher,
	logger Logger,
) EvaluationService {
	return &evaluationServiceImpl{
		evaluationRepo: evaluationRepo,
		internshipRepo: internshipRepo,
		serviceRepo:    serviceRepo,
		events:         events,
		validate:       validator.New(),
		logger:         logger,
	}
}

// Create records a new evaluation with a derived overall score.
func (s *evaluationServiceImpl) Create(ctx context.Context, actor entity.Actor, input CreateEvaluationInput) (*entity.Evaluation, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}
	if !entity.ValidEvaluationTypes[input.Type] {
		return nil, fmt.Errorf("%w: evaluation type %q", entity.ErrValidation, input.Type)
	}

	internship, err := s.internshipRepo.GetByID(ctx, input.InternshipID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEvaluator(ctx, actor, internship); err != nil {
		return nil, err
	}

	evaluation := &entity.Evaluation{
		InternshipID:          internship.ID,
		StudentID:             internship.StudentID,
		EvaluatorID:           actor.ID,
		Type:                  input.Type,
		TechnicalSkillsScore:  input.Scores.TechnicalSkills,
		PatientRelationsScore: input.Scores.PatientRelations,
		TeamworkScore:         input.Scores.Teamwork,
		ProfessionalismScore:  input.Scores.Professionalism,
		Comments:              input.Comments,
		Status:                entity.EvaluationStatusSubmitted,
	}
	evaluation.OverallScore = scoring.ComputeOverallScore(scoring.Scores{
		TechnicalSkills:  evaluation.TechnicalSkillsScore,
		PatientRelations: evaluation.PatientRelationsScore,
		Teamwork:         evaluation.TeamworkScore,
		Professionalism:  evaluation.ProfessionalismScore,
	})

	if err := s.evaluationRepo.Create(ctx, evaluation); err != nil {
		s.logger.Error("Failed to create evaluation", "error", err, "internship_id", internship.ID)
		return nil, err
	}

	s.logger.Info("Evaluation created",
		"id", evaluation.ID, "internship_id", internship.ID, "type", input.Type, "evaluator_id", actor.ID)

	s.publishScored(ctx, event.TypeEvaluationSubmitted, evaluation)
	return evaluation, nil
}

// Get retrieves an evaluation by ID.
func (s *evaluationServiceImpl) Get(ctx context.Context, id int64) (*entity.Evaluation, error) {
	return s.evaluationRepo.GetByID(ctx, id)
}

// ListByInternship retrieves all evaluations of an internship.
func (s *evaluationServiceImpl) ListByInternship(ctx context.Context, internshipID int64) ([]*entity.Evaluation, error) {
	return s.evaluationRepo.ListByInternship(ctx, internshipID)
}

// Amend replaces the scores and comments of an existing evaluation and
// recomputes the overall score. Only the original evaluator or an admin may
// amend.
func (s *evaluationServiceImpl) Amend(ctx context.Context, actor entity.Actor, evaluationID int64, input AmendEvaluationInput) (*entity.Evaluation, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}

	evaluation, err := s.evaluationRepo.GetByID(ctx, evaluationID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.ID != evaluation.EvaluatorID {
		return nil, fmt.Errorf("evaluation %d belongs to another evaluator: %w", evaluationID, entity.ErrForbidden)
	}

	evaluation.TechnicalSkillsScore = input.Scores.TechnicalSkills
	evaluation.PatientRelationsScore = input.Scores.PatientRelations
	evaluation.TeamworkScore = input.Scores.Teamwork
	evaluation.ProfessionalismScore = input.Scores.Professionalism
	evaluation.Comments = input.Comments
	evaluation.OverallScore = scoring.ComputeOverallScore(scoring.Scores{
		TechnicalSkills:  evaluation.TechnicalSkillsScore,
		PatientRelations: evaluation.PatientRelationsScore,
		Teamwork:         evaluation.TeamworkScore,
		Professionalism:  evaluation.ProfessionalismScore,
	})

	if err := s.evaluationRepo.Update(ctx, evaluation); err != nil {
		s.logger.Error("Failed to amend evaluation", "error", err, "id", evaluationID)
		return nil, err
	}

	s.logger.Info("Evaluation amended", "id", evaluationID, "actor_id", actor.ID)

	s.publishScored(ctx, event.TypeEvaluationAmended, evaluation)
	return evaluation, nil
}

// requireEvaluator authorizes evaluation creation: an admin, the internship's
// tutor, or the head doctor of the internship's service.
func (s *evaluationServiceImpl) requireEvaluator(ctx context.Context, actor entity.Actor, internship *entity.Internship) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.Role == entity.RoleDoctor {
		if internship.TutorID != nil && *internship.TutorID == actor.ID {
			return nil
		}
		if internship.ServiceID != nil {
			svc, err := s.serviceRepo.GetByID(ctx, *internship.ServiceID)
			if err == nil && svc.HeadDoctorID != nil && *svc.HeadDoctorID == actor.ID {
				return nil
			}
		}
	}
	return fmt.Errorf("actor %d may not evaluate internship %d: %w", actor.ID, internship.ID, entity.ErrForbidden)
}

func (s *evaluationServiceImpl) publishScored(ctx context.Context, eventType event.Type, evaluation *entity.Evaluation) {
	payload := map[string]interface{}{
		"student_id":    evaluation.StudentID,
		"internship_id": evaluation.InternshipID,
		"type":          evaluation.Type,
	}
	if evaluation.OverallScore != nil {
		payload["overall_score"] = *evaluation.OverallScore
	}
	evt := event.New(eventType, evaluation.ID, payload)
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Event dispatch failed", "event_type", evt.Type, "event_id", evt.ID, "error", err)
	}
}
