package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/application/dispatcher"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/application/port"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/entity"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/event"
	"github.com/AymenZahed/pgsm-internship-management-sub002/pkg/utils"
	"github.com/go-playground/validator/v10"
)

// RecordAttendanceInput carries a student's check-in/check-out for one day.
// A nil time leaves any previously recorded value in place.
type RecordAttendanceInput struct {
	InternshipID int64   `validate:"required,gt=0"`
	Date         string  `validate:"required,datetime=2006-01-02"`
	CheckIn      *string `validate:"omitempty"`
	CheckOut     *string `validate:"omitempty"`
	Notes        string  `validate:"max=2000"`
}

// ValidateAttendanceInput carries a doctor's validation decision.
type ValidateAttendanceInput struct {
	Status string `validate:"required"`
	Notes  string `validate:"max=2000"`
}

// AttendanceService records daily attendance and drives the doctor-side
// validation that accrues hours onto the internship.
type AttendanceService interface {
	Record(ctx context.Context, actor entity.Actor, input RecordAttendanceInput) (*entity.AttendanceRecord, error)
	Get(ctx context.Context, id int64) (*entity.AttendanceRecord, error)
	ListByInternship(ctx context.Context, internshipID int64) ([]*entity.AttendanceRecord, error)
	Validate(ctx context.Context, actor entity.Actor, recordID int64, input ValidateAttendanceInput) error
}

type attendanceServiceImpl struct {
	attendanceRepo port.AttendanceRepository
	internshipRepo port.InternshipRepository
	serviceRepo    port.ServiceRepository
	txManager      port.TransactionManager
	events         dispatcher.Dispatcher
	validate       *validator.Validate
	logger         Logger
	now            func() time.Time
}

// NewAttendanceService creates a new AttendanceService
func NewAttendanceService(
	attendanceRepo port.AttendanceRepository,
	internshipRepo port.InternshipRepository,
	serviceRepo port.ServiceRepository,
	txManager port.TransactionManager,
	events dispatcher.Dispatcher,
	logger Logger,
) AttendanceService {
	return &attendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		internshipRepo: internshipRepo,
		serviceRepo:    serviceRepo,
		txManager:      txManager,
		events:         events,
		validate:       validator.New(),
		logger:         logger,
		now:            time.Now,
	}
}

// Record upserts the student's attendance for one day. The first call for a
// date creates the record in pending; later calls for the same date fill in
// whichever clock times are supplied without resetting the validation status.
func (s *attendanceServiceImpl) Record(ctx context.Context, actor entity.Actor, input RecordAttendanceInput) (*entity.AttendanceRecord, error) {
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
	if date.Before(utils.DateOnly(internship.StartDate)) || date.After(utils.DateOnly(internship.EndDate)) {
		return nil, fmt.Errorf("%w: date %s outside internship period", entity.ErrValidation, input.Date)
	}

	if input.CheckIn != nil {
		if _, err := utils.ParseClock(*input.CheckIn); err != nil {
			return nil, fmt.Errorf("%w: check_in %q", entity.ErrValidation, *input.CheckIn)
		}
	}
	if input.CheckOut != nil {
		if _, err := utils.ParseClock(*input.CheckOut); err != nil {
			return nil, fmt.Errorf("%w: check_out %q", entity.ErrValidation, *input.CheckOut)
		}
	}

	existing, err := s.attendanceRepo.GetByInternshipAndDate(ctx, internship.ID, date)
	if err == nil {
		if err := s.attendanceRepo.UpdateTimes(ctx, existing.ID, input.CheckIn, input.CheckOut, input.Notes); err != nil {
			s.logger.Error("Failed to update attendance times", "error", err, "id", existing.ID)
			return nil, err
		}
		return s.attendanceRepo.GetByID(ctx, existing.ID)
	}

	record := &entity.AttendanceRecord{
		InternshipID: internship.ID,
		StudentID:    actor.ID,
		Date:         date,
		CheckIn:      input.CheckIn,
		CheckOut:     input.CheckOut,
		Status:       entity.AttendanceStatusPending,
		Notes:        input.Notes,
	}
	if err := s.attendanceRepo.Create(ctx, record); err != nil {
		s.logger.Error("Failed to create attendance record", "error", err,
			"internship_id", internship.ID, "date", input.Date)
		return nil, err
	}

	s.logger.Info("Attendance recorded", "id", record.ID, "internship_id", internship.ID, "date", input.Date)
	return record, nil
}

// Get retrieves an attendance record by ID.
func (s *attendanceServiceImpl) Get(ctx context.Context, id int64) (*entity.AttendanceRecord, error) {
	return s.attendanceRepo.GetByID(ctx, id)
}

// ListByInternship retrieves all attendance records of an internship.
func (s *attendanceServiceImpl) ListByInternship(ctx context.Context, internshipID int64) ([]*entity.AttendanceRecord, error) {
	return s.attendanceRepo.ListByInternship(ctx, internshipID)
}

// Validate applies a doctor's decision to a pending attendance record. Hours
// are computed from the clock times at validation; outcomes that count as
// presence accrue them onto the internship total in the same transaction.
// A record is validated at most once.
func (s *attendanceServiceImpl) Validate(ctx context.Context, actor entity.Actor, recordID int64, input ValidateAttendanceInput) error {
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}
	if !entity.ValidAttendanceTargets[input.Status] {
		return fmt.Errorf("%w: attendance status %q", entity.ErrValidation, input.Status)
	}

	record, err := s.attendanceRepo.GetByID(ctx, recordID)
	if err != nil {
		return err
	}
	if record.Status != entity.AttendanceStatusPending {
		return fmt.Errorf("attendance record %d is already %s: %w", recordID, record.Status, entity.ErrInvalidState)
	}

	internship, err := s.internshipRepo.GetByID(ctx, record.InternshipID)
	if err != nil {
		return err
	}
	if err := s.requireValidator(ctx, actor, internship); err != nil {
		return err
	}

	hours, err := record.ComputeHoursWorked()
	if err != nil {
		return fmt.Errorf("%w: %v", entity.ErrValidation, err)
	}

	validatedAt := s.now()
	record.Status = input.Status
	record.HoursWorked = hours
	record.ValidatedBy = &actor.ID
	record.ValidatedAt = &validatedAt
	if input.Notes != "" {
		if record.Notes != "" {
			record.Notes = record.Notes + "\n" + input.Notes
		} else {
			record.Notes = input.Notes
		}
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.attendanceRepo.UpdateValidation(txCtx, record); err != nil {
			return err
		}
		if hours != nil && entity.AttendanceStatusAccruesHours(input.Status) {
			return s.internshipRepo.AddCompletedHours(txCtx, internship.ID, *hours)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to validate attendance", "error", err, "id", recordID, "status", input.Status)
		return err
	}

	s.logger.Info("Attendance validated",
		"id", recordID, "status", input.Status, "validator_id", actor.ID)

	payload := map[string]interface{}{
		"student_id":    record.StudentID,
		"internship_id": internship.ID,
		"date":          record.Date.Format(utils.DateLayout),
		"status":        input.Status,
	}
	if hours != nil {
		payload["hours_worked"] = *hours
	}
	evt := event.New(event.TypeAttendanceValidated, record.ID, payload)
	if err := s.events.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Event dispatch failed", "event_type", evt.Type, "event_id", evt.ID, "error", err)
	}

	return nil
}

// requireValidator authorizes validation: an admin, the internship's tutor,
// or the head doctor of the internship's service.
func (s *attendanceServiceImpl) requireValidator(ctx context.Context, actor entity.Actor, internship *entity.Internship) error {
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
	return fmt.Errorf("actor %d may not validate for internship %d: %w", actor.ID, internship.ID, entity.ErrForbidden)
}
