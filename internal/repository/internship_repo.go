package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/entity"
	"github.com/AymenZahed/pgsm-internship-management-sub002/pkg/database"
	"go.uber.org/zap"
)

// InternshipRepository handles internship database operations, including the
// completed-hours accumulator and the date-driven status refresh.
type InternshipRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewInternshipRepository creates a new internship repository
func NewInternshipRepository(db *database.DB, logger *zap.Logger) *InternshipRepository {
	return &InternshipRepository{
		db:     db,
		logger: logger,
	}
}

const internshipColumns = `
	id, application_id, student_id, hospital_id, service_id, tutor_id,
	start_date, end_date, status, completed_hours, created_at, updated_at
`

// Create inserts a new internship. The unique application_id index enforces
// the one-internship-per-application invariant at the storage layer.
func (r *InternshipRepository) Create(ctx context.Context, internship *entity.Internship) error {
	query := `
		INSERT INTO internships (
			application_id, student_id, hospital_id, service_id, tutor_id,
			start_date, end_date, status, completed_hours
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		internship.ApplicationID,
		internship.StudentID,
		internship.HospitalID,
		internship.ServiceID,
		internship.TutorID,
		internship.StartDate,
		internship.EndDate,
		internship.Status,
		internship.CompletedHours,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("internship for application %d already exists: %w",
				internship.ApplicationID, entity.ErrInvalidState)
		}
		r.logger.Error("Failed to create internship", zap.Error(err))
		return fmt.Errorf("failed to create internship: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	internship.ID = id
	return nil
}

// GetByID retrieves an internship by ID.
func (r *InternshipRepository) GetByID(ctx context.Context, id int64) (*entity.Internship, error) {
	query := `SELECT` + internshipColumns + `FROM internships WHERE id = ?`

	internship, err := r.scanInternship(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("internship %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get internship", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get internship: %w", err)
	}

	return internship, nil
}

// GetByApplicationID retrieves the internship created from an application, if
// any.
func (r *InternshipRepository) GetByApplicationID(ctx context.Context, applicationID int64) (*entity.Internship, error) {
	query := `SELECT` + internshipColumns + `FROM internships WHERE application_id = ?`

	internship, err := r.scanInternship(r.db.Executor(ctx).QueryRowContext(ctx, query, applicationID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("internship for application %d: %w", applicationID, entity.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get internship by application", zap.Int64("application_id", applicationID), zap.Error(err))
		return nil, fmt.Errorf("failed to get internship: %w", err)
	}

	return internship, nil
}

// UpdateStatus updates the internship status.
func (r *InternshipRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE internships SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update internship status", zap.Int64("id", id), zap.String("status", status), zap.Error(err))
		return fmt.Errorf("failed to update internship status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("internship %d: %w", id, entity.ErrNotFound)
	}

	return nil
}

// AddCompletedHours atomically accrues validated attendance hours. A single
// relative update avoids lost increments under concurrent validation.
func (r *InternshipRepository) AddCompletedHours(ctx context.Context, id int64, hours float64) error {
	query := `
		UPDATE internships
		SET completed_hours = ROUND(completed_hours + ?, 2), updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, hours, id)
	if err != nil {
		r.logger.Error("Failed to accrue hours", zap.Int64("id", id), zap.Float64("hours", hours), zap.Error(err))
		return fmt.Errorf("failed to accrue hours: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("internship %d: %w", id, entity.ErrNotFound)
	}

	return nil
}

// PromoteStarted moves upcoming internships whose start date has arrived to
// active.
func (r *InternshipRepository) PromoteStarted(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE internships
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE status = ? AND start_date <= ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		entity.InternshipStatusActive, entity.InternshipStatusUpcoming, now)
	if err != nil {
		r.logger.Error("Failed to promote started internships", zap.Error(err))
		return 0, fmt.Errorf("failed to promote internships: %w", err)
	}

	return result.RowsAffected()
}

// CompleteEnded moves active internships whose end date has passed to
// completed.
func (r *InternshipRepository) CompleteEnded(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE internships
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE status = ? AND end_date < ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		entity.InternshipStatusCompleted, entity.InternshipStatusActive, now)
	if err != nil {
		r.logger.Error("Failed to complete ended internships", zap.Error(err))
		return 0, fmt.Errorf("failed to complete internships: %w", err)
	}

	return result.RowsAffected()
}

func (r *InternshipRepository) scanInternship(row rowScanner) (*entity.Internship, error) {
	var internship entity.Internship
	var serviceID, tutorID sql.NullInt64

	err := row.Scan(
		&internship.ID,
		&internship.ApplicationID,
		&internship.StudentID,
		&internship.HospitalID,
		&serviceID,
		&tutorID,
		&internship.StartDate,
		&internship.EndDate,
		&internship.Status,
		&internship.CompletedHours,
		&internship.CreatedAt,
		&internship.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if serviceID.Valid {
		internship.ServiceID = &serviceID.Int64
	}
	if tutorID.Valid {
		internship.TutorID = &tutorID.Int64
	}

	return &internship, nil
}
