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

// AttendanceRepository handles attendance record database operations.
type AttendanceRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *database.DB, logger *zap.Logger) *AttendanceRepository {
	return &AttendanceRepository{
		db:     db,
		logger: logger,
	}
}

const attendanceColumns = `
	id, internship_id, student_id, date, check_in, check_out, status,
	hours_worked, notes, validated_by, validated_at, created_at, updated_at
`

// Create inserts a new pending attendance record for the day.
func (r *AttendanceRepository) Create(ctx context.Context, record *entity.AttendanceRecord) error {
	if record.Status == "" {
		record.Status = entity.AttendanceStatusPending
	}

	query := `
		INSERT INTO attendance_records (
			internship_id, student_id, date, check_in, check_out, status, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		record.InternshipID,
		record.StudentID,
		record.Date.Format("2006-01-02"),
		record.CheckIn,
		record.CheckOut,
		record.Status,
		record.Notes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("attendance for internship %d on %s already recorded: %w",
				record.InternshipID, record.Date.Format("2006-01-02"), entity.ErrInvalidState)
		}
		r.logger.Error("Failed to create attendance record", zap.Error(err))
		return fmt.Errorf("failed to create attendance record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	record.ID = id
	return nil
}

// GetByID retrieves an attendance record by ID.
func (r *AttendanceRepository) GetByID(ctx context.Context, id int64) (*entity.AttendanceRecord, error) {
	query := `SELECT` + attendanceColumns + `FROM attendance_records WHERE id = ?`

	record, err := r.scanRecord(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("attendance record %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get attendance record", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}

	return record, nil
}

// GetByInternshipAndDate retrieves the record for a given internship and day,
// if one exists.
func (r *AttendanceRepository) GetByInternshipAndDate(ctx context.Context, internshipID int64, date time.Time) (*entity.AttendanceRecord, error) {
	query := `SELECT` + attendanceColumns + `FROM attendance_records WHERE internship_id = ? AND date = ?`

	record, err := r.scanRecord(r.db.Executor(ctx).QueryRowContext(ctx, query, internshipID, date.Format("2006-01-02")))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("attendance for internship %d on %s: %w",
			internshipID, date.Format("2006-01-02"), entity.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get attendance record by date",
			zap.Int64("internship_id", internshipID), zap.Error(err))
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}

	return record, nil
}

// ListByInternship retrieves all attendance records of an internship, oldest
// day first.
func (r *AttendanceRepository) ListByInternship(ctx context.Context, internshipID int64) ([]*entity.AttendanceRecord, error) {
	query := `SELECT` + attendanceColumns + `FROM attendance_records WHERE internship_id = ? ORDER BY date ASC`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, internshipID)
	if err != nil {
		r.logger.Error("Failed to list attendance records", zap.Int64("internship_id", internshipID), zap.Error(err))
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []*entity.AttendanceRecord
	for rows.Next() {
		record, err := r.scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// UpdateTimes applies check-in/check-out with COALESCE semantics: a nil
// argument keeps the stored value. The validation status is left untouched.
func (r *AttendanceRepository) UpdateTimes(ctx context.Context, id int64, checkIn, checkOut *string, notes string) error {
	query := `
		UPDATE attendance_records
		SET check_in = COALESCE(?, check_in),
			check_out = COALESCE(?, check_out),
			notes = CASE WHEN ? != '' THEN ? ELSE notes END,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, checkIn, checkOut, notes, notes, id)
	if err != nil {
		r.logger.Error("Failed to update attendance times", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update attendance times: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("attendance record %d: %w", id, entity.ErrNotFound)
	}

	return nil
}

// UpdateValidation writes the validation outcome: status, computed hours,
// accumulated notes, validator and timestamp.
func (r *AttendanceRepository) UpdateValidation(ctx context.Context, record *entity.AttendanceRecord) error {
	query := `
		UPDATE attendance_records
		SET status = ?, hours_worked = ?, notes = ?, validated_by = ?, validated_at = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		record.Status,
		record.HoursWorked,
		record.Notes,
		record.ValidatedBy,
		record.ValidatedAt,
		record.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update attendance validation", zap.Int64("id", record.ID), zap.Error(err))
		return fmt.Errorf("failed to update attendance validation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("attendance record %d: %w", record.ID, entity.ErrNotFound)
	}

	return nil
}

func (r *AttendanceRepository) scanRecord(row rowScanner) (*entity.AttendanceRecord, error) {
	var record entity.AttendanceRecord
	var dateStr string
	var checkIn, checkOut, notes sql.NullString
	var hoursWorked sql.NullFloat64
	var validatedBy sql.NullInt64
	var validatedAt sql.NullTime

	err := row.Scan(
		&record.ID,
		&record.InternshipID,
		&record.StudentID,
		&dateStr,
		&checkIn,
		&checkOut,
		&record.Status,
		&hoursWorked,
		&notes,
		&validatedBy,
		&validatedAt,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse attendance date %q: %w", dateStr, err)
	}
	record.Date = date

	if checkIn.Valid {
		s := checkIn.String
		record.CheckIn = &s
	}
	if checkOut.Valid {
		s := checkOut.String
		record.CheckOut = &s
	}
	if notes.Valid {
		record.Notes = notes.String
	}
	if hoursWorked.Valid {
		h := hoursWorked.Float64
		record.HoursWorked = &h
	}
	if validatedBy.Valid {
		record.ValidatedBy = &validatedBy.Int64
	}
	if validatedAt.Valid {
		t := validatedAt.Time
		record.ValidatedAt = &t
	}

	return &record, nil
}
