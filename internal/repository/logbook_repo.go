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

// LogbookRepository handles logbook entry database operations.
type LogbookRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewLogbookRepository creates a new logbook repository
func NewLogbookRepository(db *database.DB, logger *zap.Logger) *LogbookRepository {
	return &LogbookRepository{
		db:     db,
		logger: logger,
	}
}

const logbookColumns = `
	id, internship_id, student_id, date, activities, learning_objectives, status,
	supervisor_comments, reviewed_by, reviewed_at, created_at, updated_at
`

// Create inserts a new pending logbook entry.
func (r *LogbookRepository) Create(ctx context.Context, entry *entity.LogbookEntry) error {
	if entry.Status == "" {
		entry.Status = entity.LogbookStatusPending
	}

	query := `
		INSERT INTO logbook_entries (
			internship_id, student_id, date, activities, learning_objectives, status
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		entry.InternshipID,
		entry.StudentID,
		entry.Date.Format("2006-01-02"),
		entry.Activities,
		entry.LearningObjectives,
		entry.Status,
	)
	if err != nil {
		r.logger.Error("Failed to create logbook entry", zap.Error(err))
		return fmt.Errorf("failed to create logbook entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	entry.ID = id
	return nil
}

// GetByID retrieves a logbook entry by ID.
func (r *LogbookRepository) GetByID(ctx context.Context, id int64) (*entity.LogbookEntry, error) {
	query := `SELECT` + logbookColumns + `FROM logbook_entries WHERE id = ?`

	entry, err := r.scanEntry(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("logbook entry %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get logbook entry", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get logbook entry: %w", err)
	}

	return entry, nil
}

// ListByInternship retrieves all logbook entries of an internship, oldest day
// first.
func (r *LogbookRepository) ListByInternship(ctx context.Context, internshipID int64) ([]*entity.LogbookEntry, error) {
	query := `SELECT` + logbookColumns + `FROM logbook_entries WHERE internship_id = ? ORDER BY date ASC`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, internshipID)
	if err != nil {
		r.logger.Error("Failed to list logbook entries", zap.Int64("internship_id", internshipID), zap.Error(err))
		return nil, fmt.Errorf("failed to list logbook entries: %w", err)
	}
	defer rows.Close()

	var entries []*entity.LogbookEntry
	for rows.Next() {
		entry, err := r.scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan logbook entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Update rewrites the student-editable fields and the status. Used for edits,
// which reset the entry to pending.
func (r *LogbookRepository) Update(ctx context.Context, entry *entity.LogbookEntry) error {
	query := `
		UPDATE logbook_entries
		SET date = ?, activities = ?, learning_objectives = ?, status = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		entry.Date.Format("2006-01-02"),
		entry.Activities,
		entry.LearningObjectives,
		entry.Status,
		entry.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update logbook entry", zap.Int64("id", entry.ID), zap.Error(err))
		return fmt.Errorf("failed to update logbook entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("logbook entry %d: %w", entry.ID, entity.ErrNotFound)
	}

	return nil
}

// UpdateReview writes the supervisor's review outcome.
func (r *LogbookRepository) UpdateReview(ctx context.Context, entry *entity.LogbookEntry) error {
	query := `
		UPDATE logbook_entries
		SET status = ?, supervisor_comments = ?, reviewed_by = ?, reviewed_at = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		entry.Status,
		entry.SupervisorComments,
		entry.ReviewedBy,
		entry.ReviewedAt,
		entry.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update logbook review", zap.Int64("id", entry.ID), zap.Error(err))
		return fmt.Errorf("failed to update logbook review: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("logbook entry %d: %w", entry.ID, entity.ErrNotFound)
	}

	return nil
}

// Delete removes a logbook entry.
func (r *LogbookRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx, `DELETE FROM logbook_entries WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete logbook entry", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete logbook entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("logbook entry %d: %w", id, entity.ErrNotFound)
	}

	return nil
}

func (r *LogbookRepository) scanEntry(row rowScanner) (*entity.LogbookEntry, error) {
	var entry entity.LogbookEntry
	var dateStr string
	var learningObjectives, supervisorComments sql.NullString
	var reviewedBy sql.NullInt64
	var reviewedAt sql.NullTime

	err := row.Scan(
		&entry.ID,
		&entry.InternshipID,
		&entry.StudentID,
		&dateStr,
		&entry.Activities,
		&learningObjectives,
		&entry.Status,
		&supervisorComments,
		&reviewedBy,
		&reviewedAt,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse logbook date %q: %w", dateStr, err)
	}
	entry.Date = date

	if learningObjectives.Valid {
		entry.LearningObjectives = learningObjectives.String
	}
	if supervisorComments.Valid {
		s := supervisorComments.String
		entry.SupervisorComments = &s
	}
	if reviewedBy.Valid {
		entry.ReviewedBy = &reviewedBy.Int64
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		entry.ReviewedAt = &t
	}

	return &entry, nil
}
