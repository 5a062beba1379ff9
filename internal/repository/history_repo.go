package repository

import (
	"context"
	"fmt"

	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/entity"
	"github.com/AymenZahed/pgsm-internship-management-sub002/pkg/database"
	"go.uber.org/zap"
)

// HistoryRepository handles the application transition audit trail. History
// rows outlive the application itself: withdrawal deletes the application but
// keeps its history as the tombstone.
type HistoryRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *database.DB, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a transition record.
func (r *HistoryRepository) Create(ctx context.Context, history *entity.ApplicationHistory) error {
	query := `
		INSERT INTO application_history (
			application_id, offer_id, student_id, previous_status, new_status, actor_id, note
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		history.ApplicationID,
		history.OfferID,
		history.StudentID,
		history.PreviousStatus,
		history.NewStatus,
		history.ActorID,
		history.Note,
	)
	if err != nil {
		r.logger.Error("Failed to create history entry", zap.Int64("application_id", history.ApplicationID), zap.Error(err))
		return fmt.Errorf("failed to create history entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	history.ID = id
	return nil
}

// ListByApplicationID retrieves the transition history of an application,
// oldest first.
func (r *HistoryRepository) ListByApplicationID(ctx context.Context, applicationID int64) ([]*entity.ApplicationHistory, error) {
	query := `
		SELECT id, application_id, offer_id, student_id, previous_status, new_status,
			actor_id, note, created_at
		FROM application_history
		WHERE application_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, applicationID)
	if err != nil {
		r.logger.Error("Failed to list history", zap.Int64("application_id", applicationID), zap.Error(err))
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []*entity.ApplicationHistory
	for rows.Next() {
		var h entity.ApplicationHistory
		err := rows.Scan(
			&h.ID,
			&h.ApplicationID,
			&h.OfferID,
			&h.StudentID,
			&h.PreviousStatus,
			&h.NewStatus,
			&h.ActorID,
			&h.Note,
			&h.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, &h)
	}

	return entries, rows.Err()
}
