package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/entity"
	"github.com/AymenZahed/pgsm-internship-management-sub002/pkg/database"
	"go.uber.org/zap"
)

// OfferRepository handles offer database operations, including the capacity
// ledger on filled_positions.
type OfferRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewOfferRepository creates a new offer repository
func NewOfferRepository(db *database.DB, logger *zap.Logger) *OfferRepository {
	return &OfferRepository{
		db:     db,
		logger: logger,
	}
}

const offerColumns = `
	id, hospital_id, service_id, title, description, positions, filled_positions,
	status, start_date, end_date, application_deadline, created_at, updated_at
`

// Create creates a new offer in draft status unless one is set explicitly.
func (r *OfferRepository) Create(ctx context.Context, offer *entity.Offer) error {
	if offer.Status == "" {
		offer.Status = entity.OfferStatusDraft
	}

	query := `
		INSERT INTO offers (
			hospital_id, service_id, title, description, positions, filled_positions,
			status, start_date, end_date, application_deadline
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		offer.HospitalID,
		offer.ServiceID,
		offer.Title,
		offer.Description,
		offer.Positions,
		offer.FilledPositions,
		offer.Status,
		offer.StartDate,
		offer.EndDate,
		offer.ApplicationDeadline,
	)
	if err != nil {
		r.logger.Error("Failed to create offer", zap.Error(err))
		return fmt.Errorf("failed to create offer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	offer.ID = id
	return nil
}

// GetByID retrieves an offer by ID.
func (r *OfferRepository) GetByID(ctx context.Context, id int64) (*entity.Offer, error) {
	query := `SELECT` + offerColumns + `FROM offers WHERE id = ?`

	offer, err := r.scanOffer(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("offer %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get offer", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}

	return offer, nil
}

// ListPublished retrieves published offers for public listings, newest first.
func (r *OfferRepository) ListPublished(ctx context.Context, limit, offset int) ([]*entity.Offer, error) {
	query := `
		SELECT` + offerColumns + `
		FROM offers
		WHERE status = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, entity.OfferStatusPublished, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list published offers", zap.Error(err))
		return nil, fmt.Errorf("failed to list offers: %w", err)
	}
	defer rows.Close()

	var offers []*entity.Offer
	for rows.Next() {
		offer, err := r.scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, offer)
	}

	return offers, rows.Err()
}

// UpdateStatus updates the publication status of an offer.
func (r *OfferRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE offers SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update offer status", zap.Int64("id", id), zap.String("status", status), zap.Error(err))
		return fmt.Errorf("failed to update offer status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("offer %d: %w", id, entity.ErrNotFound)
	}

	return nil
}

// AdmitOne atomically claims one position on the offer. The capacity guard and
// the increment are a single conditional update so concurrent acceptances can
// never push filled_positions past positions.
func (r *OfferRepository) AdmitOne(ctx context.Context, id int64) error {
	query := `
		UPDATE offers
		SET filled_positions = filled_positions + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ? AND filled_positions < positions
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, id, entity.OfferStatusPublished)
	if err != nil {
		r.logger.Error("Failed to admit application", zap.Int64("offer_id", id), zap.Error(err))
		return fmt.Errorf("failed to admit application: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("offer %d: %w", id, entity.ErrCapacityExceeded)
	}

	return nil
}

// ReleaseOne returns one position to the offer, flooring at zero.
func (r *OfferRepository) ReleaseOne(ctx context.Context, id int64) error {
	query := `
		UPDATE offers
		SET filled_positions = filled_positions - 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND filled_positions > 0
	`

	if _, err := r.db.Executor(ctx).ExecContext(ctx, query, id); err != nil {
		r.logger.Error("Failed to release position", zap.Int64("offer_id", id), zap.Error(err))
		return fmt.Errorf("failed to release position: %w", err)
	}

	return nil
}

// Delete removes an offer. Callers must first verify no blocking applications
// exist.
func (r *OfferRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx, `DELETE FROM offers WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete offer", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete offer: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("offer %d: %w", id, entity.ErrNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *OfferRepository) scanOffer(row rowScanner) (*entity.Offer, error) {
	var offer entity.Offer
	var serviceID sql.NullInt64
	var deadline sql.NullTime
	var description sql.NullString

	err := row.Scan(
		&offer.ID,
		&offer.HospitalID,
		&serviceID,
		&offer.Title,
		&description,
		&offer.Positions,
		&offer.FilledPositions,
		&offer.Status,
		&offer.StartDate,
		&offer.EndDate,
		&deadline,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if serviceID.Valid {
		offer.ServiceID = &serviceID.Int64
	}
	if deadline.Valid {
		t := deadline.Time
		offer.ApplicationDeadline = &t
	}
	if description.Valid {
		offer.Description = description.String
	}

	return &offer, nil
}
