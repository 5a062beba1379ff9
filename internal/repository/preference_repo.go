package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/entity"
	"github.com/AymenZahed/pgsm-internship-management-sub002/pkg/database"
	"go.uber.org/zap"
)

// PreferenceRepository handles notification preference database operations.
type PreferenceRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *database.DB, logger *zap.Logger) *PreferenceRepository {
	return &PreferenceRepository{
		db:     db,
		logger: logger,
	}
}

// GetByUserID retrieves a user's notification preferences. Users without a
// stored row get the default set: everything enabled.
func (r *PreferenceRepository) GetByUserID(ctx context.Context, userID int64) (*entity.NotificationPreference, error) {
	query := `
		SELECT user_id, email_enabled, application_emails, logbook_emails,
			evaluation_emails, security_emails
		FROM notification_preferences
		WHERE user_id = ?
	`

	var pref entity.NotificationPreference
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, userID).Scan(
		&pref.UserID,
		&pref.EmailEnabled,
		&pref.ApplicationEmails,
		&pref.LogbookEmails,
		&pref.EvaluationEmails,
		&pref.SecurityEmails,
	)
	if err == sql.ErrNoRows {
		return &entity.NotificationPreference{
			UserID:            userID,
			EmailEnabled:      true,
			ApplicationEmails: true,
			LogbookEmails:     true,
			EvaluationEmails:  true,
			SecurityEmails:    true,
		}, nil
	}
	if err != nil {
		r.logger.Error("Failed to get notification preferences", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	return &pref, nil
}

// Upsert stores a user's notification preferences.
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *entity.NotificationPreference) error {
	query := `
		INSERT INTO notification_preferences (
			user_id, email_enabled, application_emails, logbook_emails,
			evaluation_emails, security_emails
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			email_enabled = excluded.email_enabled,
			application_emails = excluded.application_emails,
			logbook_emails = excluded.logbook_emails,
			evaluation_emails = excluded.evaluation_emails,
			security_emails = excluded.security_emails
	`

	_, err := r.db.Executor(ctx).ExecContext(ctx, query,
		pref.UserID,
		pref.EmailEnabled,
		pref.ApplicationEmails,
		pref.LogbookEmails,
		pref.EvaluationEmails,
		pref.SecurityEmails,
	)
	if err != nil {
		r.logger.Error("Failed to upsert notification preferences", zap.Int64("user_id", pref.UserID), zap.Error(err))
		return fmt.Errorf("failed to upsert preferences: %w", err)
	}

	return nil
}
