package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/entity"
	"github.com/AymenZahed/pgsm-internship-management-sub002/pkg/database"
	"go.uber.org/zap"
)

// ServiceRepository handles hospital service (department) reads.
type ServiceRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewServiceRepository creates a new service repository
func NewServiceRepository(db *database.DB, logger *zap.Logger) *ServiceRepository {
	return &ServiceRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a hospital service by ID.
func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*entity.HospitalService, error) {
	query := `SELECT id, hospital_id, name, head_doctor_id FROM hospital_services WHERE id = ?`

	var svc entity.HospitalService
	var headDoctorID sql.NullInt64

	err := r.db.Executor(ctx).QueryRowContext(ctx, query, id).Scan(
		&svc.ID,
		&svc.HospitalID,
		&svc.Name,
		&headDoctorID,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("hospital service %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get hospital service", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get hospital service: %w", err)
	}

	if headDoctorID.Valid {
		svc.HeadDoctorID = &headDoctorID.Int64
	}

	return &svc, nil
}
