package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/entity"
	"github.com/AymenZahed/pgsm-internship-management-sub002/pkg/database"
	"go.uber.org/zap"
)

// EvaluationRepository handles evaluation database operations.
type EvaluationRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewEvaluationRepository creates a new evaluation repository
func NewEvaluationRepository(db *database.DB, logger *zap.Logger) *EvaluationRepository {
	return &EvaluationRepository{
		db:     db,
		logger: logger,
	}
}

const evaluationColumns = `
	id, internship_id, student_id, evaluator_id, type,
	technical_skills_score, patient_relations_score, teamwork_score, professionalism_score,
	overall_score, comments, status, created_at, updated_at
`

// Create inserts a new evaluation with its computed overall score.
func (r *EvaluationRepository) Create(ctx context.Context, evaluation *entity.Evaluation) error {
	if evaluation.Status == "" {
		evaluation.Status = entity.EvaluationStatusSubmitted
	}

	query := `
		INSERT INTO evaluations (
			internship_id, student_id, evaluator_id, type,
			technical_skills_score, patient_relations_score, teamwork_score, professionalism_score,
			overall_score, comments, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		evaluation.InternshipID,
		evaluation.StudentID,
		evaluation.EvaluatorID,
		evaluation.Type,
		evaluation.TechnicalSkillsScore,
		evaluation.PatientRelationsScore,
		evaluation.TeamworkScore,
		evaluation.ProfessionalismScore,
		evaluation.OverallScore,
		evaluation.Comments,
		evaluation.Status,
	)
	if err != nil {
		r.logger.Error("Failed to create evaluation", zap.Error(err))
		return fmt.Errorf("failed to create evaluation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	evaluation.ID = id
	return nil
}

// GetByID retrieves an evaluation by ID.
func (r *EvaluationRepository) GetByID(ctx context.Context, id int64) (*entity.Evaluation, error) {
	query := `SELECT` + evaluationColumns + `FROM evaluations WHERE id = ?`

	evaluation, err := r.scanEvaluation(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("evaluation %d: %w", id, entity.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get evaluation", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}

	return evaluation, nil
}

// ListByInternship retrieves all evaluations of an internship, oldest first.
func (r *EvaluationRepository) ListByInternship(ctx context.Context, internshipID int64) ([]*entity.Evaluation, error) {
	query := `SELECT` + evaluationColumns + `FROM evaluations WHERE internship_id = ? ORDER BY created_at ASC`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, internshipID)
	if err != nil {
		r.logger.Error("Failed to list evaluations", zap.Int64("internship_id", internshipID), zap.Error(err))
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	defer rows.Close()

	var evaluations []*entity.Evaluation
	for rows.Next() {
		evaluation, err := r.scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan evaluation: %w", err)
		}
		evaluations = append(evaluations, evaluation)
	}

	return evaluations, rows.Err()
}

// Update rewrites the amendable fields and the recomputed overall score.
func (r *EvaluationRepository) Update(ctx context.Context, evaluation *entity.Evaluation) error {
	query := `
		UPDATE evaluations
		SET type = ?, technical_skills_score = ?, patient_relations_score = ?,
			teamwork_score = ?, professionalism_score = ?, overall_score = ?,
			comments = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		evaluation.Type,
		evaluation.TechnicalSkillsScore,
		evaluation.PatientRelationsScore,
		evaluation.TeamworkScore,
		evaluation.ProfessionalismScore,
		evaluation.OverallScore,
		evaluation.Comments,
		evaluation.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update evaluation", zap.Int64("id", evaluation.ID), zap.Error(err))
		return fmt.Errorf("failed to update evaluation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("evaluation %d: %w", evaluation.ID, entity.ErrNotFound)
	}

	return nil
}

func (r *EvaluationRepository) scanEvaluation(row rowScanner) (*entity.Evaluation, error) {
	var evaluation entity.Evaluation
	var technical, patientRelations, teamwork, professionalism, overall sql.NullFloat64
	var comments sql.NullString

	err := row.Scan(
		&evaluation.ID,
		&evaluation.InternshipID,
		&evaluation.StudentID,
		&evaluation.EvaluatorID,
		&evaluation.Type,
		&technical,
		&patientRelations,
		&teamwork,
		&professionalism,
		&overall,
		&comments,
		&evaluation.Status,
		&evaluation.CreatedAt,
		&evaluation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if technical.Valid {
		evaluation.TechnicalSkillsScore = &technical.Float64
	}
	if patientRelations.Valid {
		evaluation.PatientRelationsScore = &patientRelations.Float64
	}
	if teamwork.Valid {
		evaluation.TeamworkScore = &teamwork.Float64
	}
	if professionalism.Valid {
		evaluation.ProfessionalismScore = &professionalism.Float64
	}
	if overall.Valid {
		evaluation.OverallScore = &overall.Float64
	}
	if comments.Valid {
		evaluation.Comments = comments.String
	}

	return &evaluation, nil
}
