package entity

import "time"

// Evaluation is a doctor's scored assessment of a student's internship
// performance. The overall score is recomputed from the component scores on
// every create and amend.
type Evaluation struct {
	ID                    int64     `json:"id"`
	InternshipID          int64     `json:"internship_id"`
	StudentID             int64     `json:"student_id"`
	EvaluatorID           int64     `json:"evaluator_id"`
	Type                  string    `json:"type"`
	TechnicalSkillsScore  *float64  `json:"technical_skills_score,omitempty"`
	PatientRelationsScore *float64  `json:"patient_relations_score,omitempty"`
	TeamworkScore         *float64  `json:"teamwork_score,omitempty"`
	ProfessionalismScore  *float64  `json:"professionalism_score,omitempty"`
	OverallScore          *float64  `json:"overall_score,omitempty"`
	Comments              string    `json:"comments,omitempty"`
	Status                string    `json:"status"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}
