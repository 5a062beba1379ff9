package entity

import "time"

// LogbookEntry is a student's dated self-report of activities during an
// internship. Edits are allowed while the entry is not approved; any edit
// resets the status to pending.
type LogbookEntry struct {
	ID                 int64      `json:"id"`
	InternshipID       int64      `json:"internship_id"`
	StudentID          int64      `json:"student_id"`
	Date               time.Time  `json:"date"`
	Activities         string     `json:"activities"`
	LearningObjectives string     `json:"learning_objectives,omitempty"`
	Status             string     `json:"status"`
	SupervisorComments *string    `json:"supervisor_comments,omitempty"`
	ReviewedBy         *int64     `json:"reviewed_by,omitempty"`
	ReviewedAt         *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Editable reports whether the student may still modify or delete the entry.
func (e *LogbookEntry) Editable() bool {
	return e.Status != LogbookStatusApproved
}
