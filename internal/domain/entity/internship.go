package entity

import "time"

// Internship is the realized placement created when an Application is
// accepted. Exactly one internship exists per accepted application.
type Internship struct {
	ID             int64     `json:"id"`
	ApplicationID  int64     `json:"application_id"`
	StudentID      int64     `json:"student_id"`
	HospitalID     int64     `json:"hospital_id"`
	ServiceID      *int64    `json:"service_id,omitempty"`
	TutorID        *int64    `json:"tutor_id,omitempty"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Status         string    `json:"status"`
	CompletedHours float64   `json:"completed_hours"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// InitialInternshipStatus derives the status of a freshly created internship
// from its start date: active when already started, upcoming otherwise.
func InitialInternshipStatus(startDate, now time.Time) string {
	if !startDate.After(now) {
		return InternshipStatusActive
	}
	return InternshipStatusUpcoming
}
