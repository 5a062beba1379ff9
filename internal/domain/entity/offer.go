package entity

import "time"

// Offer represents a hospital-published internship opportunity.
// Invariant: FilledPositions never exceeds Positions; only published offers
// accept new applications.
type Offer struct {
	ID                  int64      `json:"id"`
	HospitalID          int64      `json:"hospital_id"`
	ServiceID           *int64     `json:"service_id,omitempty"`
	Title               string     `json:"title"`
	Description         string     `json:"description,omitempty"`
	Positions           int        `json:"positions"`
	FilledPositions     int        `json:"filled_positions"`
	Status              string     `json:"status"`
	StartDate           time.Time  `json:"start_date"`
	EndDate             time.Time  `json:"end_date"`
	ApplicationDeadline *time.Time `json:"application_deadline,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// HasCapacity reports whether the offer can admit another application.
// The authoritative check is the conditional increment in the repository;
// this is the cheap pre-check used to fail fast.
func (o *Offer) HasCapacity() bool {
	return o.FilledPositions < o.Positions
}

// AcceptsApplications reports whether new applications may target this offer.
func (o *Offer) AcceptsApplications() bool {
	return o.Status == OfferStatusPublished
}

// HospitalService represents a department within a hospital. The head doctor
// may validate attendance for internships hosted by the service.
type HospitalService struct {
	ID           int64  `json:"id"`
	HospitalID   int64  `json:"hospital_id"`
	Name         string `json:"name"`
	HeadDoctorID *int64 `json:"head_doctor_id,omitempty"`
}
