package entity

import "time"

// Application represents a student's request to fill one position on an Offer.
// A student may apply to a given offer at most once.
type Application struct {
	ID               int64      `json:"id"`
	StudentID        int64      `json:"student_id"`
	OfferID          int64      `json:"offer_id"`
	Status           string     `json:"status"`
	CoverLetter      string     `json:"cover_letter,omitempty"`
	Motivation       string     `json:"motivation,omitempty"`
	Experience       string     `json:"experience,omitempty"`
	AvailabilityDate *time.Time `json:"availability_date,omitempty"`
	RejectionReason  *string    `json:"rejection_reason,omitempty"`
	ReviewedBy       *int64     `json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ApplicationHistory is the audit record written for every application status
// transition. Withdrawal deletes the application row itself; its final history
// entry remains as the tombstone.
type ApplicationHistory struct {
	ID             int64     `json:"id"`
	ApplicationID  int64     `json:"application_id"`
	OfferID        int64     `json:"offer_id"`
	StudentID      int64     `json:"student_id"`
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	ActorID        int64     `json:"actor_id"`
	Note           string    `json:"note,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
