package entity

import (
	"fmt"
	"math"
	"time"

	"github.com/AymenZahed/pgsm-internship-management-sub002/pkg/utils"
)

// AttendanceRecord is a student's daily attendance for an internship.
// At most one record exists per (internship, date).
type AttendanceRecord struct {
	ID           int64      `json:"id"`
	InternshipID int64      `json:"internship_id"`
	StudentID    int64      `json:"student_id"`
	Date         time.Time  `json:"date"`
	CheckIn      *string    `json:"check_in,omitempty"`
	CheckOut     *string    `json:"check_out,omitempty"`
	Status       string     `json:"status"`
	HoursWorked  *float64   `json:"hours_worked,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	ValidatedBy  *int64     `json:"validated_by,omitempty"`
	ValidatedAt  *time.Time `json:"validated_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ComputeHoursWorked returns the decimal hours between check-in and check-out,
// rounded to 2 places. Returns nil unless both times are present and check-out
// is after check-in.
func (r *AttendanceRecord) ComputeHoursWorked() (*float64, error) {
	if r.CheckIn == nil || r.CheckOut == nil {
		return nil, nil
	}

	in, err := utils.ParseClock(*r.CheckIn)
	if err != nil {
		return nil, fmt.Errorf("parse check_in %q: %w", *r.CheckIn, err)
	}
	out, err := utils.ParseClock(*r.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("parse check_out %q: %w", *r.CheckOut, err)
	}

	diff := out.Sub(in).Hours()
	if diff <= 0 {
		return nil, nil
	}

	hours := math.Round(diff*100) / 100
	return &hours, nil
}
