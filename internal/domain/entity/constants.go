package entity

// Status constants for Offer
const (
	OfferStatusDraft     = "draft"
	OfferStatusPublished = "published"
	OfferStatusClosed    = "closed"
	OfferStatusCancelled = "cancelled"
)

// Status constants for Application
const (
	ApplicationStatusPending   = "pending"
	ApplicationStatusReviewing = "reviewing"
	ApplicationStatusAccepted  = "accepted"
	ApplicationStatusRejected  = "rejected"
	ApplicationStatusWithdrawn = "withdrawn"
)

// Status constants for Internship
const (
	InternshipStatusUpcoming  = "upcoming"
	InternshipStatusActive    = "active"
	InternshipStatusCompleted = "completed"
	InternshipStatusCancelled = "cancelled"
)

// Status constants for AttendanceRecord. The validation outcome and the
// physical-presence outcome share one flat enum at the interface boundary.
const (
	AttendanceStatusPending  = "pending"
	AttendanceStatusApproved = "approved"
	AttendanceStatusRejected = "rejected"
	AttendanceStatusPresent  = "present"
	AttendanceStatusAbsent   = "absent"
	AttendanceStatusLate     = "late"
	AttendanceStatusExcused  = "excused"
)

// Status constants for LogbookEntry
const (
	LogbookStatusPending           = "pending"
	LogbookStatusApproved          = "approved"
	LogbookStatusRevisionRequested = "revision_requested"
)

// Evaluation type constants
const (
	EvaluationTypeMidTerm = "mid-term"
	EvaluationTypeFinal   = "final"
	EvaluationTypeMonthly = "monthly"
)

// Status constants for Evaluation
const (
	EvaluationStatusSubmitted = "submitted"
)

// Actor role constants
const (
	RoleStudent  = "student"
	RoleDoctor   = "doctor"
	RoleHospital = "hospital"
	RoleAdmin    = "admin"
)

// Notification type constants
const (
	NotificationTypeApplicationStatus = "application_status"
	NotificationTypeAttendance        = "attendance"
	NotificationTypeLogbook           = "logbook"
	NotificationTypeEvaluation        = "evaluation"
	NotificationTypeInternship        = "internship"
)

// ValidAttendanceTargets enumerates the statuses a doctor may assign when
// validating an attendance record.
var ValidAttendanceTargets = map[string]bool{
	AttendanceStatusApproved: true,
	AttendanceStatusRejected: true,
	AttendanceStatusPresent:  true,
	AttendanceStatusAbsent:   true,
	AttendanceStatusLate:     true,
	AttendanceStatusExcused:  true,
}

// AttendanceStatusAccruesHours reports whether a validation outcome counts the
// record's hours toward the internship total.
func AttendanceStatusAccruesHours(status string) bool {
	return status == AttendanceStatusApproved || status == AttendanceStatusPresent
}

// ValidEvaluationTypes enumerates the accepted evaluation types.
var ValidEvaluationTypes = map[string]bool{
	EvaluationTypeMidTerm: true,
	EvaluationTypeFinal:   true,
	EvaluationTypeMonthly: true,
}
