package event

// Type identifies the type of domain event.
type Type string

const (
	TypeApplicationSubmitted = Type("application.submitted")
	TypeApplicationReviewing = Type("application.reviewing")
	TypeApplicationAccepted  = Type("application.accepted")
	TypeApplicationRejected  = Type("application.rejected")
	TypeApplicationWithdrawn = Type("application.withdrawn")
	TypeInternshipCreated    = Type("internship.created")
	TypeAttendanceValidated  = Type("attendance.validated")
	TypeLogbookSubmitted     = Type("logbook.submitted")
	TypeLogbookReviewed      = Type("logbook.reviewed")
	TypeEvaluationSubmitted  = Type("evaluation.submitted")
	TypeEvaluationAmended    = Type("evaluation.amended")
)

// String returns the string representation of the event type.
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants.
func (t Type) IsValid() bool {
	switch t {
	case TypeApplicationSubmitted,
		TypeApplicationReviewing,
		TypeApplicationAccepted,
		TypeApplicationRejected,
		TypeApplicationWithdrawn,
		TypeInternshipCreated,
		TypeAttendanceValidated,
		TypeLogbookSubmitted,
		TypeLogbookReviewed,
		TypeEvaluationSubmitted,
		TypeEvaluationAmended:
		return true
	default:
		return false
	}
}
