package entity

import "time"

// Notification is a persisted in-app message created as a side effect of a
// workflow transition. Never created directly by end-user request.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Data      string    `json:"data,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationPreference holds a user's email delivery toggles. The in-app
// notification row is always written; email is filtered by these flags.
type NotificationPreference struct {
	UserID            int64 `json:"user_id"`
	EmailEnabled      bool  `json:"email_enabled"`
	ApplicationEmails bool  `json:"application_emails"`
	LogbookEmails     bool  `json:"logbook_emails"`
	EvaluationEmails  bool  `json:"evaluation_emails"`
	SecurityEmails    bool  `json:"security_emails"`
}

// AllowsEmail reports whether email delivery is enabled for the notification
// type. Unknown types fall back to the global toggle alone.
func (p *NotificationPreference) AllowsEmail(notificationType string) bool {
	if !p.EmailEnabled {
		return false
	}
	switch notificationType {
	case NotificationTypeApplicationStatus, NotificationTypeInternship:
		return p.ApplicationEmails
	case NotificationTypeLogbook, NotificationTypeAttendance:
		return p.LogbookEmails
	case NotificationTypeEvaluation:
		return p.EvaluationEmails
	default:
		return true
	}
}

// Actor identifies the authenticated principal driving an operation. Identity
// and role resolution happen in the auth layer, outside this core.
type Actor struct {
	ID         int64  `json:"id"`
	Role       string `json:"role"`
	HospitalID int64  `json:"hospital_id,omitempty"`
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
