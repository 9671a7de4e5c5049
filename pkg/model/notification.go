package model

type Severity string

const (
	SeverityInfo        Severity = "info"
	SeveritySuccess     Severity = "success"
	SeverityWarning     Severity = "warning"
	SeverityDestructive Severity = "destructive"
)

// Notification is a short user-facing message (a toast in the dashboard,
// a stderr line in watch mode).
type Notification struct {
	Title       string
	Description string
	Severity    Severity
}
