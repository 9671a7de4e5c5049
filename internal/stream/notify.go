package stream

import "github.com/cybersentry/sentry/pkg/model"

// Notifier receives user-facing connection notifications.
type Notifier interface {
	Notify(model.Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(model.Notification)

func (f NotifierFunc) Notify(n model.Notification) { f(n) }

type nopNotifier struct{}

func (nopNotifier) Notify(model.Notification) {}

var (
	connectedNotification = model.Notification{
		Title:       "Network Monitor Connected",
		Description: "Successfully connected to packet scanning service",
		Severity:    model.SeveritySuccess,
	}
	transportErrorNotification = model.Notification{
		Title:       "Connection Error",
		Description: "Failed to connect to network monitoring service",
		Severity:    model.SeverityDestructive,
	}
	exhaustedNotification = model.Notification{
		Title:       "Connection Failed",
		Description: "Could not reconnect to network monitoring service after multiple attempts",
		Severity:    model.SeverityDestructive,
	}
)
