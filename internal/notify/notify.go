// Package notify delivers run outcome notifications.
package notify

import (
	"fmt"

	"github.com/hochfrequenz/app-forge/internal/domain"
)

// NotificationType represents the type of notification
type NotificationType int

const (
	NotifyInfo NotificationType = iota
	NotifySuccess
	NotifyWarning
	NotifyError
)

// Notification represents a notification to be sent
type Notification struct {
	Title   string
	Message string
	Type    NotificationType
	RunID   string // Optional run reference
	App     string // Optional app name
}

// Notifier is the interface for sending notifications
type Notifier interface {
	Send(n Notification) error
}

// MultiNotifier sends to multiple notifiers
type MultiNotifier struct {
	notifiers []Notifier
}

// NewMultiNotifier creates a notifier that sends to all provided notifiers
func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

// Send sends the notification to all notifiers
func (m *MultiNotifier) Send(n Notification) error {
	var lastErr error
	for _, notifier := range m.notifiers {
		if err := notifier.Send(n); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// NoopNotifier does nothing (for testing or disabled notifications)
type NoopNotifier struct{}

func (NoopNotifier) Send(n Notification) error { return nil }

// RunFinished builds the standard end-of-run notification from a summary.
func RunFinished(runID string, summary domain.RunSummary, runErr error) Notification {
	if runErr != nil {
		return Notification{
			Title:   "Automation run failed",
			Message: runErr.Error(),
			Type:    NotifyError,
			RunID:   runID,
		}
	}
	if summary.Empty() {
		return Notification{
			Title:   "Automation run finished",
			Message: "No changes this run.",
			Type:    NotifyInfo,
			RunID:   runID,
		}
	}
	return Notification{
		Title: "Automation run finished",
		Message: fmt.Sprintf("%d new apps, %d bugs fixed, %d improvements, %d doc updates",
			len(summary.NewApps), len(summary.BugsFixed), len(summary.Improved), len(summary.DocsUpdated)),
		Type:  NotifySuccess,
		RunID: runID,
	}
}
