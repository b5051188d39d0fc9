package notification

import (
	"encoding/json"
	"time"
)

// Status is the severity of a notification
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusInfo    Status = "info"
	StatusWarning Status = "warning"
)

const (
	// DefaultDuration is how long a notification stays visible.
	DefaultDuration = 5 * time.Second
	// ShortDuration is used for local validation messages.
	ShortDuration = 3 * time.Second
)

// Notification represents a message shown to the user
type Notification struct {
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Status      Status        `json:"status"`
	Duration    time.Duration `json:"-"`
	IsClosable  bool          `json:"is_closable"`
}

// MarshalJSON writes Duration as whole milliseconds.
func (n Notification) MarshalJSON() ([]byte, error) {
	type alias Notification
	return json.Marshal(struct {
		alias
		DurationMS int64 `json:"duration"`
	}{alias: alias(n), DurationMS: n.Duration.Milliseconds()})
}

func newNotification(status Status, title, description string) Notification {
	return Notification{
		Title:       title,
		Description: description,
		Status:      status,
		Duration:    DefaultDuration,
		IsClosable:  true,
	}
}

// Success creates a success notification
func Success(title, description string) Notification {
	return newNotification(StatusSuccess, title, description)
}

// Error creates an error notification
func Error(title, description string) Notification {
	return newNotification(StatusError, title, description)
}

// WithDuration returns a copy of n shown for d.
func (n Notification) WithDuration(d time.Duration) Notification {
	n.Duration = d
	return n
}
