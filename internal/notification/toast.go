// Package notification provides transient toast notifications that stack,
// stay visible for a fixed duration, fade and are then removed.
package notification

import (
	"time"

	"github.com/google/uuid"
)

// ToastType represents the visual style of a toast
type ToastType string

const (
	// ToastTypeSuccess confirms a completed action
	ToastTypeSuccess ToastType = "success"
	// ToastTypeError reports a failed action
	ToastTypeError ToastType = "error"
	// ToastTypeInfo is neutral status text
	ToastTypeInfo ToastType = "info"
)

// ToastState tracks where a toast is in its lifecycle
type ToastState string

const (
	ToastVisible ToastState = "visible"
	ToastFading  ToastState = "fading"
	ToastRemoved ToastState = "removed"
)

// Toast is a single transient message
type Toast struct {
	ID        string        `json:"id"`
	Message   string        `json:"message"`
	Type      ToastType     `json:"type"`
	Component string        `json:"component,omitempty"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
	State     ToastState    `json:"state"`
}

// NewToast creates a toast with a unique ID. Duration is zero until set; the
// Stack applies its default on Show.
func NewToast(message string, toastType ToastType) *Toast {
	return &Toast{
		ID:        uuid.New().String(),
		Message:   message,
		Type:      toastType,
		Timestamp: time.Now(),
		State:     ToastVisible,
	}
}

// WithDuration sets how long the toast stays visible before fading
func (t *Toast) WithDuration(d time.Duration) *Toast {
	t.Duration = d
	return t
}

// WithComponent records the component that raised the toast
func (t *Toast) WithComponent(component string) *Toast {
	t.Component = component
	return t
}

// StyleClass returns the background class for the toast type
func (t *Toast) StyleClass() string {
	return StyleClass(t.Type)
}

// StyleClass maps a toast type to its background class
func StyleClass(toastType ToastType) string {
	switch toastType {
	case ToastTypeSuccess:
		return "bg-green-500"
	case ToastTypeError:
		return "bg-red-500"
	default:
		return "bg-blue-500"
	}
}
