package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for registration operations. Each maps to a distinct API
// error code so callers can branch on error kind instead of message text.
var (
	ErrAlreadyRegistered  = errors.New("already registered for this event")
	ErrEventFull          = errors.New("event is full")
	ErrEventNotPublished  = errors.New("event is not available for registration")
	ErrRegistrationClosed = errors.New("event has already started")
	ErrAlreadyAttended    = errors.New("cannot cancel after attending")
)

// RegistrationStatus is the lifecycle state of a registration.
type RegistrationStatus string

const (
	RegistrationStatusRegistered RegistrationStatus = "REGISTERED"
	RegistrationStatusConfirmed  RegistrationStatus = "CONFIRMED"
	RegistrationStatusAttended   RegistrationStatus = "ATTENDED"
	RegistrationStatusCancelled  RegistrationStatus = "CANCELLED"
)

// IsValid reports whether s is a known registration status.
func (s RegistrationStatus) IsValid() bool {
	switch s {
	case RegistrationStatusRegistered, RegistrationStatusConfirmed,
		RegistrationStatusAttended, RegistrationStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status may move to next.
// ATTENDED and CANCELLED are terminal; re-registering after a cancellation
// creates a new row instead of reviving the cancelled one.
func (s RegistrationStatus) CanTransitionTo(next RegistrationStatus) bool {
	switch s {
	case RegistrationStatusRegistered:
		return next == RegistrationStatusConfirmed ||
			next == RegistrationStatusAttended ||
			next == RegistrationStatusCancelled
	case RegistrationStatusConfirmed:
		return next == RegistrationStatusAttended ||
			next == RegistrationStatusCancelled
	}
	return false
}

// Registration represents a user's registration for an event. Rows are never
// deleted, only status-transitioned, so history is retained.
// swagger:model Registration
type Registration struct {
	ID           string             `json:"id"`
	EventID      string             `json:"event_id"`
	UserID       string             `json:"user_id"`
	Status       RegistrationStatus `json:"status"`
	Notes        *string            `json:"notes,omitempty"`
	AttendedAt   *time.Time         `json:"attended_at,omitempty"`
	RegisteredAt time.Time          `json:"registered_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// NewRegistration returns a new REGISTERED Registration. ID is set by the
// repository on create.
func NewRegistration(eventID, userID string, notes *string, now time.Time) *Registration {
	return &Registration{
		EventID:      eventID,
		UserID:       userID,
		Status:       RegistrationStatusRegistered,
		Notes:        notes,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
}

// RegistrationWithEvent bundles a registration with its related event.
type RegistrationWithEvent struct {
	Registration *Registration `json:"registration"`
	Event        *Event        `json:"event"`
}

// RegistrationRepository defines storage operations for registrations.
//
// Register and Cancel are transactional: they serialize the capacity
// check-then-increment per event so concurrent registrations against the
// last remaining seat cannot both succeed, and they keep the event's
// current_attendees counter consistent with the count of non-cancelled rows.
type RegistrationRepository interface {
	// Register creates a REGISTERED row and increments the event's attendee
	// counter in a single transaction. Fails with ErrNotFound,
	// ErrEventNotPublished, ErrRegistrationClosed, ErrAlreadyRegistered or
	// ErrEventFull.
	Register(ctx context.Context, eventID, userID string, notes *string, now time.Time) (*Registration, error)
	// Cancel marks the caller's non-cancelled registration CANCELLED and
	// decrements the attendee counter (floored at zero) in a single
	// transaction. Fails with ErrNotFound or ErrAlreadyAttended.
	Cancel(ctx context.Context, eventID, userID string, now time.Time) error
	// GetActiveByEventAndUser returns the caller's non-cancelled
	// registration for the event, or ErrNotFound.
	GetActiveByEventAndUser(ctx context.Context, eventID, userID string) (*Registration, error)
	// ListByUser returns the user's registrations newest first, optionally
	// filtered by status and restricted to events that have not started yet.
	ListByUser(ctx context.Context, userID string, status *RegistrationStatus, upcoming bool) ([]*RegistrationWithEvent, error)
	// CountByEventIDs returns the number of registration rows per event,
	// cancelled ones included.
	CountByEventIDs(ctx context.Context, eventIDs []string) (map[string]int, error)
	// ListByUserForEvents returns the user's registration per event for the
	// given events, any status, preferring the most recent row.
	ListByUserForEvents(ctx context.Context, userID string, eventIDs []string) (map[string]*Registration, error)
}

// AttendeeService defines attendee-facing registration operations.
type AttendeeService interface {
	RegisterForEvent(ctx context.Context, eventID, userID string, notes *string) (*Registration, error)
	CancelRegistration(ctx context.Context, eventID, userID string) error
	ListMyRegistrations(ctx context.Context, userID string, status *RegistrationStatus, upcoming bool) ([]*RegistrationWithEvent, error)
}
