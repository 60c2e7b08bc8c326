package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared across repositories and services.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// EventType classifies an event.
type EventType string

const (
	EventTypeWebinar    EventType = "WEBINAR"
	EventTypeWorkshop   EventType = "WORKSHOP"
	EventTypeMeetup     EventType = "MEETUP"
	EventTypeReunion    EventType = "REUNION"
	EventTypeSeminar    EventType = "SEMINAR"
	EventTypeNetworking EventType = "NETWORKING"
	EventTypeConference EventType = "CONFERENCE"
)

// IsValid reports whether t is a known event type.
func (t EventType) IsValid() bool {
	switch t {
	case EventTypeWebinar, EventTypeWorkshop, EventTypeMeetup, EventTypeReunion,
		EventTypeSeminar, EventTypeNetworking, EventTypeConference:
		return true
	}
	return false
}

// EventStatus is the lifecycle state of an event. New events start in
// PENDING_APPROVAL and are moved to PUBLISHED by an admin action outside
// this service.
type EventStatus string

const (
	EventStatusDraft           EventStatus = "DRAFT"
	EventStatusPendingApproval EventStatus = "PENDING_APPROVAL"
	EventStatusPublished       EventStatus = "PUBLISHED"
	EventStatusOngoing         EventStatus = "ONGOING"
	EventStatusCompleted       EventStatus = "COMPLETED"
	EventStatusCancelled       EventStatus = "CANCELLED"
)

// IsValid reports whether s is a known event status.
func (s EventStatus) IsValid() bool {
	switch s {
	case EventStatusDraft, EventStatusPendingApproval, EventStatusPublished,
		EventStatusOngoing, EventStatusCompleted, EventStatusCancelled:
		return true
	}
	return false
}

// Event represents an alumni-facing event.
// swagger:model Event
type Event struct {
	ID               string      `json:"id"`
	OrganizerID      string      `json:"organizer_id"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Type             EventType   `json:"type"`
	Status           EventStatus `json:"status"`
	CoverImage       *string     `json:"cover_image,omitempty"`
	StartDate        time.Time   `json:"start_date"`
	EndDate          time.Time   `json:"end_date"`
	Location         string      `json:"location"`
	IsOnline         bool        `json:"is_online"`
	MeetingURL       *string     `json:"meeting_url,omitempty"`
	Capacity         *int        `json:"capacity,omitempty"`
	CurrentAttendees int         `json:"current_attendees"`
	Price            int         `json:"price"`
	Currency         string      `json:"currency"`
	Tags             []string    `json:"tags"`
	Requirements     *string     `json:"requirements,omitempty"`
	Agenda           *string     `json:"agenda,omitempty"`
	Speakers         *string     `json:"speakers,omitempty"`
	ViewCount        int         `json:"view_count"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// DaysLeft returns the number of whole days between now and the event's end
// date, clamped at zero once the event is over.
func (e *Event) DaysLeft(now time.Time) int {
	d := int(e.EndDate.Sub(now).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// EventView is an Event augmented with derived, read-only fields.
//
// RegistrationsCount counts every registration row for the event, cancelled
// ones included, while CurrentAttendees counts only non-cancelled rows; the
// two can legitimately diverge.
// swagger:model EventView
type EventView struct {
	*Event
	RegistrationsCount int                 `json:"registrations_count"`
	HasRegistered      bool                `json:"has_registered"`
	RegistrationStatus *RegistrationStatus `json:"registration_status,omitempty"`
	IsFull             bool                `json:"is_full"`
	Percentage         float64             `json:"percentage"`
	DaysLeft           int                 `json:"days_left"`
}

// Listing defaults and limits.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
	DefaultOrderBy   = "startDate"
)

// orderableAttributes is the whitelist of Event attribute names accepted as
// an ordering key. Unknown names fall back to DefaultOrderBy.
var orderableAttributes = map[string]struct{}{
	"startDate":        {},
	"endDate":          {},
	"title":            {},
	"type":             {},
	"status":           {},
	"price":            {},
	"capacity":         {},
	"currentAttendees": {},
	"viewCount":        {},
	"createdAt":        {},
	"updatedAt":        {},
}

// EventFilter is the structured filter for event listings. All present
// fields are combined conjunctively.
type EventFilter struct {
	Status      *EventStatus
	Search      string
	Type        *EventType
	IsOnline    *bool
	OrganizerID string
	Upcoming    bool
	OrderBy     string
	Order       string
	Limit       int
	Offset      int
}

// Normalize applies listing defaults in place: status PUBLISHED when
// unspecified, ordering by start date ascending, limit 20 (capped at 100),
// offset 0. It returns the filter for chaining.
func (f *EventFilter) Normalize() *EventFilter {
	if f.Status == nil {
		published := EventStatusPublished
		f.Status = &published
	}
	if _, ok := orderableAttributes[f.OrderBy]; !ok {
		f.OrderBy = DefaultOrderBy
	}
	if f.Order != "desc" {
		f.Order = "asc"
	}
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Pagination describes the window of a paginated listing.
// swagger:model Pagination
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// NewPagination builds Pagination from a normalized filter and the total
// match count.
func NewPagination(f *EventFilter, total int) Pagination {
	return Pagination{
		Total:   total,
		Limit:   f.Limit,
		Offset:  f.Offset,
		HasMore: f.Offset+f.Limit < total,
	}
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// List returns the page of events matching the filter plus the total
	// match count before pagination.
	List(ctx context.Context, filter *EventFilter) ([]*Event, int, error)
	// IncrementViewCount bumps the event's view counter by one. Best-effort
	// analytics; callers may ignore failures.
	IncrementViewCount(ctx context.Context, id string) error
}

// EventService defines the read side of the events API plus event creation.
type EventService interface {
	// ListEvents returns event views for the filter plus the total match
	// count. viewerID personalizes has_registered and may be empty for
	// anonymous callers.
	ListEvents(ctx context.Context, filter *EventFilter, viewerID string) ([]*EventView, int, error)
	// GetEvent returns a single event view and increments its view counter.
	GetEvent(ctx context.Context, id, viewerID string) (*EventView, error)
	CreateEvent(ctx context.Context, event *Event) error
}
