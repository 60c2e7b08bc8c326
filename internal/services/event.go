package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alumniconnect/internal/domain"
)

type eventService struct {
	eventRepo        domain.EventRepository
	registrationRepo domain.RegistrationRepository
	contextTimeout   time.Duration
}

// NewEventService creates an EventService with the given repositories.
func NewEventService(
	eventRepo domain.EventRepository,
	registrationRepo domain.RegistrationRepository,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:        eventRepo,
		registrationRepo: registrationRepo,
		contextTimeout:   timeout,
	}
}

func (s *eventService) ListEvents(ctx context.Context, filter *domain.EventFilter, viewerID string) ([]*domain.EventView, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	filter.Normalize()

	events, total, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	if len(events) == 0 {
		return []*domain.EventView{}, total, nil
	}

	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}

	counts, err := s.registrationRepo.CountByEventIDs(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("count registrations: %w", err)
	}

	mine := map[string]*domain.Registration{}
	if viewerID != "" {
		mine, err = s.registrationRepo.ListByUserForEvents(ctx, viewerID, ids)
		if err != nil {
			return nil, 0, fmt.Errorf("list viewer registrations: %w", err)
		}
	}

	now := time.Now()
	views := make([]*domain.EventView, 0, len(events))
	for _, e := range events {
		views = append(views, buildEventView(e, counts[e.ID], mine[e.ID], now))
	}
	return views, total, nil
}

func (s *eventService) GetEvent(ctx context.Context, id, viewerID string) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	// Analytics counter, incremented on every read. Deliberately not
	// serialized with registrations; drift under heavy concurrent reads is
	// tolerated.
	if err := s.eventRepo.IncrementViewCount(ctx, id); err != nil {
		return nil, fmt.Errorf("increment view count: %w", err)
	}
	event.ViewCount++

	counts, err := s.registrationRepo.CountByEventIDs(ctx, []string{id})
	if err != nil {
		return nil, fmt.Errorf("count registrations: %w", err)
	}

	var mine *domain.Registration
	if viewerID != "" {
		regs, err := s.registrationRepo.ListByUserForEvents(ctx, viewerID, []string{id})
		if err != nil {
			return nil, fmt.Errorf("list viewer registrations: %w", err)
		}
		mine = regs[id]
	}

	return buildEventView(event, counts[id], mine, time.Now()), nil
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.OrganizerID == "" {
		return fmt.Errorf("%w: organizer is required", domain.ErrInvalidInput)
	}
	if event.Title == "" || event.Description == "" || event.Location == "" {
		return fmt.Errorf("%w: title, description and location are required", domain.ErrInvalidInput)
	}
	if !event.Type.IsValid() {
		return fmt.Errorf("%w: unknown event type %q", domain.ErrInvalidInput, event.Type)
	}
	if event.EndDate.Before(event.StartDate) {
		return fmt.Errorf("%w: end date must not precede start date", domain.ErrInvalidInput)
	}
	if event.Capacity != nil && *event.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", domain.ErrInvalidInput)
	}
	if event.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}

	// New events await admin approval before they show up in listings.
	event.Status = domain.EventStatusPendingApproval
	event.CurrentAttendees = 0
	event.ViewCount = 0
	if event.Currency == "" {
		event.Currency = "IDR"
	}
	if event.Tags == nil {
		event.Tags = []string{}
	}
	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func buildEventView(e *domain.Event, registrationsCount int, mine *domain.Registration, now time.Time) *domain.EventView {
	view := &domain.EventView{
		Event:              e,
		RegistrationsCount: registrationsCount,
		DaysLeft:           e.DaysLeft(now),
	}
	if e.Capacity != nil {
		view.IsFull = registrationsCount >= *e.Capacity
		view.Percentage = float64(e.CurrentAttendees) / float64(*e.Capacity) * 100
	}
	if mine != nil {
		view.HasRegistered = true
		status := mine.Status
		view.RegistrationStatus = &status
	}
	return view
}
