package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"alumniconnect/internal/domain"
)

// registrationSentinels are passed through to callers untouched so the
// delivery layer can map each to its own error code.
var registrationSentinels = []error{
	domain.ErrNotFound,
	domain.ErrEventNotPublished,
	domain.ErrRegistrationClosed,
	domain.ErrAlreadyRegistered,
	domain.ErrEventFull,
	domain.ErrAlreadyAttended,
}

func isRegistrationSentinel(err error) bool {
	for _, s := range registrationSentinels {
		if errors.Is(err, s) {
			return true
		}
	}
	return false
}

type attendeeService struct {
	registrationRepo domain.RegistrationRepository
	contextTimeout   time.Duration
}

// NewAttendeeService creates an AttendeeService with the given repository.
func NewAttendeeService(
	registrationRepo domain.RegistrationRepository,
	timeout time.Duration,
) domain.AttendeeService {
	return &attendeeService{
		registrationRepo: registrationRepo,
		contextTimeout:   timeout,
	}
}

// RegisterForEvent registers the user for the event. The repository runs the
// existence, status, window, duplicate and capacity checks inside one
// transaction, so the service only translates errors.
func (s *attendeeService) RegisterForEvent(ctx context.Context, eventID, userID string, notes *string) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reg, err := s.registrationRepo.Register(ctx, eventID, userID, notes, time.Now())
	if err != nil {
		if isRegistrationSentinel(err) {
			return nil, err
		}
		return nil, fmt.Errorf("register for event: %w", err)
	}
	return reg, nil
}

func (s *attendeeService) CancelRegistration(ctx context.Context, eventID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.registrationRepo.Cancel(ctx, eventID, userID, time.Now()); err != nil {
		if isRegistrationSentinel(err) {
			return err
		}
		return fmt.Errorf("cancel registration: %w", err)
	}
	return nil
}

func (s *attendeeService) ListMyRegistrations(ctx context.Context, userID string, status *domain.RegistrationStatus, upcoming bool) ([]*domain.RegistrationWithEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	regs, err := s.registrationRepo.ListByUser(ctx, userID, status, upcoming)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	if regs == nil {
		regs = []*domain.RegistrationWithEvent{}
	}
	return regs, nil
}
