package services

import (
	"context"
	"time"

	"alumniconnect/internal/domain"
)

type mockEventRepo struct {
	createFn             func(ctx context.Context, e *domain.Event) error
	getByIDFn            func(ctx context.Context, id string) (*domain.Event, error)
	listFn               func(ctx context.Context, filter *domain.EventFilter) ([]*domain.Event, int, error)
	incrementViewCountFn func(ctx context.Context, id string) error
}

func (m *mockEventRepo) Create(ctx context.Context, e *domain.Event) error {
	return m.createFn(ctx, e)
}

func (m *mockEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockEventRepo) List(ctx context.Context, filter *domain.EventFilter) ([]*domain.Event, int, error) {
	return m.listFn(ctx, filter)
}

func (m *mockEventRepo) IncrementViewCount(ctx context.Context, id string) error {
	return m.incrementViewCountFn(ctx, id)
}

type mockRegistrationRepo struct {
	registerFn                func(ctx context.Context, eventID, userID string, notes *string, now time.Time) (*domain.Registration, error)
	cancelFn                  func(ctx context.Context, eventID, userID string, now time.Time) error
	getActiveByEventAndUserFn func(ctx context.Context, eventID, userID string) (*domain.Registration, error)
	listByUserFn              func(ctx context.Context, userID string, status *domain.RegistrationStatus, upcoming bool) ([]*domain.RegistrationWithEvent, error)
	countByEventIDsFn         func(ctx context.Context, eventIDs []string) (map[string]int, error)
	listByUserForEventsFn     func(ctx context.Context, userID string, eventIDs []string) (map[string]*domain.Registration, error)
}

func (m *mockRegistrationRepo) Register(ctx context.Context, eventID, userID string, notes *string, now time.Time) (*domain.Registration, error) {
	return m.registerFn(ctx, eventID, userID, notes, now)
}

func (m *mockRegistrationRepo) Cancel(ctx context.Context, eventID, userID string, now time.Time) error {
	return m.cancelFn(ctx, eventID, userID, now)
}

func (m *mockRegistrationRepo) GetActiveByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Registration, error) {
	return m.getActiveByEventAndUserFn(ctx, eventID, userID)
}

func (m *mockRegistrationRepo) ListByUser(ctx context.Context, userID string, status *domain.RegistrationStatus, upcoming bool) ([]*domain.RegistrationWithEvent, error) {
	return m.listByUserFn(ctx, userID, status, upcoming)
}

func (m *mockRegistrationRepo) CountByEventIDs(ctx context.Context, eventIDs []string) (map[string]int, error) {
	return m.countByEventIDsFn(ctx, eventIDs)
}

func (m *mockRegistrationRepo) ListByUserForEvents(ctx context.Context, userID string, eventIDs []string) (map[string]*domain.Registration, error) {
	return m.listByUserForEventsFn(ctx, userID, eventIDs)
}
