package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"alumniconnect/internal/delivery/http/helpers"
	"alumniconnect/internal/domain"
)

const validEventID = "3f2c9a1e-7b54-4f0d-9c6e-8a1b2c3d4e5f"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockEventService struct {
	listEventsFn  func(ctx context.Context, filter *domain.EventFilter, viewerID string) ([]*domain.EventView, int, error)
	getEventFn    func(ctx context.Context, id, viewerID string) (*domain.EventView, error)
	createEventFn func(ctx context.Context, event *domain.Event) error
}

func (m *mockEventService) ListEvents(ctx context.Context, filter *domain.EventFilter, viewerID string) ([]*domain.EventView, int, error) {
	return m.listEventsFn(ctx, filter, viewerID)
}

func (m *mockEventService) GetEvent(ctx context.Context, id, viewerID string) (*domain.EventView, error) {
	return m.getEventFn(ctx, id, viewerID)
}

func (m *mockEventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	return m.createEventFn(ctx, event)
}

type mockAttendeeService struct {
	registerFn func(ctx context.Context, eventID, userID string, notes *string) (*domain.Registration, error)
	cancelFn   func(ctx context.Context, eventID, userID string) error
	listFn     func(ctx context.Context, userID string, status *domain.RegistrationStatus, upcoming bool) ([]*domain.RegistrationWithEvent, error)
}

func (m *mockAttendeeService) RegisterForEvent(ctx context.Context, eventID, userID string, notes *string) (*domain.Registration, error) {
	return m.registerFn(ctx, eventID, userID, notes)
}

func (m *mockAttendeeService) CancelRegistration(ctx context.Context, eventID, userID string) error {
	return m.cancelFn(ctx, eventID, userID)
}

func (m *mockAttendeeService) ListMyRegistrations(ctx context.Context, userID string, status *domain.RegistrationStatus, upcoming bool) ([]*domain.RegistrationWithEvent, error) {
	return m.listFn(ctx, userID, status, upcoming)
}

// decodeEnvelope decodes the response envelope and fails the test on malformed
// JSON.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) helpers.APIResponse {
	t.Helper()
	var resp helpers.APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("malformed response body: %v", err)
	}
	return resp
}

func requireErrorCode(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int, wantCode string) {
	t.Helper()
	if rec.Code != wantStatus {
		t.Fatalf("expected status %d, got %d (body %s)", wantStatus, rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	if resp.Error == nil {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	if resp.Error.Code != wantCode {
		t.Fatalf("expected error code %q, got %q", wantCode, resp.Error.Code)
	}
	if resp.Data != nil {
		t.Fatalf("error responses must carry no data, got %v", resp.Data)
	}
}
