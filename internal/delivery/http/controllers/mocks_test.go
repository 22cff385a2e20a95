package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"eventregistration/internal/delivery/http/helpers"
	"eventregistration/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	testEventID    = "6f1c2a7e-3b9d-4c55-9e0a-1d2b3c4d5e6f"
	testAttendeeID = "0b7e4f2a-8c1d-4e3f-a5b6-c7d8e9f0a1b2"
)

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	err error

	events  []*domain.EventWithCount
	event   *domain.EventWithCount
	details *domain.EventWithAttendees

	lastInput   domain.EventInput
	lastPatch   domain.EventPatch
	lastEventID string
}

func (f *fakeEventService) CreateEvent(ctx context.Context, input domain.EventInput) (*domain.EventWithCount, error) {
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) UpdateEvent(ctx context.Context, eventID string, patch domain.EventPatch) (*domain.EventWithCount, error) {
	f.lastEventID = eventID
	f.lastPatch = patch
	if f.err != nil {
		return nil, f.err
	}
	return f.event, nil
}

func (f *fakeEventService) DeleteEvent(ctx context.Context, eventID string) error {
	f.lastEventID = eventID
	return f.err
}

func (f *fakeEventService) ListEvents(ctx context.Context) ([]*domain.EventWithCount, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

func (f *fakeEventService) GetEvent(ctx context.Context, eventID string) (*domain.EventWithAttendees, error) {
	f.lastEventID = eventID
	if f.err != nil {
		return nil, f.err
	}
	return f.details, nil
}

// fakeAttendeeService implements domain.AttendeeService for handler tests.
type fakeAttendeeService struct {
	err error

	registration *domain.Registration
	attendees    []*domain.Attendee

	lastInput   domain.AttendeeInput
	lastID      string
	lastEventID string
}

func (f *fakeAttendeeService) Register(ctx context.Context, input domain.AttendeeInput) (*domain.Registration, error) {
	f.lastInput = input
	if f.err != nil {
		return nil, f.err
	}
	return f.registration, nil
}

func (f *fakeAttendeeService) Unregister(ctx context.Context, attendeeID string) error {
	f.lastID = attendeeID
	return f.err
}

func (f *fakeAttendeeService) ListAttendees(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	f.lastEventID = eventID
	if f.err != nil {
		return nil, f.err
	}
	return f.attendees, nil
}

// decodeEnvelope decodes the response envelope and, when dest is non-nil, its data.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
	if dest != nil {
		require.Nil(t, envelope.Error, "success response must have error nil")
		dataBytes, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(dataBytes, dest))
	}
	return envelope
}
