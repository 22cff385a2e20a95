package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"eventregistration/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createEvent(t *testing.T, svc *testServices, capacity float64) string {
	t.Helper()
	ev, err := svc.events.CreateEvent(context.Background(), meetupInput(capacity))
	require.NoError(t, err)
	return ev.Event.ID
}

func TestAttendeeService_Register(t *testing.T) {
	for _, strict := range []bool{false, true} {
		name := "check then insert"
		if strict {
			name = "strict"
		}
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc := newTestServices(strict)
			eventID := createEvent(t, svc, 1)

			// capacity=1: Alice gets in, Bob hits capacity, Alice again is a duplicate.
			reg, err := svc.attendee.Register(ctx, domain.AttendeeInput{Name: "Alice", Email: "A@X.com", EventID: eventID})
			require.NoError(t, err)
			assert.NotEmpty(t, reg.Attendee.ID)
			assert.Equal(t, "a@x.com", reg.Attendee.Email)
			assert.Equal(t, 1, reg.AttendeeCount)

			_, err = svc.attendee.Register(ctx, domain.AttendeeInput{Name: "Bob", Email: "b@x.com", EventID: eventID})
			require.ErrorIs(t, err, domain.ErrCapacityExceeded)

			_, err = svc.attendee.Register(ctx, domain.AttendeeInput{Name: "Alice", Email: "a@x.com", EventID: eventID})
			require.ErrorIs(t, err, domain.ErrDuplicateRegistration)

			got, err := svc.events.GetEvent(ctx, eventID)
			require.NoError(t, err)
			assert.Equal(t, 1, got.AttendeeCount)
			require.Len(t, got.Attendees, 1)
			assert.Equal(t, "Alice", got.Attendees[0].Name)

			if strict {
				assert.Equal(t, 3, svc.store.strictCalls)
			} else {
				assert.Zero(t, svc.store.strictCalls)
			}
		})
	}
}

func TestAttendeeService_Register_DuplicateCountsOnce(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(false)
	eventID := createEvent(t, svc, 10)

	_, err := svc.attendee.Register(ctx, domain.AttendeeInput{Name: "Alice", Email: "a@x.com", EventID: eventID})
	require.NoError(t, err)
	_, err = svc.attendee.Register(ctx, domain.AttendeeInput{Name: "Alice Again", Email: "a@x.com", EventID: eventID})
	require.ErrorIs(t, err, domain.ErrDuplicateRegistration)

	got, err := svc.events.GetEvent(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AttendeeCount)
}

func TestAttendeeService_Register_SameEmailDifferentEvents(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(false)
	first := createEvent(t, svc, 10)
	second := createEvent(t, svc, 10)

	_, err := svc.attendee.Register(ctx, domain.AttendeeInput{Name: "Alice", Email: "a@x.com", EventID: first})
	require.NoError(t, err)
	_, err = svc.attendee.Register(ctx, domain.AttendeeInput{Name: "Alice", Email: "a@x.com", EventID: second})
	require.NoError(t, err)
}

func TestAttendeeService_Register_FullEventCreatesNothing(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(false)
	eventID := createEvent(t, svc, 2)

	for _, email := range []string{"a@x.com", "b@x.com"} {
		_, err := svc.attendee.Register(ctx, domain.AttendeeInput{Name: "Guest", Email: email, EventID: eventID})
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, err := svc.attendee.Register(ctx, domain.AttendeeInput{Name: "Late", Email: "late@x.com", EventID: eventID})
		require.ErrorIs(t, err, domain.ErrCapacityExceeded)
	}
	assert.Len(t, svc.store.attendees, 2)
}

func TestAttendeeService_Register_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("validation", func(t *testing.T) {
		svc := newTestServices(false)
		_, err := svc.attendee.Register(ctx, domain.AttendeeInput{Name: "A", Email: "nope", EventID: "bad"})
		require.ErrorIs(t, err, domain.ErrValidation)
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Len(t, verr.Fields, 3)
	})

	t.Run("unknown event", func(t *testing.T) {
		svc := newTestServices(false)
		_, err := svc.attendee.Register(ctx, domain.AttendeeInput{
			Name: "Alice", Email: "a@x.com", EventID: "00000000-0000-4000-8000-999999999999",
		})
		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, svc.email.sent)
	})

	t.Run("storage failure is wrapped", func(t *testing.T) {
		svc := newTestServices(false)
		eventID := createEvent(t, svc, 5)
		svc.store.err = errors.New("connection reset")
		_, err := svc.attendee.Register(ctx, domain.AttendeeInput{Name: "Alice", Email: "a@x.com", EventID: eventID})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "get event")
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestAttendeeService_Register_SendsConfirmation(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(false)
	eventID := createEvent(t, svc, 3)

	_, err := svc.attendee.Register(ctx, domain.AttendeeInput{Name: "Alice", Email: "a@x.com", EventID: eventID})
	require.NoError(t, err)

	require.Len(t, svc.email.sent, 1)
	sent := svc.email.sent[0]
	assert.Equal(t, "a@x.com", sent.Email)
	assert.Equal(t, "Alice", sent.Name)
	assert.Equal(t, "Go Meetup", sent.EventTitle)
	assert.Equal(t, 2, sent.AvailableSpots)
}

func TestAttendeeService_Register_EmailFailureDoesNotFail(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(false)
	eventID := createEvent(t, svc, 3)
	svc.email.err = errors.New("ses unavailable")

	reg, err := svc.attendee.Register(ctx, domain.AttendeeInput{Name: "Alice", Email: "a@x.com", EventID: eventID})
	require.NoError(t, err)
	assert.Equal(t, 1, reg.AttendeeCount)
}

func TestAttendeeService_Register_StrictConcurrent(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(true)
	eventID := createEvent(t, svc, 5)

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			email := "guest" + string(rune('a'+i)) + "@x.com"
			if _, err := svc.attendee.Register(ctx, domain.AttendeeInput{Name: "Guest", Email: email, EventID: eventID}); err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 5, admitted)
}

func TestAttendeeService_Unregister(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(false)
	eventID := createEvent(t, svc, 5)

	alice, err := svc.attendee.Register(ctx, domain.AttendeeInput{Name: "Alice", Email: "a@x.com", EventID: eventID})
	require.NoError(t, err)
	_, err = svc.attendee.Register(ctx, domain.AttendeeInput{Name: "Bob", Email: "b@x.com", EventID: eventID})
	require.NoError(t, err)

	require.NoError(t, svc.attendee.Unregister(ctx, alice.Attendee.ID))

	got, err := svc.events.GetEvent(ctx, eventID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AttendeeCount)
	require.Len(t, got.Attendees, 1)
	assert.Equal(t, "Bob", got.Attendees[0].Name)

	err = svc.attendee.Unregister(ctx, alice.Attendee.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAttendeeService_ListAttendees(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(false)
	eventID := createEvent(t, svc, 5)

	for _, in := range []domain.AttendeeInput{
		{Name: "Alice", Email: "a@x.com", EventID: eventID},
		{Name: "Bob", Email: "b@x.com", EventID: eventID},
	} {
		_, err := svc.attendee.Register(ctx, in)
		require.NoError(t, err)
	}

	attendees, err := svc.attendee.ListAttendees(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, attendees, 2)
	assert.Equal(t, "Bob", attendees[0].Name, "newest first")

	_, err = svc.attendee.ListAttendees(ctx, "00000000-0000-4000-8000-999999999999")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegistrationError(t *testing.T) {
	for _, sentinel := range []error{domain.ErrNotFound, domain.ErrDuplicateRegistration, domain.ErrCapacityExceeded, domain.ErrInvalidInput} {
		assert.Same(t, sentinel, registrationError("create attendee", sentinel))
	}
	err := registrationError("create attendee", errors.New("disk full"))
	assert.EqualError(t, err, "create attendee: disk full")
}
