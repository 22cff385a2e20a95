package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"eventregistration/internal/domain"
)

// fakeStore is an in-memory stand-in for the events and attendees tables,
// including the unique (event_id, email) constraint and the cascade on delete.
type fakeStore struct {
	mu        sync.Mutex
	events    map[string]*domain.Event
	attendees map[string]*domain.Attendee
	nextID    int
	err       error // if set, every call returns this error

	strictCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:    make(map[string]*domain.Event),
		attendees: make(map[string]*domain.Attendee),
		nextID:    1,
	}
}

func (f *fakeStore) newID() string {
	id := fmt.Sprintf("00000000-0000-4000-8000-%012d", f.nextID)
	f.nextID++
	return id
}

func (f *fakeStore) countLocked(eventID string) int {
	n := 0
	for _, a := range f.attendees {
		if a.EventID == eventID {
			n++
		}
	}
	return n
}

func (f *fakeStore) withCountLocked(e *domain.Event) *domain.EventWithCount {
	cp := *e
	return &domain.EventWithCount{Event: &cp, AttendeeCount: f.countLocked(e.ID)}
}

type fakeEventRepo struct{ *fakeStore }

func (f fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	e.ID = f.newID()
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.EventWithCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return f.withCountLocked(e), nil
}

func (f fakeEventRepo) List(ctx context.Context) ([]*domain.EventWithCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.EventWithCount, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, f.withCountLocked(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Event.Date.Before(out[j].Event.Date) })
	return out, nil
}

func (f fakeEventRepo) Update(ctx context.Context, id string, u *domain.EventUpdate) (*domain.EventWithCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Date != nil {
		e.Date = *u.Date
	}
	if u.ClearDescription {
		e.Description = nil
	} else if u.Description != nil {
		desc := *u.Description
		e.Description = &desc
	}
	if u.Capacity != nil {
		e.Capacity = *u.Capacity
	}
	return f.withCountLocked(e), nil
}

func (f fakeEventRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.events[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.events, id)
	for aid, a := range f.attendees {
		if a.EventID == id {
			delete(f.attendees, aid)
		}
	}
	return nil
}

type fakeAttendeeRepo struct{ *fakeStore }

func (f fakeAttendeeRepo) insertLocked(a *domain.Attendee) error {
	if _, ok := f.events[a.EventID]; !ok {
		return domain.ErrNotFound
	}
	for _, existing := range f.attendees {
		if existing.EventID == a.EventID && existing.Email == a.Email {
			return domain.ErrDuplicateRegistration
		}
	}
	a.ID = f.newID()
	cp := *a
	f.attendees[a.ID] = &cp
	return nil
}

func (f fakeAttendeeRepo) Create(ctx context.Context, a *domain.Attendee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	return f.insertLocked(a)
}

func (f fakeAttendeeRepo) CreateWithinCapacity(ctx context.Context, a *domain.Attendee) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.strictCalls++
	if f.err != nil {
		return 0, f.err
	}
	e, ok := f.events[a.EventID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	for _, existing := range f.attendees {
		if existing.EventID == a.EventID && existing.Email == a.Email {
			return 0, domain.ErrDuplicateRegistration
		}
	}
	if f.countLocked(a.EventID) >= e.Capacity {
		return 0, domain.ErrCapacityExceeded
	}
	if err := f.insertLocked(a); err != nil {
		return 0, err
	}
	return f.countLocked(a.EventID), nil
}

func (f fakeAttendeeRepo) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Attendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range f.attendees {
		if a.EventID == eventID && a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f fakeAttendeeRepo) CountByEventID(ctx context.Context, eventID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return f.countLocked(eventID), nil
}

func (f fakeAttendeeRepo) ListByEventID(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Attendee
	for _, a := range f.attendees {
		if a.EventID == eventID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f fakeAttendeeRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.attendees[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.attendees, id)
	return nil
}

// fakeEmailService records confirmation emails.
type fakeEmailService struct {
	mu   sync.Mutex
	sent []*domain.RegistrationConfirmationEmailData
	err  error
}

func (f *fakeEmailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationConfirmationEmailData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, data)
	return nil
}

// tickingClock advances one second per call so created_at ordering is deterministic.
type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTickingClock() *tickingClock {
	return &tickingClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// testServices wires both services over one fake store.
type testServices struct {
	store    *fakeStore
	email    *fakeEmailService
	events   domain.EventService
	attendee domain.AttendeeService
}

func newTestServices(strict bool) *testServices {
	store := newFakeStore()
	clock := newTickingClock()
	email := &fakeEmailService{}

	ev := NewEventService(fakeEventRepo{store}, fakeAttendeeRepo{store}, 5*time.Second).(*eventService)
	ev.now = clock.Now
	at := NewAttendeeService(fakeEventRepo{store}, fakeAttendeeRepo{store}, email, discardLogger(), 5*time.Second, strict).(*attendeeService)
	at.now = clock.Now

	return &testServices{store: store, email: email, events: ev, attendee: at}
}
