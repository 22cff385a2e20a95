package domain

import (
	"context"
	"time"
)

// Event is an organizer-defined occasion with a future date and an attendee capacity.
// swagger:model Event
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Description *string   `json:"description"`
	Capacity    int       `json:"capacity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewEvent returns a new Event with the given fields. ID is typically set by the repository on create.
func NewEvent(title string, date time.Time, description *string, capacity int, createdAt, updatedAt time.Time) *Event {
	return &Event{
		Title:       title,
		Date:        date,
		Description: description,
		Capacity:    capacity,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// EventWithCount bundles an event with its live attendee count.
// The count is aggregated at read time and never stored.
type EventWithCount struct {
	Event         *Event
	AttendeeCount int
}

// AvailableSpots returns capacity minus the current attendee count. It may be
// negative when concurrent registrations over-booked the event.
func (e *EventWithCount) AvailableSpots() int {
	return e.Event.Capacity - e.AttendeeCount
}

// IsFull reports whether no spots are left.
func (e *EventWithCount) IsFull() bool {
	return e.AvailableSpots() <= 0
}

// EventWithAttendees is an event with its attendees ordered newest first.
type EventWithAttendees struct {
	EventWithCount
	Attendees []*Attendee
}

// EventInput is the raw, unvalidated payload for creating an event.
type EventInput struct {
	Title       *string  `json:"title"`
	Date        *string  `json:"date"`
	Description *string  `json:"description"`
	Capacity    *float64 `json:"capacity"`
}

// EventPatch is the raw, unvalidated payload for a partial event update.
// Each field distinguishes absent, null and a concrete value.
type EventPatch struct {
	Title       Field[string]  `json:"title"`
	Date        Field[string]  `json:"date"`
	Description Field[string]  `json:"description"`
	Capacity    Field[float64] `json:"capacity"`
}

// EventUpdate is a validated partial update. Nil pointers leave the column untouched.
// ClearDescription sets the description to NULL and takes precedence over Description.
type EventUpdate struct {
	Title            *string
	Date             *time.Time
	Description      *string
	ClearDescription bool
	Capacity         *int
}

// IsEmpty reports whether the update changes nothing.
func (u *EventUpdate) IsEmpty() bool {
	return u.Title == nil && u.Date == nil && u.Description == nil && !u.ClearDescription && u.Capacity == nil
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*EventWithCount, error)
	List(ctx context.Context) ([]*EventWithCount, error)
	Update(ctx context.Context, id string, update *EventUpdate) (*EventWithCount, error)
	Delete(ctx context.Context, id string) error
}

// EventService defines event lifecycle operations.
type EventService interface {
	CreateEvent(ctx context.Context, input EventInput) (*EventWithCount, error)
	UpdateEvent(ctx context.Context, eventID string, patch EventPatch) (*EventWithCount, error)
	// DeleteEvent removes the event and, by cascade, its attendees. Returns ErrNotFound for unknown ids.
	DeleteEvent(ctx context.Context, eventID string) error
	ListEvents(ctx context.Context) ([]*EventWithCount, error)
	GetEvent(ctx context.Context, eventID string) (*EventWithAttendees, error)
}
