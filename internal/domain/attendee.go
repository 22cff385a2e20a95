package domain

import (
	"context"
	"time"
)

// Attendee is a person registered for exactly one event, unique per event by email.
// swagger:model Attendee
type Attendee struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// NewAttendee creates a new Attendee. ID is typically set by the repository on create.
func NewAttendee(eventID, name, email string, createdAt time.Time) *Attendee {
	return &Attendee{
		EventID:   eventID,
		Name:      name,
		Email:     email,
		CreatedAt: createdAt,
	}
}

// AttendeeInput is the raw, unvalidated registration payload.
type AttendeeInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	EventID string `json:"event_id"`
}

// Registration is the result of a successful registration: the new attendee
// and the event's attendee count after the insert.
type Registration struct {
	Attendee      *Attendee `json:"attendee"`
	AttendeeCount int       `json:"attendee_count"`
}

// AttendeeRepository defines storage operations for attendees.
type AttendeeRepository interface {
	// Create inserts the attendee. Returns ErrDuplicateRegistration when (event_id, email) already exists.
	Create(ctx context.Context, attendee *Attendee) error
	// CreateWithinCapacity locks the event row, re-checks duplicates and capacity, and inserts
	// in one transaction. Returns the attendee count after the insert.
	CreateWithinCapacity(ctx context.Context, attendee *Attendee) (int, error)
	GetByEventAndEmail(ctx context.Context, eventID, email string) (*Attendee, error)
	CountByEventID(ctx context.Context, eventID string) (int, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Attendee, error)
	Delete(ctx context.Context, id string) error
}

// AttendeeService defines registration operations.
type AttendeeService interface {
	Register(ctx context.Context, input AttendeeInput) (*Registration, error)
	Unregister(ctx context.Context, attendeeID string) error
	ListAttendees(ctx context.Context, eventID string) ([]*Attendee, error)
}
