package domain

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Field limits for events and attendees.
const (
	MinTitleLen       = 3
	MaxTitleLen       = 100
	MaxDescriptionLen = 500
	MinCapacity       = 1
	MaxCapacity       = 10000
	MinNameLen        = 2
	MaxNameLen        = 100
	MaxEmailLen       = 254
)

// emailRegex matches a simple email format (local@domain with at least one dot in domain).
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// dateLayouts are tried in order. Layouts without a zone are read as UTC.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// FieldError represents a single field's validation error.
// swagger:model FieldError
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Message) }

// ValidationError lists every violated field rule of one input.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrValidation) match any *ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type fieldErrors []FieldError

func (fe *fieldErrors) add(field, msg string) {
	*fe = append(*fe, FieldError{Field: field, Message: msg})
}

func (fe fieldErrors) err() error {
	if len(fe) == 0 {
		return nil
	}
	return &ValidationError{Fields: fe}
}

// ValidateCreateEvent checks a creation payload against now and returns the event to persist.
// ID and timestamps are left for the caller.
func ValidateCreateEvent(in EventInput, now time.Time) (*Event, error) {
	var errs fieldErrors
	ev := &Event{}

	if in.Title == nil {
		errs.add("title", "title is required")
	} else if checkTitle(&errs, *in.Title) {
		ev.Title = *in.Title
	}

	if in.Date == nil {
		errs.add("date", "date is required")
	} else if d, ok := parseFutureDate(&errs, *in.Date, now); ok {
		ev.Date = d
	}

	if in.Description != nil && *in.Description != "" {
		if checkDescription(&errs, *in.Description) {
			desc := *in.Description
			ev.Description = &desc
		}
	}

	if in.Capacity == nil {
		errs.add("capacity", "capacity is required")
	} else if c, ok := parseCapacity(&errs, *in.Capacity); ok {
		ev.Capacity = c
	}

	if err := errs.err(); err != nil {
		return nil, err
	}
	return ev, nil
}

// ValidateUpdateEvent checks a partial update. Absent fields are skipped; a
// null or empty description clears it; title, date and capacity cannot be cleared.
func ValidateUpdateEvent(in EventPatch, now time.Time) (*EventUpdate, error) {
	var errs fieldErrors
	upd := &EventUpdate{}

	if in.Title.Set {
		if in.Title.Null {
			errs.add("title", "title cannot be cleared")
		} else if checkTitle(&errs, in.Title.Value) {
			title := in.Title.Value
			upd.Title = &title
		}
	}

	if in.Date.Set {
		if in.Date.Null {
			errs.add("date", "date cannot be cleared")
		} else if d, ok := parseFutureDate(&errs, in.Date.Value, now); ok {
			upd.Date = &d
		}
	}

	if in.Description.Set {
		switch {
		case in.Description.Null, in.Description.Value == "":
			upd.ClearDescription = true
		case checkDescription(&errs, in.Description.Value):
			desc := in.Description.Value
			upd.Description = &desc
		}
	}

	if in.Capacity.Set {
		if in.Capacity.Null {
			errs.add("capacity", "capacity cannot be cleared")
		} else if c, ok := parseCapacity(&errs, in.Capacity.Value); ok {
			upd.Capacity = &c
		}
	}

	if err := errs.err(); err != nil {
		return nil, err
	}
	return upd, nil
}

// ValidateAttendee checks a registration payload and returns the attendee to persist
// with a lower-cased email and a canonical event ID. Event existence is not checked here.
func ValidateAttendee(in AttendeeInput) (*Attendee, error) {
	var errs fieldErrors
	a := &Attendee{}

	switch n := utf8.RuneCountInString(in.Name); {
	case n < MinNameLen:
		errs.add("name", fmt.Sprintf("name must be at least %d characters", MinNameLen))
	case n > MaxNameLen:
		errs.add("name", fmt.Sprintf("name must be at most %d characters", MaxNameLen))
	default:
		a.Name = in.Name
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	switch {
	case email == "":
		errs.add("email", "email is required")
	case len(email) > MaxEmailLen || !emailRegex.MatchString(email):
		errs.add("email", "invalid email address")
	default:
		a.Email = email
	}

	if id, ok := ParseID(in.EventID); ok {
		a.EventID = id
	} else {
		errs.add("event_id", "invalid event ID")
	}

	if err := errs.err(); err != nil {
		return nil, err
	}
	return a, nil
}

// ParseID reports whether s is a UUID and returns its canonical form.
func ParseID(s string) (string, bool) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func checkTitle(errs *fieldErrors, title string) bool {
	switch n := utf8.RuneCountInString(title); {
	case n < MinTitleLen:
		errs.add("title", fmt.Sprintf("title must be at least %d characters", MinTitleLen))
	case n > MaxTitleLen:
		errs.add("title", fmt.Sprintf("title must be at most %d characters", MaxTitleLen))
	default:
		return true
	}
	return false
}

func checkDescription(errs *fieldErrors, desc string) bool {
	if utf8.RuneCountInString(desc) > MaxDescriptionLen {
		errs.add("description", fmt.Sprintf("description must be at most %d characters", MaxDescriptionLen))
		return false
	}
	return true
}

// parseFutureDate parses raw and requires it to be strictly after now.
// The result is UTC, truncated to the microsecond precision Postgres stores.
func parseFutureDate(errs *fieldErrors, raw string, now time.Time) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	var (
		t      time.Time
		parsed bool
	)
	for _, layout := range dateLayouts {
		if v, err := time.Parse(layout, raw); err == nil {
			t, parsed = v, true
			break
		}
	}
	if !parsed {
		errs.add("date", "invalid date format")
		return time.Time{}, false
	}
	t = t.UTC().Truncate(time.Microsecond)
	if !t.After(now) {
		errs.add("date", "event date must be in the future")
		return time.Time{}, false
	}
	return t, true
}

func parseCapacity(errs *fieldErrors, v float64) (int, bool) {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v):
		errs.add("capacity", "capacity must be a whole number")
	case v < MinCapacity:
		errs.add("capacity", fmt.Sprintf("capacity must be at least %d", MinCapacity))
	case v > MaxCapacity:
		errs.add("capacity", fmt.Sprintf("capacity cannot exceed %d", MaxCapacity))
	default:
		return int(v), true
	}
	return 0, false
}
