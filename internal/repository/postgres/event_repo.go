package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"eventregistration/internal/domain"
)

// eventColumns selects an event row with its live attendee count. Callers alias events as e.
const eventColumns = `e.id, e.title, e.date, e.description, e.capacity, e.created_at, e.updated_at,
		(SELECT COUNT(*) FROM attendees a WHERE a.event_id = e.id) AS attendee_count`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, date, description, capacity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var desc sql.NullString
	if e.Description != nil {
		desc = sql.NullString{String: *e.Description, Valid: true}
	}
	return r.DB.QueryRowContext(ctx, query, e.Title, e.Date, desc, e.Capacity, e.CreatedAt, e.UpdatedAt).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.EventWithCount, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		WHERE e.id = $1
	`
	ev, err := scanEventWithCount(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return ev, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.EventWithCount, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events e
		ORDER BY e.date ASC, e.created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.EventWithCount, 0)
	for rows.Next() {
		ev, err := scanEventWithCount(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) Update(ctx context.Context, id string, u *domain.EventUpdate) (*domain.EventWithCount, error) {
	if u == nil || u.IsEmpty() {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, id)
	}
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	if u.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", n))
		args = append(args, *u.Title)
		n++
	}
	if u.Date != nil {
		setClauses = append(setClauses, fmt.Sprintf("date = $%d", n))
		args = append(args, *u.Date)
		n++
	}
	if u.ClearDescription {
		setClauses = append(setClauses, "description = NULL")
	} else if u.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", n))
		args = append(args, *u.Description)
		n++
	}
	if u.Capacity != nil {
		setClauses = append(setClauses, fmt.Sprintf("capacity = $%d", n))
		args = append(args, *u.Capacity)
		n++
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events AS e SET %s
		WHERE e.id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)
	ev, err := scanEventWithCount(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return ev, nil
}

// Delete removes the event; attendees go with it through ON DELETE CASCADE.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanEventWithCount(row rowScanner) (*domain.EventWithCount, error) {
	e := &domain.Event{}
	var descNull sql.NullString
	var count int
	if err := row.Scan(&e.ID, &e.Title, &e.Date, &descNull, &e.Capacity, &e.CreatedAt, &e.UpdatedAt, &count); err != nil {
		return nil, err
	}
	if descNull.Valid {
		e.Description = &descNull.String
	}
	return &domain.EventWithCount{Event: e, AttendeeCount: count}, nil
}
