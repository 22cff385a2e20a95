package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventregistration/internal/domain"
)

type attendeeRepository struct {
	DB *sql.DB
}

func NewAttendeeRepository(db *sql.DB) domain.AttendeeRepository {
	return &attendeeRepository{
		DB: db,
	}
}

const insertAttendeeQuery = `
		INSERT INTO attendees (event_id, name, email, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

func (r *attendeeRepository) Create(ctx context.Context, a *domain.Attendee) error {
	err := r.DB.QueryRowContext(ctx, insertAttendeeQuery, a.EventID, a.Name, a.Email, a.CreatedAt).Scan(&a.ID)
	return mapInsertError(err)
}

// CreateWithinCapacity serializes registrations per event by locking the event
// row with SELECT ... FOR UPDATE before counting attendees.
func (r *attendeeRepository) CreateWithinCapacity(ctx context.Context, a *domain.Attendee) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	// No-op once committed.
	defer func() { _ = tx.Rollback() }()

	var capacity int
	err = tx.QueryRowContext(ctx, `SELECT capacity FROM events WHERE id = $1 FOR UPDATE`, a.EventID).Scan(&capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("lock event row: %w", err)
	}

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM attendees WHERE event_id = $1 AND email = $2)`,
		a.EventID, a.Email,
	).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("check duplicate: %w", err)
	}
	if exists {
		return 0, domain.ErrDuplicateRegistration
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendees WHERE event_id = $1`, a.EventID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count attendees: %w", err)
	}
	if count >= capacity {
		return 0, domain.ErrCapacityExceeded
	}

	if err := tx.QueryRowContext(ctx, insertAttendeeQuery, a.EventID, a.Name, a.Email, a.CreatedAt).Scan(&a.ID); err != nil {
		return 0, mapInsertError(err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return count + 1, nil
}

func (r *attendeeRepository) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Attendee, error) {
	query := `
		SELECT id, event_id, name, email, created_at
		FROM attendees
		WHERE event_id = $1 AND email = $2
	`
	a := &domain.Attendee{}
	err := r.DB.QueryRowContext(ctx, query, eventID, email).
		Scan(&a.ID, &a.EventID, &a.Name, &a.Email, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (r *attendeeRepository) CountByEventID(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendees WHERE event_id = $1`, eventID).Scan(&count)
	return count, err
}

func (r *attendeeRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	query := `
		SELECT id, event_id, name, email, created_at
		FROM attendees
		WHERE event_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attendees []*domain.Attendee
	for rows.Next() {
		a := &domain.Attendee{}
		if err := rows.Scan(&a.ID, &a.EventID, &a.Name, &a.Email, &a.CreatedAt); err != nil {
			return nil, err
		}
		attendees = append(attendees, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if attendees == nil {
		attendees = []*domain.Attendee{}
	}
	return attendees, nil
}

func (r *attendeeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM attendees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// mapInsertError turns constraint violations on attendees into domain errors.
// A foreign key violation means the event was deleted between lookup and insert.
func mapInsertError(err error) error {
	switch {
	case err == nil:
		return nil
	case hasCode(err, uniqueViolation):
		return domain.ErrDuplicateRegistration
	case hasCode(err, foreignKeyViolation):
		return domain.ErrNotFound
	default:
		return err
	}
}
