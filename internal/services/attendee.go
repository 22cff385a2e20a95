package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"eventregistration/internal/domain"
)

type attendeeService struct {
	eventRepo      domain.EventRepository
	attendeeRepo   domain.AttendeeRepository
	emailService   domain.EmailService
	logger         *slog.Logger
	contextTimeout time.Duration
	strictCapacity bool
	now            func() time.Time
}

// NewAttendeeService creates an AttendeeService with the given repositories.
// With strictCapacity the capacity check and the insert run in one locked
// transaction; otherwise they are separate statements and concurrent
// registrations for the last spot can both succeed.
// emailService may be nil to skip confirmation emails.
func NewAttendeeService(
	eventRepo domain.EventRepository,
	attendeeRepo domain.AttendeeRepository,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
	strictCapacity bool,
) domain.AttendeeService {
	return &attendeeService{
		eventRepo:      eventRepo,
		attendeeRepo:   attendeeRepo,
		emailService:   emailService,
		logger:         logger,
		contextTimeout: timeout,
		strictCapacity: strictCapacity,
		now:            time.Now,
	}
}

// Register admits an attendee. Checks run in this order: event exists,
// not already registered, capacity left. The unique (event_id, email)
// constraint backs the duplicate check when two requests race.
func (s *attendeeService) Register(ctx context.Context, input domain.AttendeeInput) (*domain.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	attendee, err := domain.ValidateAttendee(input)
	if err != nil {
		return nil, err
	}
	attendee.CreatedAt = s.now()

	event, err := s.eventRepo.GetByID(ctx, attendee.EventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	var count int
	if s.strictCapacity {
		count, err = s.attendeeRepo.CreateWithinCapacity(ctx, attendee)
		if err != nil {
			return nil, registrationError("create attendee", err)
		}
	} else {
		count, err = s.checkThenInsert(ctx, event, attendee)
		if err != nil {
			return nil, err
		}
	}
	event.AttendeeCount = count

	s.sendConfirmation(ctx, attendee, event)
	return &domain.Registration{Attendee: attendee, AttendeeCount: count}, nil
}

// checkThenInsert runs the duplicate and capacity checks as separate reads
// before the insert. There is no lock between the count and the insert.
func (s *attendeeService) checkThenInsert(ctx context.Context, event *domain.EventWithCount, attendee *domain.Attendee) (int, error) {
	if _, err := s.attendeeRepo.GetByEventAndEmail(ctx, attendee.EventID, attendee.Email); err == nil {
		return 0, domain.ErrDuplicateRegistration
	} else if !errors.Is(err, domain.ErrNotFound) {
		return 0, fmt.Errorf("get attendee: %w", err)
	}

	if event.AttendeeCount >= event.Event.Capacity {
		return 0, domain.ErrCapacityExceeded
	}

	if err := s.attendeeRepo.Create(ctx, attendee); err != nil {
		return 0, registrationError("create attendee", err)
	}

	count, err := s.attendeeRepo.CountByEventID(ctx, attendee.EventID)
	if err != nil {
		// The attendee is committed; report the count we can infer.
		s.logger.WarnContext(ctx, "recount attendees failed", "event_id", attendee.EventID, "err", err)
		return event.AttendeeCount + 1, nil
	}
	return count, nil
}

func (s *attendeeService) sendConfirmation(ctx context.Context, attendee *domain.Attendee, event *domain.EventWithCount) {
	if s.emailService == nil {
		return
	}
	data := &domain.RegistrationConfirmationEmailData{
		Email:          attendee.Email,
		Name:           attendee.Name,
		EventTitle:     event.Event.Title,
		EventDate:      event.Event.Date,
		AvailableSpots: max(event.AvailableSpots(), 0),
	}
	if err := s.emailService.SendRegistrationConfirmation(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "registration confirmation failed",
			"attendee_id", attendee.ID, "event_id", attendee.EventID, "err", err)
	}
}

func (s *attendeeService) Unregister(ctx context.Context, attendeeID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	attendeeID, err := parseID(attendeeID, "attendee")
	if err != nil {
		return err
	}
	if err := s.attendeeRepo.Delete(ctx, attendeeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete attendee: %w", err)
	}
	return nil
}

func (s *attendeeService) ListAttendees(ctx context.Context, eventID string) ([]*domain.Attendee, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	eventID, err := parseID(eventID, "event")
	if err != nil {
		return nil, err
	}
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	attendees, err := s.attendeeRepo.ListByEventID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	if attendees == nil {
		attendees = []*domain.Attendee{}
	}
	return attendees, nil
}

// registrationError passes domain rejections through and wraps storage faults.
func registrationError(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrDuplicateRegistration),
		errors.Is(err, domain.ErrCapacityExceeded),
		errors.Is(err, domain.ErrInvalidInput):
		return err
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
