package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"eventregistration/internal/delivery/http/helpers"
	"eventregistration/internal/domain"
)

// EventResponse is an event with its derived registration figures.
type EventResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Date           time.Time `json:"date"`
	Description    *string   `json:"description"`
	Capacity       int       `json:"capacity"`
	AttendeeCount  int       `json:"attendee_count"`
	AvailableSpots int       `json:"available_spots"`
	IsFull         bool      `json:"is_full"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func newEventResponse(e *domain.EventWithCount) EventResponse {
	return EventResponse{
		ID:             e.Event.ID,
		Title:          e.Event.Title,
		Date:           e.Event.Date,
		Description:    e.Event.Description,
		Capacity:       e.Event.Capacity,
		AttendeeCount:  e.AttendeeCount,
		AvailableSpots: e.AvailableSpots(),
		IsFull:         e.IsFull(),
		CreatedAt:      e.Event.CreatedAt,
		UpdatedAt:      e.Event.UpdatedAt,
	}
}

// EventDetailResponse is an event together with its attendees, newest first.
type EventDetailResponse struct {
	EventResponse
	Attendees []*domain.Attendee `json:"attendees"`
}

// EventSuccessResponse is the success response envelope for a single event.
type EventSuccessResponse struct {
	Data  EventResponse     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEventsSuccessResponse is the success response envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  []EventResponse   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetEventSuccessResponse is the success response envelope for GET /events/{eventID} (200).
type GetEventSuccessResponse struct {
	Data  EventDetailResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// ListAttendeesSuccessResponse is the success response envelope for GET /events/{eventID}/attendees (200).
type ListAttendeesSuccessResponse struct {
	Data  []*domain.Attendee `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// DeletedResponse is the data payload for successful deletes.
type DeletedResponse struct {
	Deleted bool `json:"deleted"`
}

// DeletedSuccessResponse is the success response envelope for DELETE endpoints (200).
type DeletedSuccessResponse struct {
	Data  DeletedResponse   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type EventController struct {
	Logger          *slog.Logger
	Service         domain.EventService
	AttendeeService domain.AttendeeService
}

func NewEventController(logger *slog.Logger, svc domain.EventService, attendeeSvc domain.AttendeeService) *EventController {
	return &EventController{
		Logger:          logger,
		Service:         svc,
		AttendeeService: attendeeSvc,
	}
}

// ListEvents godoc
// @Summary List events
// @Description Returns every event ordered by date, each with its attendee count.
// @Tags events
// @Produce json
// @Success 200 {object} controllers.ListEventsSuccessResponse "data contains the events"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListEvents(r.Context())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, newEventResponse(e))
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, out)
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Creates an event. title, date and capacity are required; date must be in the future. id and timestamps are server-generated.
// @Tags events
// @Accept json
// @Produce json
// @Param event body domain.EventInput true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_failed"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req domain.EventInput
	if !helpers.DecodeJSON(w, r, &req) {
		return
	}
	event, err := c.Service.CreateEvent(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, newEventResponse(event))
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns the event with its attendee count and attendees, newest registration first.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.GetEventSuccessResponse "data contains the event and attendees"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventDetailResponse{
		EventResponse: newEventResponse(&event.EventWithCount),
		Attendees:     event.Attendees,
	})
}

// UpdateEvent godoc
// @Summary Update event details
// @Description Partially updates an event. Omitted fields are unchanged; description may be set to null or "" to clear it. title, date and capacity cannot be cleared.
// @Tags events
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param body body domain.EventInput true "Fields to update (all optional)"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_failed"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	var req domain.EventPatch
	if !helpers.DecodeJSON(w, r, &req) {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, req)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newEventResponse(event))
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes an event and all of its registrations.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.DeletedSuccessResponse "data.deleted is true"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeletedResponse{Deleted: true})
}

// ListEventAttendees godoc
// @Summary List attendees of an event
// @Description Returns the attendees registered for the event, newest registration first.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ListAttendeesSuccessResponse "data contains the attendees"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendees [get]
func (c *EventController) ListEventAttendees(w http.ResponseWriter, r *http.Request) {
	eventID, ok := helpers.PathID(w, r, "eventID")
	if !ok {
		return
	}
	attendees, err := c.AttendeeService.ListAttendees(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, attendees)
}
