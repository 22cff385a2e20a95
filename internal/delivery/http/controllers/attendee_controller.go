package controllers

import (
	"log/slog"
	"net/http"

	"eventregistration/internal/delivery/http/helpers"
	"eventregistration/internal/domain"
)

type AttendeeController struct {
	Logger  *slog.Logger
	Service domain.AttendeeService
}

func NewAttendeeController(logger *slog.Logger, svc domain.AttendeeService) *AttendeeController {
	return &AttendeeController{
		Logger:  logger,
		Service: svc,
	}
}

// RegistrationSuccessResponse is the success response envelope for POST /attendees (201).
type RegistrationSuccessResponse struct {
	Data  *domain.Registration `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// Register godoc
// @Summary Register an attendee for an event
// @Description Registers name and email for the event. Emails are matched case-insensitively; one registration per email per event. Fails with 409 when the event is full or the email is already registered.
// @Tags attendees
// @Accept json
// @Produce json
// @Param body body domain.AttendeeInput true "Attendee data"
// @Success 201 {object} controllers.RegistrationSuccessResponse "data contains the attendee and the new attendee count"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_failed"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: capacity_exceeded or already_registered"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /attendees [post]
func (c *AttendeeController) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.AttendeeInput
	if !helpers.DecodeJSON(w, r, &req) {
		return
	}
	reg, err := c.Service.Register(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// Unregister godoc
// @Summary Cancel a registration
// @Description Removes the attendee, freeing one spot on the event.
// @Tags attendees
// @Produce json
// @Param attendeeID path string true "Attendee ID (UUID)"
// @Success 200 {object} controllers.DeletedSuccessResponse "data.deleted is true"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /attendees/{attendeeID} [delete]
func (c *AttendeeController) Unregister(w http.ResponseWriter, r *http.Request) {
	attendeeID, ok := helpers.PathID(w, r, "attendeeID")
	if !ok {
		return
	}
	if err := c.Service.Unregister(r.Context(), attendeeID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeletedResponse{Deleted: true})
}
