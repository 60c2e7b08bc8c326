package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"alumniconnect/internal/delivery/http/helpers"
	"alumniconnect/internal/delivery/http/middleware"
	"alumniconnect/internal/domain"
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

// RegisterRequest is the optional request body for POST /events/{eventID}/registrations.
type RegisterRequest struct {
	Notes *string `json:"notes"`
}

// RegistrationSuccessResponse is the success response envelope for POST /events/{eventID}/registrations (201).
type RegistrationSuccessResponse struct {
	Data  *domain.Registration `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// RegisterForEvent godoc
// @Summary Register for an event
// @Description Registers the authenticated user for the event. Fails when the event is not published, already started, full, or the user already holds a non-cancelled registration. A user who cancelled may register again; that creates a new registration.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.RegisterRequest false "Optional notes"
// @Success 201 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict, capacity_exceeded or invalid_state"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [post]
func (c *AttendeeController) RegisterForEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var notes *string
	if r.Body != nil && r.ContentLength != 0 {
		var req RegisterRequest
		if !helpers.DecodeAndValidate(w, r, &req) {
			return
		}
		notes = req.Notes
	}

	reg, err := c.Service.RegisterForEvent(r.Context(), eventID, principal.ID, notes)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// MessageData is the data payload for operations that only report an outcome.
type MessageData struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CancelRegistrationSuccessResponse is the success response envelope for DELETE /events/{eventID}/registrations (200).
type CancelRegistrationSuccessResponse struct {
	Data  *MessageData      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CancelRegistration godoc
// @Summary Cancel a registration
// @Description Cancels the authenticated user's registration for the event and frees the seat. Registrations already marked ATTENDED cannot be cancelled.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.CancelRegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_state"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/registrations [delete]
func (c *AttendeeController) CancelRegistration(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	if err := c.Service.CancelRegistration(r.Context(), eventID, principal.ID); err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, &MessageData{
		Success: true,
		Message: "Registration cancelled successfully",
	})
}

// MyRegistrationsSuccessResponse is the success response envelope for GET /me/registrations (200).
type MyRegistrationsSuccessResponse struct {
	Data  []*domain.RegistrationWithEvent `json:"data"`
	Error *helpers.APIError               `json:"error"`
}

// ListMyRegistrations godoc
// @Summary List the caller's registrations
// @Description Returns the authenticated user's registrations newest first, each with its event, optionally filtered by status and restricted to upcoming events.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param status query string false "Registration status"
// @Param upcoming query boolean false "Only events that have not started yet"
// @Success 200 {object} controllers.MyRegistrationsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /me/registrations [get]
func (c *AttendeeController) ListMyRegistrations(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var status *domain.RegistrationStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.RegistrationStatus(s)
		if !st.IsValid() {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unknown registration status")
			return
		}
		status = &st
	}
	upcoming := false
	if s := r.URL.Query().Get("upcoming"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "upcoming must be a boolean")
			return
		}
		upcoming = v
	}

	regs, err := c.Service.ListMyRegistrations(r.Context(), principal.ID, status, upcoming)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}

// writeError maps registration domain errors to stable API error codes.
func (c *AttendeeController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyRegistered):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, err.Error())
	case errors.Is(err, domain.ErrEventFull):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeCapacityExceeded, err.Error())
	case errors.Is(err, domain.ErrEventNotPublished),
		errors.Is(err, domain.ErrRegistrationClosed),
		errors.Is(err, domain.ErrAlreadyAttended):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeInvalidState, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
