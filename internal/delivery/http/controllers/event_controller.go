package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"alumniconnect/internal/delivery/http/helpers"
	"alumniconnect/internal/delivery/http/middleware"
	"alumniconnect/internal/domain"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// EventListData is the data payload for GET /events.
type EventListData struct {
	Events     []*domain.EventView `json:"events"`
	Pagination domain.Pagination   `json:"pagination"`
}

// ListEventsSuccessResponse is the success response envelope for GET /events (200).
type EventListSuccessResponse struct {
	Data  *EventListData    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEvents godoc
// @Summary List events
// @Description Lists events matching the filter. Defaults to PUBLISHED events ordered by start date ascending, 20 per page. When called with a valid Bearer token, each event carries the caller's registration status.
// @Tags events
// @Produce json
// @Param status query string false "Event status (default PUBLISHED)"
// @Param search query string false "Case-insensitive substring match on title, description or location"
// @Param type query string false "Event type"
// @Param is_online query boolean false "Online events only (or on-site only when false)"
// @Param organizer_id query string false "Organizer ID"
// @Param upcoming query boolean false "Only events that have not started yet"
// @Param order_by query string false "Ordering attribute (default startDate)"
// @Param order query string false "asc or desc (default asc)"
// @Param limit query integer false "Page size (default 20, max 100)"
// @Param offset query integer false "Page offset (default 0)"
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := helpers.ParseEventFilter(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}

	viewerID := ""
	if p, ok := middleware.PrincipalFromContext(r.Context()); ok {
		viewerID = p.ID
	}

	events, total, err := c.Service.ListEvents(r.Context(), filter, viewerID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}

	helpers.WriteJSONSuccess(w, http.StatusOK, &EventListData{
		Events:     events,
		Pagination: domain.NewPagination(filter, total),
	})
}

// EventSuccessResponse is the success response envelope for GET /events/{eventID} (200).
type EventSuccessResponse struct {
	Data  *domain.EventView `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetEvent godoc
// @Summary Get a single event
// @Description Returns the event with derived fields. Every call increments the event's view counter.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	viewerID := ""
	if p, ok := middleware.PrincipalFromContext(r.Context()); ok {
		viewerID = p.ID
	}

	view, err := c.Service.GetEvent(r.Context(), eventID, viewerID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, view)
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Type         string   `json:"type"`
	CoverImage   *string  `json:"cover_image"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	Location     string   `json:"location"`
	IsOnline     bool     `json:"is_online"`
	MeetingURL   *string  `json:"meeting_url"`
	Capacity     *int     `json:"capacity"`
	Price        int      `json:"price"`
	Currency     string   `json:"currency"`
	Tags         []string `json:"tags"`
	Requirements *string  `json:"requirements"`
	Agenda       *string  `json:"agenda"`
	Speakers     *string  `json:"speakers"`

	startDate time.Time
	endDate   time.Time
}

// Validate implements helpers.Validator. Dates must be RFC 3339; malformed
// dates are a validation error, never a silent default.
func (r *CreateEventRequest) Validate() []string {
	var errs []string
	if r.Title == "" {
		errs = append(errs, "title is required")
	}
	if r.Description == "" {
		errs = append(errs, "description is required")
	}
	if r.Location == "" {
		errs = append(errs, "location is required")
	}
	if !domain.EventType(r.Type).IsValid() {
		errs = append(errs, "type must be a valid event type")
	}
	var err error
	if r.startDate, err = time.Parse(time.RFC3339, r.StartDate); err != nil {
		errs = append(errs, "start_date must be an ISO-8601 timestamp")
	}
	if r.endDate, err = time.Parse(time.RFC3339, r.EndDate); err != nil {
		errs = append(errs, "end_date must be an ISO-8601 timestamp")
	}
	if len(errs) == 0 && r.endDate.Before(r.startDate) {
		errs = append(errs, "end_date must not precede start_date")
	}
	if r.Capacity != nil && *r.Capacity <= 0 {
		errs = append(errs, "capacity must be positive")
	}
	if r.Price < 0 {
		errs = append(errs, "price must not be negative")
	}
	return errs
}

// CreateEventSuccessResponse is the success response envelope for POST /events (201).
type CreateEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Creates an event organized by the authenticated user. New events start in PENDING_APPROVAL and become visible once published by an admin.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body controllers.CreateEventRequest true "Event data"
// @Success 201 {object} controllers.CreateEventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	event := &domain.Event{
		OrganizerID:  principal.ID,
		Title:        req.Title,
		Description:  req.Description,
		Type:         domain.EventType(req.Type),
		CoverImage:   req.CoverImage,
		StartDate:    req.startDate,
		EndDate:      req.endDate,
		Location:     req.Location,
		IsOnline:     req.IsOnline,
		MeetingURL:   req.MeetingURL,
		Capacity:     req.Capacity,
		Price:        req.Price,
		Currency:     req.Currency,
		Tags:         req.Tags,
		Requirements: req.Requirements,
		Agenda:       req.Agenda,
		Speakers:     req.Speakers,
	}
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// writeError maps domain errors to stable API error codes.
func (c *EventController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
