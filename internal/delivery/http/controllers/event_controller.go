package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"commondays/internal/delivery/http/helpers"
	"commondays/internal/domain"
	"commondays/internal/identity"
)

const (
	maxNameLen        = 100
	maxDescriptionLen = 1000
)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	HostName    string `json:"host_name"`
}

// Validate implements Validator. Returns error messages for required and format rules.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if c.Name == "" {
		errs = append(errs, "name is required")
	}
	if len(c.Name) > maxNameLen {
		errs = append(errs, "name must be at most 100 characters")
	}
	if len(c.Description) > maxDescriptionLen {
		errs = append(errs, "description must be at most 1000 characters")
	}
	if len(c.HostName) > maxNameLen {
		errs = append(errs, "host_name must be at most 100 characters")
	}
	return errs
}

// UpdateEventRequest is the request body for PUT /events/{eventID}. All fields
// optional; omitted fields are unchanged.
type UpdateEventRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Name != nil && *u.Name == "" {
		errs = append(errs, "name must not be empty")
	}
	if u.Name != nil && len(*u.Name) > maxNameLen {
		errs = append(errs, "name must be at most 100 characters")
	}
	if u.Description != nil && len(*u.Description) > maxDescriptionLen {
		errs = append(errs, "description must be at most 1000 characters")
	}
	return errs
}

// CreateGuestLinkRequest is the request body for POST /events/{eventID}/guests.
// Email is optional; when set, the link is also mailed to the guest.
type CreateGuestLinkRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate implements Validator.
func (c CreateGuestLinkRequest) Validate() []string {
	var errs []string
	if len(c.Name) > maxNameLen {
		errs = append(errs, "name must be at most 100 characters")
	}
	return errs
}

// EventGuestResponse is one member in the host's guest list.
type EventGuestResponse struct {
	GuestResponse
	IsHost bool `json:"is_host"`
}

type EventController struct {
	Logger     *slog.Logger
	Service    domain.EventService
	Aggregator domain.Aggregator
	Email      domain.EmailService
}

func NewEventController(logger *slog.Logger, svc domain.EventService, agg domain.Aggregator, email domain.EmailService) *EventController {
	return &EventController{
		Logger:     logger,
		Service:    svc,
		Aggregator: agg,
		Email:      email,
	}
}

// writeServiceError maps domain errors to the API error envelope.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidID):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeInvalidID, "malformed identifier")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrAggregateUnavailable):
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeServiceUnavailable, "aggregate unavailable")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}

// eventIDFromPath validates the eventID path segment before any record is
// addressed. Returns false after writing the error response.
func eventIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	eventID := r.PathValue("eventID")
	if err := identity.ValidateEventID(eventID); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeInvalidID, "malformed event identifier")
		return "", false
	}
	return eventID, true
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Creates the event and its host guest record. The host is an ordinary guest; its ID is returned as host_guest_id.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.Create(r.Context(), req.Name, req.Description, req.HostName)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetEvent godoc
// @Summary Get event metadata
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 400 {object} helpers.APIResponse "error.code: invalid_id"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	event, err := c.Service.Get(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEvent godoc
// @Summary Update event metadata
// @Description Updates name and/or description. Membership and guest content are untouched.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or invalid_id"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.Update(r.Context(), eventID, req.Name, req.Description)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// CreateGuestLink godoc
// @Summary Generate a guest link
// @Description Allocates a new guest slot for the event and returns its shareable link. When email is set the link is also mailed; a mail failure does not fail the call.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body CreateGuestLinkRequest true "Guest name and optional email"
// @Success 201 {object} helpers.APIResponse "data contains guest_id and url"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or invalid_id"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/guests [post]
func (c *EventController) CreateGuestLink(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	var req CreateGuestLinkRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	link, err := c.Service.GenerateGuestLink(r.Context(), eventID, req.Name)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	if req.Email != "" && c.Email != nil {
		event, err := c.Service.Get(r.Context(), eventID)
		if err == nil {
			err = c.Email.SendGuestLink(r.Context(), &domain.GuestLinkEmailData{
				Email:     req.Email,
				GuestName: req.Name,
				EventName: event.Name,
				LinkURL:   link.URL,
			})
		}
		if err != nil {
			c.Logger.WarnContext(r.Context(), "guest link email not sent", "event_id", eventID, "err", err)
		}
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, link)
}

// ListGuests godoc
// @Summary List event guests (host view)
// @Description Reads all members concurrently. Members whose read fails or times out are excluded from the result.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the guest list"
// @Failure 400 {object} helpers.APIResponse "error.code: invalid_id"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable (all member reads failed)"
// @Router /events/{eventID}/guests [get]
func (c *EventController) ListGuests(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	guests, err := c.Service.ListGuests(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	resp := make([]EventGuestResponse, 0, len(guests))
	for _, g := range guests {
		resp = append(resp, EventGuestResponse{
			GuestResponse: newGuestResponse(g.Guest),
			IsHost:        g.IsHost,
		})
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, resp)
}

// RemoveGuest godoc
// @Summary Remove a guest from an event
// @Description Unregisters the guest and deletes its record; the next aggregate read no longer counts it. The host cannot be removed.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param guestID path string true "Guest ID"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or invalid_id"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/guests/{guestID} [delete]
func (c *EventController) RemoveGuest(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	guestID := r.PathValue("guestID")
	if err := identity.ValidateGuestID(guestID); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeInvalidID, "malformed guest identifier")
		return
	}
	if err := c.Service.RemoveGuest(r.Context(), eventID, guestID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "removed"})
}

// GetAvailability godoc
// @Summary Aggregate availability heatmap
// @Description Returns raw per-date counts of responded guests. Intensity fractions are a client-side derivation (count / responded_guests).
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains total_guests, responded_guests, heatmap"
// @Failure 400 {object} helpers.APIResponse "error.code: invalid_id"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Router /events/{eventID}/availability [get]
func (c *EventController) GetAvailability(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDFromPath(w, r)
	if !ok {
		return
	}
	agg, err := c.Aggregator.Aggregate(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, agg)
}
