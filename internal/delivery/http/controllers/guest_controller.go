package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"commondays/internal/delivery/http/helpers"
	"commondays/internal/domain"
	"commondays/internal/identity"
)

// GuestResponse is the guest snapshot returned by guest-scoped endpoints.
// It deliberately omits the owning event's identifier: possession of a guest
// link must not reveal the event namespace.
type GuestResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Availability *[]string `json:"availability"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func newGuestResponse(g *domain.Guest) GuestResponse {
	return GuestResponse{
		ID:           g.ID,
		Name:         g.Name,
		Availability: g.Availability,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}

// UpdateGuestNameRequest is the request body for PUT /guests/{guestID}/name.
type UpdateGuestNameRequest struct {
	Name string `json:"name"`
}

// Validate implements Validator.
func (u UpdateGuestNameRequest) Validate() []string {
	var errs []string
	if u.Name == "" {
		errs = append(errs, "name is required")
	}
	if len(u.Name) > maxNameLen {
		errs = append(errs, "name must be at most 100 characters")
	}
	return errs
}

// UpdateGuestAvailabilityRequest is the request body for
// PUT /guests/{guestID}/availability. The availability field is the entire
// desired date set, not a delta; an empty array is the explicit "no days"
// response.
type UpdateGuestAvailabilityRequest struct {
	Availability *[]string `json:"availability"`
}

// Validate implements Validator.
func (u UpdateGuestAvailabilityRequest) Validate() []string {
	if u.Availability == nil {
		return []string{"availability must be an array of dates"}
	}
	return helpers.ValidateDates(*u.Availability)
}

type GuestController struct {
	Logger     *slog.Logger
	Service    domain.GuestService
	Aggregator domain.Aggregator
}

func NewGuestController(logger *slog.Logger, svc domain.GuestService, agg domain.Aggregator) *GuestController {
	return &GuestController{
		Logger:     logger,
		Service:    svc,
		Aggregator: agg,
	}
}

// guestIDFromPath validates the guestID path segment before any record is
// addressed. Returns false after writing the error response.
func guestIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	guestID := r.PathValue("guestID")
	if err := identity.ValidateGuestID(guestID); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeInvalidID, "malformed guest identifier")
		return "", false
	}
	return guestID, true
}

// GetGuest godoc
// @Summary Get a guest record
// @Description Returns the guest's own snapshot. The response never contains the owning event's identifier.
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Param guestID path string true "Guest ID"
// @Success 200 {object} helpers.APIResponse "data contains the guest"
// @Failure 400 {object} helpers.APIResponse "error.code: invalid_id"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /guests/{guestID} [get]
func (c *GuestController) GetGuest(w http.ResponseWriter, r *http.Request) {
	guestID, ok := guestIDFromPath(w, r)
	if !ok {
		return
	}
	guest, err := c.Service.Get(r.Context(), guestID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newGuestResponse(guest))
}

// UpdateGuestName godoc
// @Summary Update a guest's display name
// @Tags guests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param guestID path string true "Guest ID"
// @Param body body UpdateGuestNameRequest true "New name"
// @Success 200 {object} helpers.APIResponse "data contains the updated guest"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or invalid_id"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /guests/{guestID}/name [put]
func (c *GuestController) UpdateGuestName(w http.ResponseWriter, r *http.Request) {
	guestID, ok := guestIDFromPath(w, r)
	if !ok {
		return
	}
	var req UpdateGuestNameRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	guest, err := c.Service.Update(r.Context(), guestID, domain.GuestUpdate{Name: &req.Name})
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newGuestResponse(guest))
}

// UpdateGuestAvailability godoc
// @Summary Replace a guest's availability set
// @Description Whole-set replacement: the body carries every date the guest is available for. Concurrent writers to the same guest resolve last-write-wins.
// @Tags guests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param guestID path string true "Guest ID"
// @Param body body UpdateGuestAvailabilityRequest true "Complete availability set"
// @Success 200 {object} helpers.APIResponse "data contains the updated guest"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or invalid_id"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /guests/{guestID}/availability [put]
func (c *GuestController) UpdateGuestAvailability(w http.ResponseWriter, r *http.Request) {
	guestID, ok := guestIDFromPath(w, r)
	if !ok {
		return
	}
	var req UpdateGuestAvailabilityRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	guest, err := c.Service.Update(r.Context(), guestID, domain.GuestUpdate{Availability: req.Availability})
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newGuestResponse(guest))
}

// GetGuestAggregate godoc
// @Summary Aggregate heatmap for a guest's event
// @Description Guest-scoped aggregate read: resolves the guest's event internally, so callers holding only a guest link can poll the heatmap. The response carries no event identifier.
// @Tags guests
// @Produce json
// @Security BearerAuth
// @Param guestID path string true "Guest ID"
// @Success 200 {object} helpers.APIResponse "data contains total_guests, responded_guests, heatmap"
// @Failure 400 {object} helpers.APIResponse "error.code: invalid_id"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 503 {object} helpers.APIResponse "error.code: service_unavailable"
// @Router /guests/{guestID}/aggregate [get]
func (c *GuestController) GetGuestAggregate(w http.ResponseWriter, r *http.Request) {
	guestID, ok := guestIDFromPath(w, r)
	if !ok {
		return
	}
	guest, err := c.Service.Get(r.Context(), guestID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	agg, err := c.Aggregator.Aggregate(r.Context(), guest.EventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, agg)
}
