package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"commondays/internal/delivery/http/controllers"
	"commondays/internal/delivery/http/middleware"
	"commondays/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// verifier may be nil, which disables the bearer-token check.
func NewRouter(events *controllers.EventController, guests *controllers.GuestController, verifier domain.TokenVerifier) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireToken(verifier)

	// Event namespace (host view).
	mux.HandleFunc("POST /events", auth(events.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", auth(events.GetEvent))
	mux.HandleFunc("PUT /events/{eventID}", auth(events.UpdateEvent))
	mux.HandleFunc("POST /events/{eventID}/guests", auth(events.CreateGuestLink))
	mux.HandleFunc("GET /events/{eventID}/guests", auth(events.ListGuests))
	mux.HandleFunc("DELETE /events/{eventID}/guests/{guestID}", auth(events.RemoveGuest))
	mux.HandleFunc("GET /events/{eventID}/availability", auth(events.GetAvailability))

	// Guest namespace. These handlers never expose the owning event's ID.
	mux.HandleFunc("GET /guests/{guestID}", auth(guests.GetGuest))
	mux.HandleFunc("PUT /guests/{guestID}/name", auth(guests.UpdateGuestName))
	mux.HandleFunc("PUT /guests/{guestID}/availability", auth(guests.UpdateGuestAvailability))
	mux.HandleFunc("GET /guests/{guestID}/aggregate", auth(guests.GetGuestAggregate))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
