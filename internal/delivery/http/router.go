package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"alumniconnect/internal/delivery/http/controllers"
	"alumniconnect/internal/delivery/http/middleware"
	"alumniconnect/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Listing and detail routes are public but personalize their response when a
// valid Bearer token is present; everything else requires authentication.
func NewRouter(
	eventController *controllers.EventController,
	attendeeController *controllers.AttendeeController,
	verifier domain.TokenVerifier,
) *http.ServeMux {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(verifier)
	optionalAuth := middleware.OptionalAuth(verifier)

	// Events
	mux.HandleFunc("GET /events", optionalAuth(eventController.ListEvents))
	mux.HandleFunc("GET /events/{eventID}", optionalAuth(eventController.GetEvent))
	mux.HandleFunc("POST /events", requireAuth(eventController.CreateEvent))

	// Registrations
	mux.HandleFunc("POST /events/{eventID}/registrations", requireAuth(attendeeController.RegisterForEvent))
	mux.HandleFunc("DELETE /events/{eventID}/registrations", requireAuth(attendeeController.CancelRegistration))
	mux.HandleFunc("GET /me/registrations", requireAuth(attendeeController.ListMyRegistrations))

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
