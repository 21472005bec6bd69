package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/delivery/http/controllers"
)

// NewRouter initializes the HTTP router with all application routes.
// requireAuth wraps handlers that need an authenticated user.
func NewRouter(
	authController *controllers.AuthController,
	userController *controllers.UserController,
	eventController *controllers.EventController,
	registrationController *controllers.RegistrationController,
	speakerController *controllers.SpeakerController,
	requireAuth func(http.HandlerFunc) http.HandlerFunc,
) *http.ServeMux {
	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Users
	mux.HandleFunc("GET /users/me", requireAuth(userController.GetMe))
	mux.HandleFunc("PATCH /users/me", requireAuth(userController.UpdateMe))
	mux.HandleFunc("GET /users/me/registrations", requireAuth(registrationController.ListMyRegistrations))

	// Events
	mux.HandleFunc("GET /events", eventController.ListEvents)
	mux.HandleFunc("POST /events", requireAuth(eventController.CreateEvent))
	mux.HandleFunc("GET /events/me", requireAuth(eventController.ListMyEvents))
	mux.HandleFunc("GET /events/{eventID}", eventController.GetEvent)
	mux.HandleFunc("PATCH /events/{eventID}", requireAuth(eventController.UpdateEvent))
	mux.HandleFunc("PATCH /events/{eventID}/status", requireAuth(eventController.ChangeEventStatus))
	mux.HandleFunc("DELETE /events/{eventID}", requireAuth(eventController.DeleteEvent))

	// Registrations
	mux.HandleFunc("POST /events/{eventID}/register", requireAuth(registrationController.Register))
	mux.HandleFunc("DELETE /events/{eventID}/register", requireAuth(registrationController.CancelRegistration))
	mux.HandleFunc("GET /events/{eventID}/registrations", requireAuth(registrationController.ListEventRegistrations))
	mux.HandleFunc("POST /events/{eventID}/registrations/{registrationID}/approve", requireAuth(registrationController.ApproveRegistration))
	mux.HandleFunc("POST /events/{eventID}/registrations/{registrationID}/reject", requireAuth(registrationController.RejectRegistration))
	mux.HandleFunc("POST /events/{eventID}/registrations/{registrationID}/checkin", requireAuth(registrationController.CheckInRegistration))
	mux.HandleFunc("POST /events/{eventID}/registrations/{registrationID}/checkout", requireAuth(registrationController.CheckOutRegistration))
	mux.HandleFunc("DELETE /events/{eventID}/registrations/{registrationID}", requireAuth(registrationController.RemoveRegistration))

	// Speakers
	mux.HandleFunc("POST /events/{eventID}/speakers/apply", requireAuth(speakerController.Apply))
	mux.HandleFunc("GET /events/{eventID}/speakers", requireAuth(speakerController.ListApplications))
	mux.HandleFunc("POST /events/{eventID}/speakers/{applicationID}/review", requireAuth(speakerController.Review))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
