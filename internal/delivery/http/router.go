package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"calmerge/internal/delivery/http/controllers"
)

// NewRouter initializes the HTTP router with all application routes.
// authWrap guards the routes that require a Bearer token.
func NewRouter(
	userController *controllers.UserController,
	eventController *controllers.EventController,
	mergeController *controllers.MergeController,
	authWrap func(http.HandlerFunc) http.HandlerFunc,
) *http.ServeMux {
	mux := http.NewServeMux()

	// Auth
	mux.HandleFunc("POST /auth/signup", userController.SignUp)
	mux.HandleFunc("POST /auth/login", userController.Login)

	// Users
	mux.HandleFunc("GET /users/me", authWrap(userController.GetMe))

	// Events
	mux.HandleFunc("POST /events", authWrap(eventController.CreateEvent))
	mux.HandleFunc("GET /events", authWrap(eventController.ListMyEvents))
	mux.HandleFunc("GET /events/{eventID}", authWrap(eventController.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", authWrap(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", authWrap(eventController.DeleteEvent))

	// Merge
	mux.HandleFunc("POST /events/merge", authWrap(mergeController.MergeEvents))
	mux.HandleFunc("GET /merge/audit-logs", authWrap(mergeController.ListAuditLogs))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
