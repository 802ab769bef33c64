package api

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"reservaja/internal/apperror"
	"reservaja/internal/auth"
)

// Dependencies is everything the router needs to serve requests.
type Dependencies struct {
	Auth         *AuthHandler
	Rooms        *RoomHandler
	Reservations *ReservationHandler

	Verifier auth.TokenVerifier
	Resolver auth.PrincipalResolver
	Policy   *auth.Policy

	RequestTimeout time.Duration
	Now            func() time.Time
	Logger         *slog.Logger
}

var (
	errRouteNotFound    = apperror.NotFound("No handler found for the requested path")
	errMethodNotAllowed = apperror.New(apperror.KindMethodNotAllowed, "Request method is not supported for this path")
)

// NewRouter builds the route table behind the authentication gate and the
// authorization policy. Every request, including unknown paths, is judged by
// the policy before a handler runs.
func NewRouter(deps Dependencies) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		apperror.Write(w, req, errRouteNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		apperror.Write(w, req, errMethodNotAllowed)
	})

	r.HandleFunc("/health", Health).Methods(http.MethodGet)

	authRoutes := r.PathPrefix("/api/auth").Subrouter()
	authRoutes.HandleFunc("/login", deps.Auth.Login).Methods(http.MethodPost)
	authRoutes.HandleFunc("/register", deps.Auth.Register).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/users/me", deps.Auth.Me).Methods(http.MethodGet)

	api.HandleFunc("/rooms", deps.Rooms.ListRooms).Methods(http.MethodGet)
	api.HandleFunc("/rooms", deps.Rooms.CreateRoom).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{id}", deps.Rooms.GetRoom).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{id}", deps.Rooms.UpdateRoom).Methods(http.MethodPut)
	api.HandleFunc("/rooms/{id}", deps.Rooms.DeleteRoom).Methods(http.MethodDelete)

	api.HandleFunc("/availability", deps.Reservations.CheckAvailability).Methods(http.MethodPost)
	api.HandleFunc("/reservations", deps.Reservations.ListMyReservations).Methods(http.MethodGet)
	api.HandleFunc("/reservations", deps.Reservations.CreateReservation).Methods(http.MethodPost)
	api.HandleFunc("/reservations/{id}", deps.Reservations.GetReservation).Methods(http.MethodGet)
	api.HandleFunc("/reservations/{id}", deps.Reservations.CancelReservation).Methods(http.MethodDelete)

	policy := deps.Policy
	if policy == nil {
		policy = auth.DefaultPolicy()
	}
	return Chain(r,
		RequestID,
		Recover(deps.Logger),
		Deadline(deps.RequestTimeout),
		auth.Authenticate(deps.Verifier, deps.Resolver, deps.Now),
		auth.Authorize(policy),
	)
}

// WithServerMiddleware adds an access log and CORS around h. Panics that
// escape h are still caught here, outside the JSON error envelope.
func WithServerMiddleware(h http.Handler, accessLog io.Writer, allowedOrigins []string, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", requestIDHeader}),
		handlers.ExposedHeaders([]string{"Location", requestIDHeader}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
		handlers.PrintRecoveryStack(false),
	)
	return recovery(handlers.CombinedLoggingHandler(accessLog, cors(h)))
}
