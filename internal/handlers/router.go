// File: internal/handlers/router.go
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-linksports/internal/domain"
	"github.com/iyunix/go-linksports/internal/dtos"
	"github.com/iyunix/go-linksports/internal/middleware"
	"github.com/iyunix/go-linksports/internal/ratelimit"
)

// RouterConfig carries everything the router wires together.
type RouterConfig struct {
	Auth        *AuthHandler
	Profiles    *ProfileHandler
	Connections *ConnectionHandler
	Posts       *PostHandler
	Sports      *SportHandler
	Admin       *AdminHandler
	Logs        *LogHandler

	Tokens middleware.TokenValidator
	Users  middleware.UserLoader

	// APILimiter throttles every request per client. AuthLimiter guards the
	// credential and code endpoints and bans repeat offenders.
	APILimiter  ratelimit.Limiter
	AuthLimiter *ratelimit.MemoryRateLimiter
	// TrustProxy keys the limiters by forwarding headers.
	TrustProxy bool

	Metrics        middleware.RequestObserver
	MetricsHandler http.Handler
	Health         func(r *http.Request) error

	Logger Logger
}

// NewRouter builds the API. CORS wraps the router so preflight requests
// are answered before route matching.
func NewRouter(c RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, dtos.Failure("Route not found", nil))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, dtos.Failure("Method not allowed", nil))
	})

	r.Use(middleware.RecoverPanic(c.Logger))
	r.Use(middleware.LoggingMiddleware(c.Logger))
	if c.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(c.Metrics))
	}

	r.HandleFunc("/health", c.health).Methods(http.MethodGet)
	if c.MetricsHandler != nil {
		r.Handle("/metrics", c.MetricsHandler).Methods(http.MethodGet)
	}

	requireAuth := middleware.NewJWTMiddleware(c.Tokens, c.Users, c.Logger)
	clientKey := middleware.TrustProxyHeaders(c.TrustProxy)

	api := r.PathPrefix("/api/v1").Subrouter()
	if c.APILimiter != nil {
		api.Use(middleware.RateLimitMiddleware(c.APILimiter, "api", c.Logger, clientKey))
	}
	api.HandleFunc("/log", c.Logs.LogClientEvent).Methods(http.MethodPost)

	// Unauthenticated credential and code endpoints.
	public := api.PathPrefix("/auth").Subrouter()
	if c.AuthLimiter != nil {
		public.Use(middleware.RateLimitMiddleware(c.AuthLimiter, "auth", c.Logger, clientKey))
		public.Use(middleware.AuthSuccessMiddleware(c.AuthLimiter, "auth", clientKey))
	}
	public.HandleFunc("/register", c.Auth.Register).Methods(http.MethodPost)
	public.HandleFunc("/login", c.Auth.Login).Methods(http.MethodPost)
	public.HandleFunc("/verify_email", c.Auth.VerifyEmail).Methods(http.MethodPost)
	public.HandleFunc("/resend_email_code", c.Auth.ResendEmailCode).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(requireAuth)

	protected.HandleFunc("/auth/verify_phone", c.Auth.VerifyPhone).Methods(http.MethodPost)
	protected.HandleFunc("/auth/resend_phone_code", c.Auth.ResendPhoneCode).Methods(http.MethodPost)
	protected.HandleFunc("/auth/logout", c.Auth.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/auth/me", c.Auth.Me).Methods(http.MethodGet)

	protected.HandleFunc("/profiles/me", c.Profiles.Me).Methods(http.MethodGet)
	protected.HandleFunc("/profiles/{id:[0-9]+}", c.Profiles.Show).Methods(http.MethodGet)
	protected.HandleFunc("/profiles/{id:[0-9]+}", c.Profiles.Update).Methods(http.MethodPatch)
	protected.HandleFunc("/profiles/{id:[0-9]+}/complete_setup", c.Profiles.CompleteSetup).Methods(http.MethodPatch)

	protected.HandleFunc("/connections", c.Connections.List).Methods(http.MethodGet)
	protected.HandleFunc("/connections", c.Connections.Create).Methods(http.MethodPost)
	protected.HandleFunc("/connections/requests", c.Connections.Requests).Methods(http.MethodGet)
	protected.HandleFunc("/connections/{id:[0-9]+}", c.Connections.UpdateStatus).Methods(http.MethodPatch)
	protected.HandleFunc("/connections/{id:[0-9]+}", c.Connections.Delete).Methods(http.MethodDelete)

	protected.HandleFunc("/posts", c.Posts.Feed).Methods(http.MethodGet)
	protected.HandleFunc("/posts", c.Posts.Create).Methods(http.MethodPost)
	protected.HandleFunc("/posts/{id:[0-9]+}", c.Posts.Show).Methods(http.MethodGet)
	protected.HandleFunc("/posts/{id:[0-9]+}", c.Posts.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/posts/{id:[0-9]+}/like", c.Posts.Like).Methods(http.MethodPost)
	protected.HandleFunc("/posts/{id:[0-9]+}/like", c.Posts.Unlike).Methods(http.MethodDelete)
	protected.HandleFunc("/posts/{id:[0-9]+}/comments", c.Posts.Comments).Methods(http.MethodGet)
	protected.HandleFunc("/posts/{id:[0-9]+}/comments", c.Posts.AddComment).Methods(http.MethodPost)

	protected.HandleFunc("/sports", c.Sports.List).Methods(http.MethodGet)
	protected.HandleFunc("/sports/categories", c.Sports.Categories).Methods(http.MethodGet)
	protected.HandleFunc("/sports/{id:[0-9]+}", c.Sports.Show).Methods(http.MethodGet)
	protected.HandleFunc("/user_sports", c.Sports.ListUserSports).Methods(http.MethodGet)
	protected.HandleFunc("/user_sports", c.Sports.AddUserSport).Methods(http.MethodPost)
	protected.HandleFunc("/user_sports/{id:[0-9]+}", c.Sports.UpdateUserSport).Methods(http.MethodPatch)
	protected.HandleFunc("/user_sports/{id:[0-9]+}", c.Sports.DeleteUserSport).Methods(http.MethodDelete)

	admin := r.PathPrefix("/api/admin").Subrouter()
	if c.APILimiter != nil {
		admin.Use(middleware.RateLimitMiddleware(c.APILimiter, "api", c.Logger, clientKey))
	}
	admin.Use(requireAuth)
	admin.Use(middleware.RequireRole(c.Logger, domain.RoleAdmin, domain.RoleModerator))

	admin.HandleFunc("/users", c.Admin.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/export", c.Admin.ExportUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id:[0-9]+}", c.Admin.DeleteUser).Methods(http.MethodDelete)
	admin.HandleFunc("/users/{id:[0-9]+}/activate", c.Admin.Activate).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id:[0-9]+}/deactivate", c.Admin.Deactivate).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id:[0-9]+}/ban", c.Admin.Ban).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id:[0-9]+}/unban", c.Admin.Unban).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id:[0-9]+}/role", c.Admin.ChangeRole).Methods(http.MethodPatch)
	admin.HandleFunc("/users/{id:[0-9]+}/restore", c.Admin.Restore).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id:[0-9]+}/verify_email", c.Admin.VerifyEmail).Methods(http.MethodPost)
	admin.HandleFunc("/users/{id:[0-9]+}/verify_phone", c.Admin.VerifyPhone).Methods(http.MethodPost)
	admin.HandleFunc("/sports", c.Admin.CreateSport).Methods(http.MethodPost)
	admin.HandleFunc("/sport_attributes", c.Admin.CreateAttribute).Methods(http.MethodPost)
	admin.HandleFunc("/audit_logs", c.Admin.AuditLogs).Methods(http.MethodGet)

	return middleware.CORS(r)
}

func (c RouterConfig) health(w http.ResponseWriter, r *http.Request) {
	if c.Health != nil {
		if err := c.Health(r); err != nil {
			c.Logger.Error("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, dtos.Failure("unhealthy", nil))
			return
		}
	}
	respondSuccess(w, http.StatusOK, map[string]string{"status": "ok"}, "")
}
