// Package http exposes the vault over a JSON HTTP API. All /api routes
// except health and metrics require a bearer access token.
package http

import (
	"net/http"

	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Dependencies are the services the router dispatches to.
type Dependencies struct {
	Vault       Vault
	Revocations Revocations
	Users       UserFinder
	SecretKey   []byte
	Metrics     http.Handler
	Logger      logging.Logger
}

// NewRouter builds the API handler:
//
//	GET    /healthz
//	GET    /metrics
//	POST   /api/passwords
//	GET    /api/passwords
//	GET    /api/passwords/{id}
//	PUT    /api/passwords/{id}
//	PATCH  /api/passwords/{id}
//	DELETE /api/passwords/{id}
//	POST   /api/auth/logout
func NewRouter(d Dependencies) http.Handler {
	logger := d.Logger.With("module", "http")

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(withRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)

	r.Get("/healthz", health)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	auth := &Authenticator{
		secretKey:   d.SecretKey,
		revocations: d.Revocations,
		users:       d.Users,
		logger:      logger,
	}
	passwords := &PasswordHandler{vault: d.Vault, logger: logger}
	session := &SessionHandler{revocations: d.Revocations, logger: logger}

	r.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json"))
		r.Use(auth.Middleware)

		r.Route("/passwords", func(r chi.Router) {
			r.Post("/", passwords.Create)
			r.Get("/", passwords.List)
			r.Get("/{id}", passwords.Get)
			r.Put("/{id}", passwords.Update)
			r.Patch("/{id}", passwords.Update)
			r.Delete("/{id}", passwords.Delete)
		})

		r.Post("/auth/logout", session.Logout)
	})

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
