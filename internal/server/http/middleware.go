package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/server/auth"
	"github.com/dmitrijs2005/passvault/internal/server/metrics"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

type ctxKey string

const (
	userIDKey ctxKey = "userID"
	claimsKey ctxKey = "claims"
)

// UserFinder resolves the user named by a token.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticator checks bearer tokens on protected routes.
type Authenticator struct {
	secretKey   []byte
	revocations Revocations
	users       UserFinder
	logger      logging.Logger
}

// Middleware rejects the request with 401 unless it carries a valid,
// unrevoked token for an existing user.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		header := r.Header.Get(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || token == "" {
			writeUnauthorized(w, "missing token")
			return
		}

		claims, err := auth.ParseToken(token, a.secretKey)
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				writeUnauthorized(w, "token expired")
				return
			}
			writeUnauthorized(w, "invalid token")
			return
		}

		revoked, err := a.revocations.IsRevoked(ctx, claims.TokenID())
		if err != nil {
			a.logger.Error(ctx, "revocation lookup failed", "error", err, "request_id", chiMiddleware.GetReqID(ctx))
			writeError(w, err)
			return
		}
		if revoked {
			writeUnauthorized(w, common.ErrTokenRevoked.Error())
			return
		}

		user, err := a.users.GetByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				writeUnauthorized(w, "unknown user")
				return
			}
			a.logger.Error(ctx, "user lookup failed", "error", err, "request_id", chiMiddleware.GetReqID(ctx))
			writeError(w, err)
			return
		}

		ctx = context.WithValue(ctx, userIDKey, user.ID)
		ctx = context.WithValue(ctx, claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromContext returns the authenticated user's id.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// ClaimsFromContext returns the verified token claims.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*auth.Claims)
	return c, ok && c != nil
}

// withRequestLogging logs one line per request and records the request
// metrics under the matched route pattern.
func withRequestLogging(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			latency := time.Since(start)

			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(latency.Seconds())

			logger.Info(r.Context(), "http_request",
				"request_id", chiMiddleware.GetReqID(r.Context()),
				"method", r.Method,
				"route", route,
				"status", status,
				"bytes", ww.BytesWritten(),
				"latency", latency,
			)
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
