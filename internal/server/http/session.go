package http

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/passvault/internal/logging"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Revocations is the access token denylist. services.RevocationService
// implements it.
type Revocations interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) (*models.RevokedToken, error)
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type SessionHandler struct {
	revocations Revocations
	logger      logging.Logger
}

// Logout revokes the token the request was authenticated with.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "missing token")
		return
	}

	if _, err := h.revocations.Revoke(r.Context(), claims.TokenID(), claims.Expiry()); err != nil {
		h.logger.Error(r.Context(), "logout failed", "error", err, "request_id", chiMiddleware.GetReqID(r.Context()))
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
