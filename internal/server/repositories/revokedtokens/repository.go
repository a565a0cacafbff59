// Package revokedtokens declares the repository contract for the access
// token denylist and its PostgreSQL and SQLite implementations.
package revokedtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/passvault/internal/server/models"
)

type Repository interface {
	// Create records tokenID as revoked. Recording an already revoked token
	// is a no-op and leaves the first record intact.
	Create(ctx context.Context, tokenID string, expiresAt, revokedAt time.Time) error

	// Find returns the record for tokenID or common.ErrorNotFound.
	Find(ctx context.Context, tokenID string) (*models.RevokedToken, error)

	// Exists reports whether tokenID is recorded.
	Exists(ctx context.Context, tokenID string) (bool, error)

	// DeleteExpired removes records with expires_at <= now and returns how
	// many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
