package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/dbx"
	"github.com/dmitrijs2005/passvault/internal/server/metrics"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/repomanager"
)

// RevocationService is the denylist of logged-out access tokens, keyed by
// the token's jti.
type RevocationService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewRevocationService(db *sql.DB, m repomanager.RepositoryManager) *RevocationService {
	return &RevocationService{
		db:          db,
		repomanager: m,
		now:         time.Now,
	}
}

// Revoke records tokenID until expiresAt. It is idempotent: revoking an
// already revoked token returns the first record unchanged.
func (s *RevocationService) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) (*models.RevokedToken, error) {
	if strings.TrimSpace(tokenID) == "" {
		return nil, common.NewValidationError("token_id", "must not be empty")
	}

	var record *models.RevokedToken
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.RevokedTokens(tx)

		if err := repo.Create(ctx, tokenID, expiresAt.UTC(), s.now().UTC()); err != nil {
			return err
		}

		var err error
		record, err = repo.Find(ctx, tokenID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error revoking token: %w", err)
	}

	return record, nil
}

// IsRevoked reports whether tokenID has been revoked and not yet pruned.
func (s *RevocationService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	ok, err := s.repomanager.RevokedTokens(s.db).Exists(ctx, tokenID)
	if err != nil {
		return false, fmt.Errorf("error checking revocation: %w", err)
	}
	return ok, nil
}

// Prune removes records whose expires_at is at or before now. Once a token
// has expired on its own the record is no longer needed.
func (s *RevocationService) Prune(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.repomanager.RevokedTokens(s.db).DeleteExpired(ctx, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("error pruning revoked tokens: %w", err)
	}
	metrics.RevokedTokensPrunedTotal.Add(float64(n))
	return n, nil
}
