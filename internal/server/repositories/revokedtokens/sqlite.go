package revokedtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/dbx"
	"github.com/dmitrijs2005/passvault/internal/server/models"
)

// SQLiteRepository implements Repository for SQLite. Timestamps are kept
// as dbx.TextTimeLayout strings, which compare correctly as text.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, tokenID string, expiresAt, revokedAt time.Time) error {
	query := `
		INSERT INTO revoked_tokens (token_id, expires_at, revoked_at)
		VALUES (?, ?, ?)
		ON CONFLICT (token_id) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, tokenID, dbx.FormatTextTime(expiresAt), dbx.FormatTextTime(revokedAt))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Find(ctx context.Context, tokenID string) (*models.RevokedToken, error) {
	var expiresAt, revokedAt string
	t := &models.RevokedToken{}

	err := r.db.QueryRowContext(ctx,
		`SELECT token_id, expires_at, revoked_at FROM revoked_tokens WHERE token_id = ?`, tokenID,
	).Scan(&t.TokenID, &expiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if t.ExpiresAt, err = dbx.ParseTextTime(expiresAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if t.RevokedAt, err = dbx.ParseTextTime(revokedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, tokenID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE token_id = ?)`, tokenID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *SQLiteRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= ?`, dbx.FormatTextTime(now))
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
