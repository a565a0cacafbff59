package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/dbx"
	"github.com/dmitrijs2005/passvault/internal/server/models"
)

// SQLiteRepository implements Repository for SQLite. Timestamps are kept
// as dbx.TextTimeLayout strings.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	query := `
		INSERT INTO password_entries (id, user_id, website, username, encrypted_password, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Website, entry.Username, entry.EncryptedSecret, entry.Notes,
		dbx.FormatTextTime(entry.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string) ([]*models.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM password_entries
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Entry, 0)
	for rows.Next() {
		e, err := scanSQLite(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *SQLiteRepository) GetByIDAndUser(ctx context.Context, id, userID string) (*models.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM password_entries
		WHERE id = ? AND user_id = ?
	`
	e, err := scanSQLite(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id, userID string, changes models.EntryChanges) (*models.Entry, error) {
	if changes.IsEmpty() {
		return r.GetByIDAndUser(ctx, id, userID)
	}

	set, args, _ := setClause(changes, func(int) string { return "?" })
	query := fmt.Sprintf(`
		UPDATE password_entries SET %s
		WHERE id = ? AND user_id = ?
		RETURNING %s
	`, set, entryColumns)
	args = append(args, id, userID)

	e, err := scanSQLite(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM password_entries WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}

	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return rowsAffectedError(n)
	}
}

func scanSQLite(row scanner) (*models.Entry, error) {
	var createdAt string
	e := &models.Entry{}
	if err := row.Scan(&e.ID, &e.UserID, &e.Website, &e.Username, &e.EncryptedSecret, &e.Notes, &createdAt); err != nil {
		return nil, err
	}

	t, err := dbx.ParseTextTime(createdAt)
	if err != nil {
		return nil, err
	}
	e.CreatedAt = t
	return e, nil
}
