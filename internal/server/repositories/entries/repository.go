// Package entries declares the repository contract for stored credentials
// and its PostgreSQL and SQLite implementations.
//
// Every method that touches a single entry takes both the entry id and the
// owner id and binds both in the WHERE clause. No method addresses an
// entry by id alone.
package entries

import (
	"context"

	"github.com/dmitrijs2005/passvault/internal/server/models"
)

type Repository interface {
	// Create inserts a fully populated entry (id, owner, ciphertext, created_at).
	Create(ctx context.Context, entry *models.Entry) (*models.Entry, error)

	// ListByUser returns the owner's entries, newest first. Never nil.
	ListByUser(ctx context.Context, userID string) ([]*models.Entry, error)

	// GetByIDAndUser returns common.ErrorNotFound unless the entry exists and
	// belongs to userID.
	GetByIDAndUser(ctx context.Context, id, userID string) (*models.Entry, error)

	// Update applies changes in a single conditional statement and returns
	// the stored row. Returns common.ErrorNotFound when nothing matched.
	Update(ctx context.Context, id, userID string, changes models.EntryChanges) (*models.Entry, error)

	// Delete removes the entry. Returns common.ErrorNotFound when nothing matched.
	Delete(ctx context.Context, id, userID string) error
}
