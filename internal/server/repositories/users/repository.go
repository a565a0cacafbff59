// Package users declares the read side of the account store used by the
// vault and its PostgreSQL and SQLite implementations. Registration and
// password checks live with the authentication service, not here.
package users

import (
	"context"

	"github.com/dmitrijs2005/passvault/internal/server/models"
)

type Repository interface {
	// Create inserts a user and returns it with the stored id.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByID returns the user or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)
}
