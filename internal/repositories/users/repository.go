// Package users persists registered accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/models"
)

type Repository interface {
	// Create inserts u and fills u.ID. A taken email yields common.ErrAlreadyExists.
	Create(ctx context.Context, u *models.User) (*models.User, error)
	// Exists reports whether any user has the given username or email.
	Exists(ctx context.Context, username, email string) (bool, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}
