// Package tasks persists to-do items in stored (possibly encrypted) form.
package tasks

import (
	"context"

	"github.com/dmitrijs2005/todokeeper/internal/models"
)

type Repository interface {
	// Create inserts t and fills t.ID. t must pass models.Task.Validate.
	Create(ctx context.Context, t *models.Task) (*models.Task, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Task, error)
	ListAll(ctx context.Context) ([]*models.Task, error)
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	// Update overwrites every mutable column of the row with t.ID.
	Update(ctx context.Context, t *models.Task) error
	DeleteByID(ctx context.Context, id int64) error
	// DeleteByUser and DeleteAll return the number of removed rows.
	DeleteByUser(ctx context.Context, userID int64) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}
