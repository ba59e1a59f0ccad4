// Package uploads is the backing store of temporary upload records.
package uploads

import (
	"context"
	"time"

	"github.com/dmitrijs2005/filepond/internal/models"
)

// DefaultTable is the table queried when no model table is configured.
const DefaultTable = "fileponds"

// Repository reads and deletes upload records. Soft-deleted records are
// invisible to the Find lookups; SelectExpired returns them so the sweeper
// can purge them.
type Repository interface {
	Create(ctx context.Context, u *models.Upload) error
	FindByID(ctx context.Context, scope models.Scope, id string) (*models.Upload, error)
	FindManyByIDs(ctx context.Context, scope models.Scope, ids []string) ([]*models.Upload, error)
	SelectExpired(ctx context.Context, now time.Time) ([]*models.Upload, error)
	SoftDelete(ctx context.Context, id string, now time.Time) error
	Delete(ctx context.Context, id string) error
}
