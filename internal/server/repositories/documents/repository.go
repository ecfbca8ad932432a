package documents

import (
	"context"

	"github.com/upeosoft/cms/internal/server/models"
)

// Repository stores documents of every content collection. All lookups are
// scoped to a collection.
type Repository interface {
	Create(ctx context.Context, doc *models.Document) (*models.Document, error)
	GetByID(ctx context.Context, collection, id string) (*models.Document, error)
	GetBySlug(ctx context.Context, collection, slug string) (*models.Document, error)
	// List returns documents newest first, optionally only published ones.
	List(ctx context.Context, collection string, publishedOnly bool) ([]*models.Document, error)
	Update(ctx context.Context, doc *models.Document) (*models.Document, error)
	// UpsertBySlug creates the document or replaces the data of the one
	// already holding its slug.
	UpsertBySlug(ctx context.Context, doc *models.Document) (*models.Document, error)
	Delete(ctx context.Context, collection, id string) error
}
