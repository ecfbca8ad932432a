package contacts

import (
	"context"

	"github.com/upeosoft/cms/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	List(ctx context.Context) ([]*models.Contact, error)
	UpdateStatus(ctx context.Context, id string, status models.ContactStatus) (*models.Contact, error)
	Delete(ctx context.Context, id string) error
}
