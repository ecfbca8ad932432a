package users

import (
	"context"

	"github.com/upeosoft/cms/internal/server/auth"
	"github.com/upeosoft/cms/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateRole(ctx context.Context, id string, role auth.Role) (*models.User, error)
	SetActive(ctx context.Context, id string, active bool) (*models.User, error)
	ToggleActive(ctx context.Context, id string) (*models.User, error)
}
