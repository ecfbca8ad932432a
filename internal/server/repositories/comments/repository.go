package comments

import (
	"context"

	"github.com/upeosoft/cms/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	// ListApprovedByPost returns a post's approved comments, newest first.
	ListApprovedByPost(ctx context.Context, postID string) ([]*models.Comment, error)
	Approve(ctx context.Context, id string) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
}
