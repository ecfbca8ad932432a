package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/upeosoft/cms/internal/common"
	"github.com/upeosoft/cms/internal/dbx"
	"github.com/upeosoft/cms/internal/logging"
	"github.com/upeosoft/cms/internal/server/auth"
	"github.com/upeosoft/cms/internal/server/models"
	"github.com/upeosoft/cms/internal/server/repositories/repomanager"
)

// CommentService manages comments on posts. New comments wait for approval.
type CommentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewCommentService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *CommentService {
	return &CommentService{db: db, repomanager: m, log: log.With("component", "comments")}
}

// Create adds an unapproved comment by p to postID. The post must exist.
func (s *CommentService) Create(ctx context.Context, p auth.Principal, postID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" || postID == "" {
		return nil, validationErr("content and postId are required")
	}

	var out *models.Comment
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.repomanager.Documents(tx).GetByID(ctx, models.CollectionPosts, postID); err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return validationErr("post not found")
			}
			return err
		}

		var err error
		out, err = s.repomanager.Comments(tx).Create(ctx, &models.Comment{
			PostID:   postID,
			AuthorID: p.SubjectID,
			Content:  content,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "comment created", "id", out.ID, "post_id", postID, "by", p.SubjectID)
	return out, nil
}

// ListForPost returns the approved comments of a post.
func (s *CommentService) ListForPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	return s.repomanager.Comments(s.db).ListApprovedByPost(ctx, postID)
}

func (s *CommentService) Approve(ctx context.Context, id string) (*models.Comment, error) {
	return s.repomanager.Comments(s.db).Approve(ctx, id)
}

func (s *CommentService) Delete(ctx context.Context, id string) error {
	return s.repomanager.Comments(s.db).Delete(ctx, id)
}
