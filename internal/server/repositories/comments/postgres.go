package comments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/upeosoft/cms/internal/common"
	"github.com/upeosoft/cms/internal/dbx"
	"github.com/upeosoft/cms/internal/server/models"
)

const commentColumns = `id, post_id, author_id, content, approved, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanComment(row scanner) (*models.Comment, error) {
	c := &models.Comment{}
	var author sql.NullString
	if err := row.Scan(&c.ID, &c.PostID, &author, &c.Content, &c.Approved, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.AuthorID = author.String
	return c, nil
}

// wrapErr maps a missing row, or an id PostgreSQL could not parse, to
// common.ErrorNotFound.
func wrapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidInput(err) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO comments (id, post_id, author_id, content, approved)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING ` + commentColumns

	c, err := scanComment(r.db.QueryRowContext(ctx, query,
		comment.ID, comment.PostID, sql.NullString{String: comment.AuthorID, Valid: comment.AuthorID != ""},
		comment.Content, comment.Approved))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) ListApprovedByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments
		 WHERE post_id = $1 AND approved
		 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		if dbx.IsInvalidInput(err) {
			return []*models.Comment{}, nil
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Approve(ctx context.Context, id string) (*models.Comment, error) {
	query := `UPDATE comments SET approved = TRUE WHERE id = $1 RETURNING ` + commentColumns

	c, err := scanComment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapErr(err)
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return wrapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
