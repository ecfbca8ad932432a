// Package documents provides the PostgreSQL-backed store for content
// collections. Each document keeps its free-form body in a JSONB column.
package documents

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

const documentColumns = `id, collection, slug, published, author_id, data, created_at, updated_at`

// PostgresRepository implements document storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*models.Document, error) {
	var (
		d      models.Document
		slug   sql.NullString
		author sql.NullString
		data   []byte
	)
	if err := row.Scan(&d.ID, &d.Collection, &slug, &d.Published, &author, &data, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Slug = slug.String
	d.AuthorID = author.String
	d.Data = data
	return &d, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func jsonData(d *models.Document) string {
	if len(d.Data) == 0 {
		return "{}"
	}
	return string(d.Data)
}

func wrapErr(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows), dbx.IsInvalidInput(err):
		return common.ErrorNotFound
	case dbx.IsUniqueViolation(err):
		return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, dbx.ConstraintName(err))
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

func (r *PostgresRepository) Create(ctx context.Context, doc *models.Document) (*models.Document, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO documents (id, collection, slug, published, author_id, data)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING ` + documentColumns

	d, err := scanDocument(r.db.QueryRowContext(ctx, query,
		doc.ID, doc.Collection, nullable(doc.Slug), doc.Published, nullable(doc.AuthorID), jsonData(doc)))
	if err != nil {
		return nil, wrapErr(err)
	}
	return d, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, collection, id string) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE collection = $1 AND id = $2`

	d, err := scanDocument(r.db.QueryRowContext(ctx, query, collection, id))
	if err != nil {
		return nil, wrapErr(err)
	}
	return d, nil
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, collection, slug string) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE collection = $1 AND slug = $2`

	d, err := scanDocument(r.db.QueryRowContext(ctx, query, collection, slug))
	if err != nil {
		return nil, wrapErr(err)
	}
	return d, nil
}

func (r *PostgresRepository) List(ctx context.Context, collection string, publishedOnly bool) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents
		 WHERE collection = $1 AND (published OR NOT $2)
		 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, collection, publishedOnly)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, doc *models.Document) (*models.Document, error) {
	query :=
		`UPDATE documents SET slug = $3, published = $4, data = $5, updated_at = now()
		 WHERE collection = $1 AND id = $2
		 RETURNING ` + documentColumns

	d, err := scanDocument(r.db.QueryRowContext(ctx, query,
		doc.Collection, doc.ID, nullable(doc.Slug), doc.Published, jsonData(doc)))
	if err != nil {
		return nil, wrapErr(err)
	}
	return d, nil
}

func (r *PostgresRepository) UpsertBySlug(ctx context.Context, doc *models.Document) (*models.Document, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}

	query := `
		INSERT INTO documents (id, collection, slug, published, data)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (collection, slug) WHERE slug IS NOT NULL
		DO UPDATE SET
			data = EXCLUDED.data,
			published = EXCLUDED.published,
			updated_at = now()
		RETURNING ` + documentColumns

	d, err := scanDocument(r.db.QueryRowContext(ctx, query,
		doc.ID, doc.Collection, doc.Slug, doc.Published, jsonData(doc)))
	if err != nil {
		return nil, wrapErr(err)
	}
	return d, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, collection, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
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
