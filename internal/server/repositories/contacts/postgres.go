package contacts

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

const contactColumns = `id, name, email, phone, company, subject, message, status, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanContact(row scanner) (*models.Contact, error) {
	c := &models.Contact{}
	var status string
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Subject, &c.Message,
		&status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.Status = models.ContactStatus(status)
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

func (r *PostgresRepository) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	if contact.ID == "" {
		contact.ID = uuid.NewString()
	}
	if contact.Status == "" {
		contact.Status = models.ContactNew
	}

	query :=
		`INSERT INTO contacts (id, name, email, phone, company, subject, message, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING ` + contactColumns

	c, err := scanContact(r.db.QueryRowContext(ctx, query,
		contact.ID, contact.Name, contact.Email, contact.Phone, contact.Company,
		contact.Subject, contact.Message, string(contact.Status)))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Contact, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
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

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status models.ContactStatus) (*models.Contact, error) {
	query := `UPDATE contacts SET status = $2, updated_at = now() WHERE id = $1 RETURNING ` + contactColumns

	c, err := scanContact(r.db.QueryRowContext(ctx, query, id, string(status)))
	if err != nil {
		return nil, wrapErr(err)
	}
	return c, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = $1`, id)
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
