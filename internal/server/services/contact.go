package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/upeosoft/cms/internal/logging"
	"github.com/upeosoft/cms/internal/server/models"
	"github.com/upeosoft/cms/internal/server/repositories/repomanager"
)

// ContactService handles messages from the public contact form.
type ContactService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewContactService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *ContactService {
	return &ContactService{db: db, repomanager: m, log: log.With("component", "contacts")}
}

// Submit stores a new contact request with status "new".
func (s *ContactService) Submit(ctx context.Context, c models.Contact) (*models.Contact, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = normalizeEmail(c.Email)
	c.Subject = strings.TrimSpace(c.Subject)
	c.Message = strings.TrimSpace(c.Message)

	if c.Name == "" || c.Email == "" || c.Subject == "" || c.Message == "" {
		return nil, validationErr("please provide name, email, subject and message")
	}
	if err := validateEmail(c.Email); err != nil {
		return nil, err
	}
	c.ID = ""
	c.Status = models.ContactNew

	out, err := s.repomanager.Contacts(s.db).Create(ctx, &c)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "contact submitted", "id", out.ID)
	return out, nil
}

func (s *ContactService) List(ctx context.Context) ([]*models.Contact, error) {
	return s.repomanager.Contacts(s.db).List(ctx)
}

// UpdateStatus moves a contact along the pipeline.
func (s *ContactService) UpdateStatus(ctx context.Context, id, status string) (*models.Contact, error) {
	if status == "" {
		return nil, validationErr("please provide status")
	}
	st, err := models.ParseContactStatus(status)
	if err != nil {
		return nil, validationErr("invalid status")
	}
	return s.repomanager.Contacts(s.db).UpdateStatus(ctx, id, st)
}

func (s *ContactService) Delete(ctx context.Context, id string) error {
	return s.repomanager.Contacts(s.db).Delete(ctx, id)
}
