package repomanager

import (
	"context"
	"database/sql"

	"github.com/upeosoft/cms/internal/dbx"
	"github.com/upeosoft/cms/internal/server/repositories/comments"
	"github.com/upeosoft/cms/internal/server/repositories/contacts"
	"github.com/upeosoft/cms/internal/server/repositories/documents"
	"github.com/upeosoft/cms/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Documents(db dbx.DBTX) documents.Repository
	Contacts(db dbx.DBTX) contacts.Repository
	Comments(db dbx.DBTX) comments.Repository
}
