package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/upeosoft/cms/internal/common"
	"github.com/upeosoft/cms/internal/dbx"
	"github.com/upeosoft/cms/internal/logging"
	"github.com/upeosoft/cms/internal/server/auth"
	"github.com/upeosoft/cms/internal/server/models"
	"github.com/upeosoft/cms/internal/server/repositories/comments"
	"github.com/upeosoft/cms/internal/server/repositories/contacts"
	"github.com/upeosoft/cms/internal/server/repositories/documents"
	"github.com/upeosoft/cms/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("sql expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

func newHasher(t *testing.T) *auth.Hasher {
	t.Helper()
	h, err := auth.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func newAuthority(t *testing.T) *auth.TokenAuthority {
	t.Helper()
	a, err := auth.NewTokenAuthority("test-secret", time.Hour)
	require.NoError(t, err)
	return a
}

var clock = time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

func tick() time.Time {
	clock = clock.Add(time.Second)
	return clock
}

// --- fake repositories ---

type fakeUsersRepo struct {
	mu    sync.Mutex
	byID  map[string]*models.User
	seq   int
	err   error
	calls []string
}

func newFakeUsers() *fakeUsersRepo { return &fakeUsersRepo{byID: map[string]*models.User{}} }

func (f *fakeUsersRepo) record(op string) error {
	f.calls = append(f.calls, op)
	return f.err
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Create"); err != nil {
		return nil, err
	}
	for _, x := range f.byID {
		if x.Username == u.Username || x.Email == u.Email {
			return nil, fmt.Errorf("%w: users_email_key", common.ErrorAlreadyExists)
		}
	}
	f.seq++
	c := *u
	c.ID = fmt.Sprintf("u-%d", f.seq)
	c.CreatedAt = tick()
	c.UpdatedAt = c.CreatedAt
	f.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeUsersRepo) get(id string) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetByID"); err != nil {
		return nil, err
	}
	return f.get(id)
}

func (f *fakeUsersRepo) GetByIDForUpdate(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetByIDForUpdate"); err != nil {
		return nil, err
	}
	return f.get(id)
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return f.find("GetByEmail", func(u *models.User) bool { return u.Email == email })
}

func (f *fakeUsersRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return f.find("GetByUsername", func(u *models.User) bool { return u.Username == username })
}

func (f *fakeUsersRepo) find(op string, match func(*models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(op); err != nil {
		return nil, err
	}
	for _, u := range f.byID {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) List(context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("List"); err != nil {
		return nil, err
	}
	out := make([]*models.User, 0, len(f.byID))
	for _, u := range f.byID {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeUsersRepo) update(id string, fn func(u *models.User)) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	fn(u)
	u.UpdatedAt = tick()
	c := *u
	return &c, nil
}

func (f *fakeUsersRepo) UpdateProfile(_ context.Context, in *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateProfile"); err != nil {
		return nil, err
	}
	for _, x := range f.byID {
		if x.ID != in.ID && (x.Username == in.Username || x.Email == in.Email) {
			return nil, common.ErrorAlreadyExists
		}
	}
	return f.update(in.ID, func(u *models.User) {
		u.Username, u.Email, u.Profile = in.Username, in.Email, in.Profile
	})
}

func (f *fakeUsersRepo) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdatePassword"); err != nil {
		return err
	}
	_, err := f.update(id, func(u *models.User) { u.PasswordHash = hash })
	return err
}

func (f *fakeUsersRepo) UpdateRole(_ context.Context, id string, role auth.Role) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdateRole"); err != nil {
		return nil, err
	}
	return f.update(id, func(u *models.User) { u.Role = role })
}

func (f *fakeUsersRepo) SetActive(_ context.Context, id string, active bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetActive"); err != nil {
		return nil, err
	}
	return f.update(id, func(u *models.User) { u.IsActive = active })
}

func (f *fakeUsersRepo) ToggleActive(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ToggleActive"); err != nil {
		return nil, err
	}
	return f.update(id, func(u *models.User) { u.IsActive = !u.IsActive })
}

type fakeDocsRepo struct {
	mu   sync.Mutex
	byID map[string]*models.Document
	seq  int
	err  error
}

func newFakeDocs() *fakeDocsRepo { return &fakeDocsRepo{byID: map[string]*models.Document{}} }

func (f *fakeDocsRepo) slugTaken(d *models.Document) bool {
	if d.Slug == "" {
		return false
	}
	for _, x := range f.byID {
		if x.ID != d.ID && x.Collection == d.Collection && x.Slug == d.Slug {
			return true
		}
	}
	return false
}

func (f *fakeDocsRepo) Create(_ context.Context, d *models.Document) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.slugTaken(d) {
		return nil, fmt.Errorf("%w: documents_collection_slug_key", common.ErrorAlreadyExists)
	}
	f.seq++
	c := *d
	c.ID = fmt.Sprintf("d-%d", f.seq)
	c.CreatedAt = tick()
	c.UpdatedAt = c.CreatedAt
	f.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeDocsRepo) GetByID(_ context.Context, collection, id string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.byID[id]
	if !ok || d.Collection != collection {
		return nil, common.ErrorNotFound
	}
	c := *d
	return &c, nil
}

func (f *fakeDocsRepo) GetBySlug(_ context.Context, collection, slug string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, d := range f.byID {
		if d.Collection == collection && d.Slug == slug {
			c := *d
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeDocsRepo) List(_ context.Context, collection string, publishedOnly bool) ([]*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*models.Document, 0)
	for _, d := range f.byID {
		if d.Collection == collection && (d.Published || !publishedOnly) {
			c := *d
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeDocsRepo) Update(_ context.Context, d *models.Document) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	cur, ok := f.byID[d.ID]
	if !ok || cur.Collection != d.Collection {
		return nil, common.ErrorNotFound
	}
	if f.slugTaken(d) {
		return nil, common.ErrorAlreadyExists
	}
	cur.Slug, cur.Published, cur.Data, cur.UpdatedAt = d.Slug, d.Published, d.Data, tick()
	c := *cur
	return &c, nil
}

func (f *fakeDocsRepo) UpsertBySlug(_ context.Context, d *models.Document) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, cur := range f.byID {
		if cur.Collection == d.Collection && cur.Slug == d.Slug {
			cur.Data, cur.Published, cur.UpdatedAt = d.Data, d.Published, tick()
			c := *cur
			return &c, nil
		}
	}
	f.seq++
	c := *d
	c.ID = fmt.Sprintf("d-%d", f.seq)
	c.CreatedAt = tick()
	f.byID[c.ID] = &c
	out := c
	return &out, nil
}

func (f *fakeDocsRepo) Delete(_ context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	d, ok := f.byID[id]
	if !ok || d.Collection != collection {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeDocsRepo) data(t *testing.T, id string) map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var m map[string]any
	require.NoError(t, json.Unmarshal(f.byID[id].Data, &m))
	return m
}

type fakeContactsRepo struct {
	created  []*models.Contact
	statuses map[string]models.ContactStatus
	err      error
}

func (f *fakeContactsRepo) Create(_ context.Context, c *models.Contact) (*models.Contact, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := *c
	out.ID = fmt.Sprintf("c-%d", len(f.created)+1)
	f.created = append(f.created, &out)
	return &out, nil
}

func (f *fakeContactsRepo) List(context.Context) ([]*models.Contact, error) {
	return f.created, f.err
}

func (f *fakeContactsRepo) UpdateStatus(_ context.Context, id string, st models.ContactStatus) (*models.Contact, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.statuses == nil {
		f.statuses = map[string]models.ContactStatus{}
	}
	f.statuses[id] = st
	return &models.Contact{ID: id, Status: st}, nil
}

func (f *fakeContactsRepo) Delete(context.Context, string) error { return f.err }

type fakeCommentsRepo struct {
	created  []*models.Comment
	approved []string
	err      error
}

func (f *fakeCommentsRepo) Create(_ context.Context, c *models.Comment) (*models.Comment, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := *c
	out.ID = fmt.Sprintf("k-%d", len(f.created)+1)
	f.created = append(f.created, &out)
	return &out, nil
}

func (f *fakeCommentsRepo) ListApprovedByPost(_ context.Context, postID string) ([]*models.Comment, error) {
	out := make([]*models.Comment, 0)
	for _, c := range f.created {
		if c.PostID == postID && c.Approved {
			out = append(out, c)
		}
	}
	return out, f.err
}

func (f *fakeCommentsRepo) Approve(_ context.Context, id string) (*models.Comment, error) {
	for _, c := range f.created {
		if c.ID == id {
			c.Approved = true
			f.approved = append(f.approved, id)
			return c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeCommentsRepo) Delete(context.Context, string) error { return f.err }

type fakeRepoManager struct {
	u  *fakeUsersRepo
	d  *fakeDocsRepo
	c  *fakeContactsRepo
	cm *fakeCommentsRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u:  newFakeUsers(),
		d:  newFakeDocs(),
		c:  &fakeContactsRepo{},
		cm: &fakeCommentsRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository              { return m.u }
func (m *fakeRepoManager) Documents(dbx.DBTX) documents.Repository      { return m.d }
func (m *fakeRepoManager) Contacts(dbx.DBTX) contacts.Repository        { return m.c }
func (m *fakeRepoManager) Comments(dbx.DBTX) comments.Repository        { return m.cm }

var nopLog = logging.Nop()
