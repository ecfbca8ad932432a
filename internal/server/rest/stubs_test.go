package rest

import (
	"context"
	"encoding/json"

	"github.com/upeosoft/cms/internal/common"
	"github.com/upeosoft/cms/internal/server/auth"
	"github.com/upeosoft/cms/internal/server/models"
	"github.com/upeosoft/cms/internal/server/services"
)

// Function-field stubs. Unset fields answer NotFound.

type stubUsers struct {
	RegisterFunc       func(ctx context.Context, in services.NewUser) (*services.AuthResult, error)
	LoginFunc          func(ctx context.Context, login, password string) (*services.AuthResult, error)
	ProfileFunc        func(ctx context.Context, userID string) (*models.User, error)
	UpdateProfileFunc  func(ctx context.Context, userID string, upd services.ProfileUpdate) (*models.User, error)
	ChangePasswordFunc func(ctx context.Context, userID, current, next string) error
	ListFunc           func(ctx context.Context) ([]*models.User, error)
	UpdateRoleFunc     func(ctx context.Context, actorID, targetID, role string) (*models.User, error)
	ActivateFunc       func(ctx context.Context, actorID, targetID string) (*models.User, error)
	DeactivateFunc     func(ctx context.Context, actorID, targetID string) (*models.User, error)
	ToggleActiveFunc   func(ctx context.Context, actorID, targetID string) (*models.User, error)
}

func (s *stubUsers) Register(ctx context.Context, in services.NewUser) (*services.AuthResult, error) {
	if s.RegisterFunc == nil {
		return nil, common.ErrorNotFound
	}
	return s.RegisterFunc(ctx, in)
}

func (s *stubUsers) Login(ctx context.Context, login, password string) (*services.AuthResult, error) {
	if s.LoginFunc == nil {
		return nil, common.ErrorNotFound
	}
	return s.LoginFunc(ctx, login, password)
}

func (s *stubUsers) Profile(ctx context.Context, userID string) (*models.User, error) {
	if s.ProfileFunc == nil {
		return nil, common.ErrorNotFound
	}
	return s.ProfileFunc(ctx, userID)
}

func (s *stubUsers) UpdateProfile(ctx context.Context, userID string, upd services.ProfileUpdate) (*models.User, error) {
	if s.UpdateProfileFunc == nil {
		return nil, common.ErrorNotFound
	}
	return s.UpdateProfileFunc(ctx, userID, upd)
}

func (s *stubUsers) ChangePassword(ctx context.Context, userID, current, next string) error {
	if s.ChangePasswordFunc == nil {
		return common.ErrorNotFound
	}
	return s.ChangePasswordFunc(ctx, userID, current, next)
}

func (s *stubUsers) List(ctx context.Context) ([]*models.User, error) {
	if s.ListFunc == nil {
		return nil, common.ErrorNotFound
	}
	return s.ListFunc(ctx)
}

func (s *stubUsers) UpdateRole(ctx context.Context, actorID, targetID, role string) (*models.User, error) {
	if s.UpdateRoleFunc == nil {
		return nil, common.ErrorNotFound
	}
	return s.UpdateRoleFunc(ctx, actorID, targetID, role)
}

func (s *stubUsers) Activate(ctx context.Context, actorID, targetID string) (*models.User, error) {
	if s.ActivateFunc == nil {
		return nil, common.ErrorNotFound
	}
	return s.ActivateFunc(ctx, actorID, targetID)
}

func (s *stubUsers) Deactivate(ctx context.Context, actorID, targetID string) (*models.User, error) {
	if s.DeactivateFunc == nil {
		return nil, common.ErrorNotFound
	}
	return s.DeactivateFunc(ctx, actorID, targetID)
}

func (s *stubUsers) ToggleActive(ctx context.Context, actorID, targetID string) (*models.User, error) {
	if s.ToggleActiveFunc == nil {
		return nil, common.ErrorNotFound
	}
	return s.ToggleActiveFunc(ctx, actorID, targetID)
}

// stubContent records the last call so tests can assert routing.
type stubContent struct {
	calls []string
	err   error
}

func (s *stubContent) record(call string, args ...string) {
	for _, a := range args {
		call += " " + a
	}
	s.calls = append(s.calls, call)
}

func (s *stubContent) last() string {
	if len(s.calls) == 0 {
		return ""
	}
	return s.calls[len(s.calls)-1]
}

func (s *stubContent) doc(collection, id string) *models.Document {
	return &models.Document{ID: id, Collection: collection, Published: true, Data: json.RawMessage(`{"title":"Hello"}`)}
}

func (s *stubContent) List(_ context.Context, collection string) ([]*models.Document, error) {
	s.record("List", collection)
	if s.err != nil {
		return nil, s.err
	}
	return []*models.Document{s.doc(collection, "d1"), s.doc(collection, "d2")}, nil
}

func (s *stubContent) Get(_ context.Context, collection, id string) (*models.Document, error) {
	s.record("Get", collection, id)
	if s.err != nil {
		return nil, s.err
	}
	return s.doc(collection, id), nil
}

func (s *stubContent) GetBySlug(_ context.Context, collection, slug string) (*models.Document, error) {
	s.record("GetBySlug", collection, slug)
	if s.err != nil {
		return nil, s.err
	}
	return s.doc(collection, "d1"), nil
}

func (s *stubContent) Create(_ context.Context, collection string, p auth.Principal, _ json.RawMessage) (*models.Document, error) {
	s.record("Create", collection, p.SubjectID)
	if s.err != nil {
		return nil, s.err
	}
	return s.doc(collection, "new"), nil
}

func (s *stubContent) Update(_ context.Context, collection string, p auth.Principal, id string, _ json.RawMessage) (*models.Document, error) {
	s.record("Update", collection, p.SubjectID, id)
	if s.err != nil {
		return nil, s.err
	}
	return s.doc(collection, id), nil
}

func (s *stubContent) Delete(_ context.Context, collection, id string) error {
	s.record("Delete", collection, id)
	return s.err
}

func (s *stubContent) TogglePublished(_ context.Context, collection, id string) (*models.Document, error) {
	s.record("TogglePublished", collection, id)
	if s.err != nil {
		return nil, s.err
	}
	return s.doc(collection, id), nil
}

func (s *stubContent) About(context.Context) (*models.Document, error) {
	s.record("About")
	if s.err != nil {
		return nil, s.err
	}
	return s.doc(models.CollectionAbout, "a1"), nil
}

func (s *stubContent) UpdateAbout(_ context.Context, content, _ string) (*models.Document, error) {
	s.record("UpdateAbout", content)
	if s.err != nil {
		return nil, s.err
	}
	return s.doc(models.CollectionAbout, "a1"), nil
}

func (s *stubContent) Home(context.Context) (*services.HomePage, error) {
	s.record("Home")
	if s.err != nil {
		return nil, s.err
	}
	return &services.HomePage{
		FeaturedProducts: services.Section{Title: "Featured Products", Items: []*models.Document{s.doc(models.CollectionProducts, "p1")}},
		Stats:            services.HomeStats{Projects: 1, HappyClients: 50},
	}, nil
}

func (s *stubContent) Featured(context.Context) (*services.Featured, error) {
	s.record("Featured")
	if s.err != nil {
		return nil, s.err
	}
	return &services.Featured{
		Products: []*models.Document{s.doc(models.CollectionProducts, "p1")},
		Services: []*models.Document{},
		Insights: []*models.Document{},
	}, nil
}

func (s *stubContent) Stats(context.Context) (*services.HomeStats, error) {
	s.record("Stats")
	if s.err != nil {
		return nil, s.err
	}
	return &services.HomeStats{Projects: 1, Services: 2, BlogPosts: 3, HappyClients: 50}, nil
}

type stubContacts struct {
	submitted []models.Contact
	status    string
}

func (s *stubContacts) Submit(_ context.Context, c models.Contact) (*models.Contact, error) {
	s.submitted = append(s.submitted, c)
	c.ID = "c1"
	c.Status = models.ContactNew
	return &c, nil
}

func (s *stubContacts) List(context.Context) ([]*models.Contact, error) {
	return []*models.Contact{}, nil
}

func (s *stubContacts) UpdateStatus(_ context.Context, id, status string) (*models.Contact, error) {
	st, err := models.ParseContactStatus(status)
	if err != nil {
		return nil, common.ErrorValidation
	}
	s.status = status
	return &models.Contact{ID: id, Status: st}, nil
}

func (s *stubContacts) Delete(context.Context, string) error { return nil }

type stubComments struct {
	author string
}

func (s *stubComments) Create(_ context.Context, p auth.Principal, postID, content string) (*models.Comment, error) {
	s.author = p.SubjectID
	return &models.Comment{ID: "cm1", PostID: postID, AuthorID: p.SubjectID, Content: content}, nil
}

func (s *stubComments) ListForPost(_ context.Context, postID string) ([]*models.Comment, error) {
	return []*models.Comment{{ID: "cm1", PostID: postID, Approved: true}}, nil
}

func (s *stubComments) Approve(_ context.Context, id string) (*models.Comment, error) {
	return &models.Comment{ID: id, Approved: true}, nil
}

func (s *stubComments) Delete(context.Context, string) error { return nil }
