package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/upeosoft/cms/internal/common"
	"github.com/upeosoft/cms/internal/dbx"
	"github.com/upeosoft/cms/internal/logging"
	"github.com/upeosoft/cms/internal/server/auth"
	"github.com/upeosoft/cms/internal/server/models"
	"github.com/upeosoft/cms/internal/server/repositories/repomanager"
)

// Collection describes how documents of one content collection behave.
type Collection struct {
	Name string
	// Slugged documents carry a slug unique within the collection, taken
	// from the body or derived from SlugSource.
	Slugged    bool
	SlugSource string
	// BySlug exposes the public lookup by slug instead of by id.
	BySlug bool
	// Draftable documents start unpublished and public listings hide drafts.
	// PublishField is the body key that carries the state.
	Draftable    bool
	PublishField string
	// AuthorOwned documents record their creator, who may edit them.
	AuthorOwned bool
	Required    []string
}

// Collections served by the content API.
var Collections = map[string]Collection{
	models.CollectionServices: {
		Name: models.CollectionServices, Slugged: true, SlugSource: "title", BySlug: true,
		Required: []string{"title", "description"},
	},
	models.CollectionProducts: {
		Name: models.CollectionProducts, Slugged: true, SlugSource: "name", BySlug: true,
		Required: []string{"name", "description"},
	},
	models.CollectionInsights: {
		Name: models.CollectionInsights, Slugged: true, SlugSource: "title", BySlug: true,
		Draftable: true, PublishField: "isPublished",
		Required: []string{"title", "excerpt", "content"},
	},
	models.CollectionCards: {
		Name:     models.CollectionCards,
		Required: []string{"title", "description"},
	},
	models.CollectionPosts: {
		Name: models.CollectionPosts, Slugged: true, SlugSource: "title",
		Draftable: true, PublishField: "status", AuthorOwned: true,
		Required: []string{"title", "content"},
	},
}

// fields managed by the server and never stored in the document body.
var managedFields = []string{"id", "_id", "slug", "published", "author", "createdAt", "updatedAt"}

const aboutSlug = "about"

// ContentService implements CRUD over the document collections and the
// About singleton.
type ContentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewContentService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *ContentService {
	return &ContentService{db: db, repomanager: m, log: log.With("component", "content")}
}

func lookup(name string) (Collection, error) {
	c, ok := Collections[name]
	if !ok {
		return Collection{}, fmt.Errorf("%w: collection %q", common.ErrorNotFound, name)
	}
	return c, nil
}

// List returns a collection newest first. Drafts are hidden from draftable
// collections.
func (s *ContentService) List(ctx context.Context, collection string) ([]*models.Document, error) {
	c, err := lookup(collection)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Documents(s.db).List(ctx, c.Name, c.Draftable)
}

// Get returns one document by id. Drafts are not public.
func (s *ContentService) Get(ctx context.Context, collection, id string) (*models.Document, error) {
	c, err := lookup(collection)
	if err != nil {
		return nil, err
	}
	d, err := s.repomanager.Documents(s.db).GetByID(ctx, c.Name, id)
	if err != nil {
		return nil, err
	}
	if c.Draftable && !d.Published {
		return nil, common.ErrorNotFound
	}
	return d, nil
}

// GetBySlug returns one published document by slug.
func (s *ContentService) GetBySlug(ctx context.Context, collection, slug string) (*models.Document, error) {
	c, err := lookup(collection)
	if err != nil {
		return nil, err
	}
	if !c.BySlug {
		return nil, common.ErrorNotFound
	}
	d, err := s.repomanager.Documents(s.db).GetBySlug(ctx, c.Name, slug)
	if err != nil {
		return nil, err
	}
	if c.Draftable && !d.Published {
		return nil, common.ErrorNotFound
	}
	return d, nil
}

// Create stores a new document from body, which must be a JSON object.
func (s *ContentService) Create(ctx context.Context, collection string, p auth.Principal, body json.RawMessage) (*models.Document, error) {
	c, err := lookup(collection)
	if err != nil {
		return nil, err
	}

	fields, err := decodeObject(body)
	if err != nil {
		return nil, err
	}
	for _, k := range c.Required {
		if !present(fields[k]) {
			return nil, validationErr(fmt.Sprintf("%s is required", k))
		}
	}

	doc := &models.Document{Collection: c.Name}
	if c.Slugged {
		if doc.Slug, err = slugFor(c, fields); err != nil {
			return nil, err
		}
	}
	doc.Published = publishedFrom(c, fields, false)
	if c.AuthorOwned {
		doc.AuthorID = p.SubjectID
	}
	if doc.Data, err = encodeBody(fields); err != nil {
		return nil, err
	}

	d, err := s.repomanager.Documents(s.db).Create(ctx, doc)
	if err != nil {
		return nil, slugConflict(err)
	}
	s.log.Info(ctx, "document created", "collection", c.Name, "id", d.ID, "by", p.SubjectID)
	return d, nil
}

// Update merges body into an existing document. On author-owned collections
// only the author or an admin may edit.
func (s *ContentService) Update(ctx context.Context, collection string, p auth.Principal, id string, body json.RawMessage) (*models.Document, error) {
	c, err := lookup(collection)
	if err != nil {
		return nil, err
	}
	patch, err := decodeObject(body)
	if err != nil {
		return nil, err
	}

	var out *models.Document
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Documents(tx)

		doc, err := repo.GetByID(ctx, c.Name, id)
		if err != nil {
			return err
		}
		if c.AuthorOwned && p.Role != auth.RoleAdmin && doc.AuthorID != p.SubjectID {
			return common.ErrNotOwner
		}

		fields, err := decodeObject(doc.Data)
		if err != nil {
			return fmt.Errorf("stored document %s: %w", doc.ID, err)
		}
		for k, v := range patch {
			fields[k] = v
		}
		for _, k := range c.Required {
			if !present(fields[k]) {
				return validationErr(fmt.Sprintf("%s is required", k))
			}
		}

		if c.Slugged {
			if _, explicit := patch["slug"]; explicit || patch[c.SlugSource] != nil {
				if doc.Slug, err = slugFor(c, fields); err != nil {
					return err
				}
			}
		}
		doc.Published = publishedFrom(c, fields, doc.Published)
		if doc.Data, err = encodeBody(fields); err != nil {
			return err
		}

		out, err = repo.Update(ctx, doc)
		return slugConflict(err)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "document updated", "collection", c.Name, "id", id, "by", p.SubjectID)
	return out, nil
}

// Delete removes a document.
func (s *ContentService) Delete(ctx context.Context, collection, id string) error {
	c, err := lookup(collection)
	if err != nil {
		return err
	}
	if err := s.repomanager.Documents(s.db).Delete(ctx, c.Name, id); err != nil {
		return err
	}
	s.log.Info(ctx, "document deleted", "collection", c.Name, "id", id)
	return nil
}

// TogglePublished flips the publication state of a draftable document and
// keeps its body field in step.
func (s *ContentService) TogglePublished(ctx context.Context, collection, id string) (*models.Document, error) {
	c, err := lookup(collection)
	if err != nil {
		return nil, err
	}
	if !c.Draftable {
		return nil, validationErr(fmt.Sprintf("%s cannot be published", c.Name))
	}

	var out *models.Document
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Documents(tx)

		doc, err := repo.GetByID(ctx, c.Name, id)
		if err != nil {
			return err
		}
		fields, err := decodeObject(doc.Data)
		if err != nil {
			return fmt.Errorf("stored document %s: %w", doc.ID, err)
		}

		doc.Published = !doc.Published
		setPublished(c, fields, doc.Published)
		if doc.Data, err = encodeBody(fields); err != nil {
			return err
		}

		out, err = repo.Update(ctx, doc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// About returns the About page.
func (s *ContentService) About(ctx context.Context) (*models.Document, error) {
	return s.repomanager.Documents(s.db).GetBySlug(ctx, models.CollectionAbout, aboutSlug)
}

// UpdateAbout creates or replaces the About page.
func (s *ContentService) UpdateAbout(ctx context.Context, content, image string) (*models.Document, error) {
	if strings.TrimSpace(content) == "" {
		return nil, validationErr("content is required")
	}
	data, err := json.Marshal(map[string]string{"content": content, "image": image})
	if err != nil {
		return nil, err
	}
	return s.repomanager.Documents(s.db).UpsertBySlug(ctx, &models.Document{
		Collection: models.CollectionAbout,
		Slug:       aboutSlug,
		Published:  true,
		Data:       data,
	})
}

// --- helpers below ---

func decodeObject(b json.RawMessage) (map[string]any, error) {
	fields := map[string]any{}
	if len(b) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(b, &fields); err != nil || fields == nil {
		return nil, validationErr("body must be a JSON object")
	}
	return fields, nil
}

func encodeBody(fields map[string]any) (json.RawMessage, error) {
	for _, k := range managedFields {
		delete(fields, k)
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return b, nil
}

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	default:
		return true
	}
}

func slugFor(c Collection, fields map[string]any) (string, error) {
	src, _ := fields["slug"].(string)
	if strings.TrimSpace(src) == "" {
		src, _ = fields[c.SlugSource].(string)
	}
	slug := Slugify(src)
	if slug == "" {
		return "", validationErr(fmt.Sprintf("slug or %s is required", c.SlugSource))
	}
	return slug, nil
}

func publishedFrom(c Collection, fields map[string]any, current bool) bool {
	if !c.Draftable {
		return true
	}
	switch v := fields[c.PublishField].(type) {
	case bool:
		return v
	case string:
		return v == "published"
	default:
		return current
	}
}

func setPublished(c Collection, fields map[string]any, published bool) {
	switch c.PublishField {
	case "status":
		if published {
			fields["status"] = "published"
		} else {
			fields["status"] = "draft"
		}
	case "":
	default:
		fields[c.PublishField] = published
	}
}

func slugConflict(err error) error {
	if errors.Is(err, common.ErrorAlreadyExists) {
		return validationErr("a document with this slug already exists")
	}
	return err
}
