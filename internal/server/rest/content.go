package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upeosoft/cms/internal/logging"
	"github.com/upeosoft/cms/internal/server/auth"
	"github.com/upeosoft/cms/internal/server/models"
	"github.com/upeosoft/cms/internal/server/services"
)

// ContentService is the document API used by the content handlers.
type ContentService interface {
	List(ctx context.Context, collection string) ([]*models.Document, error)
	Get(ctx context.Context, collection, id string) (*models.Document, error)
	GetBySlug(ctx context.Context, collection, slug string) (*models.Document, error)
	Create(ctx context.Context, collection string, p auth.Principal, body json.RawMessage) (*models.Document, error)
	Update(ctx context.Context, collection string, p auth.Principal, id string, body json.RawMessage) (*models.Document, error)
	Delete(ctx context.Context, collection, id string) error
	TogglePublished(ctx context.Context, collection, id string) (*models.Document, error)
	About(ctx context.Context) (*models.Document, error)
	UpdateAbout(ctx context.Context, content, image string) (*models.Document, error)
	Home(ctx context.Context) (*services.HomePage, error)
	Featured(ctx context.Context) (*services.Featured, error)
	Stats(ctx context.Context) (*services.HomeStats, error)
}

type contentHandler struct {
	svc ContentService
	log logging.Logger
}

// mount registers the routes of one collection. The {ref} segment is a slug
// on collections looked up by slug and an id everywhere else.
func (h *contentHandler) mount(r chi.Router, g *Guard, c services.Collection) {
	write := auth.AdminOnly
	if c.AuthorOwned {
		write = auth.Authenticated
	}

	r.Route("/"+c.Name, func(r chi.Router) {
		r.Get("/", h.list(c.Name))
		if c.BySlug {
			r.Get("/{ref}", h.getBySlug(c.Name))
		} else {
			r.Get("/{ref}", h.get(c.Name))
		}

		r.With(g.Require(write)).Post("/", h.create(c.Name))
		r.With(g.Require(write)).Put("/{ref}", h.update(c.Name))
		r.With(g.Require(auth.AdminOnly)).Delete("/{ref}", h.delete(c.Name))
		if c.Draftable {
			r.With(g.Require(auth.AdminOnly)).Patch("/{ref}/publish", h.togglePublished(c.Name))
		}
	})
}

func (h *contentHandler) list(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := h.svc.List(r.Context(), collection)
		if err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}
		writeJSON(w, http.StatusOK, envelope{"success": true, "count": len(docs), "data": docs})
	}
}

func (h *contentHandler) get(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := h.svc.Get(r.Context(), collection, chi.URLParam(r, "ref"))
		if err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}
		writeJSON(w, http.StatusOK, envelope{"success": true, "data": d})
	}
}

func (h *contentHandler) getBySlug(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := h.svc.GetBySlug(r.Context(), collection, chi.URLParam(r, "ref"))
		if err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}
		writeJSON(w, http.StatusOK, envelope{"success": true, "data": d})
	}
}

func (h *contentHandler) create(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readRaw(w, r)
		if err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}
		d, err := h.svc.Create(r.Context(), collection, principal(r), body)
		if err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}
		writeJSON(w, http.StatusCreated, envelope{"success": true, "message": "created successfully", "data": d})
	}
}

func (h *contentHandler) update(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readRaw(w, r)
		if err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}
		d, err := h.svc.Update(r.Context(), collection, principal(r), chi.URLParam(r, "ref"), body)
		if err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}
		writeJSON(w, http.StatusOK, envelope{"success": true, "message": "updated successfully", "data": d})
	}
}

func (h *contentHandler) delete(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.svc.Delete(r.Context(), collection, chi.URLParam(r, "ref")); err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}
		writeJSON(w, http.StatusOK, envelope{"success": true, "message": "deleted successfully"})
	}
}

func (h *contentHandler) togglePublished(collection string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := h.svc.TogglePublished(r.Context(), collection, chi.URLParam(r, "ref"))
		if err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}
		msg := "unpublished successfully"
		if d.Published {
			msg = "published successfully"
		}
		writeJSON(w, http.StatusOK, envelope{"success": true, "message": msg, "data": d})
	}
}

func (h *contentHandler) about(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.About(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "data": d})
}

type aboutRequest struct {
	Content string `json:"content"`
	Image   string `json:"image"`
}

func (h *contentHandler) updateAbout(w http.ResponseWriter, r *http.Request) {
	var req aboutRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	d, err := h.svc.UpdateAbout(r.Context(), req.Content, req.Image)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "data": d})
}

func (h *contentHandler) home(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Home(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "message": "Homepage data retrieved successfully", "data": page})
}

func (h *contentHandler) featured(w http.ResponseWriter, r *http.Request) {
	f, err := h.svc.Featured(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "data": f})
}

func (h *contentHandler) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "data": st})
}
