package rest

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upeosoft/cms/internal/logging"
	"github.com/upeosoft/cms/internal/server/auth"
	"github.com/upeosoft/cms/internal/server/models"
)

type CommentService interface {
	Create(ctx context.Context, p auth.Principal, postID, content string) (*models.Comment, error)
	ListForPost(ctx context.Context, postID string) ([]*models.Comment, error)
	Approve(ctx context.Context, id string) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
}

type commentHandler struct {
	svc CommentService
	log logging.Logger
}

type commentRequest struct {
	Content string `json:"content"`
	PostID  string `json:"postId"`
}

func (h *commentHandler) create(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	c, err := h.svc.Create(r.Context(), principal(r), req.PostID, req.Content)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{"success": true, "message": "comment created", "data": c})
}

func (h *commentHandler) listForPost(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.ListForPost(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "count": len(cs), "data": cs})
}

func (h *commentHandler) approve(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "message": "comment approved", "data": c})
}

func (h *commentHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "message": "comment deleted"})
}
