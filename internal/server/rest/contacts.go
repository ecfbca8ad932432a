package rest

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upeosoft/cms/internal/logging"
	"github.com/upeosoft/cms/internal/server/models"
)

type ContactService interface {
	Submit(ctx context.Context, c models.Contact) (*models.Contact, error)
	List(ctx context.Context) ([]*models.Contact, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Contact, error)
	Delete(ctx context.Context, id string) error
}

type contactHandler struct {
	svc ContactService
	log logging.Logger
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (h *contactHandler) submit(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	c, err := h.svc.Submit(r.Context(), models.Contact{
		Name: req.Name, Email: req.Email, Phone: req.Phone, Company: req.Company,
		Subject: req.Subject, Message: req.Message,
	})
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": "thank you for contacting us, we will get back to you soon",
		"data":    c,
	})
}

func (h *contactHandler) list(w http.ResponseWriter, r *http.Request) {
	cs, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "count": len(cs), "data": cs})
}

type contactStatusRequest struct {
	Status string `json:"status"`
}

func (h *contactHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req contactStatusRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	c, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "message": "contact status updated successfully", "data": c})
}

func (h *contactHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "message": "contact deleted successfully"})
}
