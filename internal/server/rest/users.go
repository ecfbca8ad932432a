package rest

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/upeosoft/cms/internal/logging"
	"github.com/upeosoft/cms/internal/server/models"
	"github.com/upeosoft/cms/internal/server/services"
)

// UserService is the account API used by the user handlers.
type UserService interface {
	Register(ctx context.Context, in services.NewUser) (*services.AuthResult, error)
	Login(ctx context.Context, login, password string) (*services.AuthResult, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, upd services.ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
	List(ctx context.Context) ([]*models.User, error)
	UpdateRole(ctx context.Context, actorID, targetID, role string) (*models.User, error)
	Activate(ctx context.Context, actorID, targetID string) (*models.User, error)
	Deactivate(ctx context.Context, actorID, targetID string) (*models.User, error)
	ToggleActive(ctx context.Context, actorID, targetID string) (*models.User, error)
}

type userHandler struct {
	svc UserService
	log logging.Logger
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (h *userHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	res, err := h.svc.Register(r.Context(), services.NewUser{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Profile:  models.Profile{FirstName: req.FirstName, LastName: req.LastName},
	})
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": "user registered successfully",
		"token":   res.Token,
		"user":    res.User,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *userHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	login := req.Email
	if login == "" {
		login = req.Username
	}

	res, err := h.svc.Login(r.Context(), login, req.Password)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "login successful",
		"token":   res.Token,
		"user":    res.User,
	})
}

func (h *userHandler) profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.Profile(r.Context(), principal(r).SubjectID)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "user": u})
}

type profileRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Bio       *string `json:"bio"`
	Phone     *string `json:"phone"`
	Avatar    *string `json:"avatar"`
}

func (h *userHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	u, err := h.svc.UpdateProfile(r.Context(), principal(r).SubjectID, services.ProfileUpdate{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Phone:     req.Phone,
		Avatar:    req.Avatar,
	})
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "message": "profile updated successfully", "user": u})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *userHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	if err := h.svc.ChangePassword(r.Context(), principal(r).SubjectID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "message": "password changed successfully"})
}

func (h *userHandler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "count": len(users), "users": users})
}

type roleRequest struct {
	Role string `json:"role"`
}

func (h *userHandler) updateRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := parseJSON(w, r, &req); err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}

	u, err := h.svc.UpdateRole(r.Context(), principal(r).SubjectID, chi.URLParam(r, "id"), req.Role)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "message": "user role updated", "user": u})
}

type statusChange func(ctx context.Context, actorID, targetID string) (*models.User, error)

func (h *userHandler) changeStatus(change statusChange) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := change(r.Context(), principal(r).SubjectID, chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, r, h.log, err)
			return
		}
		msg := "user deactivated"
		if u.IsActive {
			msg = "user activated"
		}
		writeJSON(w, http.StatusOK, envelope{"success": true, "message": msg, "user": u})
	}
}
