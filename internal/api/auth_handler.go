package api

import (
	"fmt"
	"net/http"

	"reservaja/internal/apperror"
	"reservaja/internal/auth"
	"reservaja/internal/entities"
	"reservaja/internal/service"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req entities.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		apperror.Write(w, r, err)
		return
	}
	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Register creates a user. A caller that is already authenticated as an
// administrator may create other administrators.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req entities.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		apperror.Write(w, r, err)
		return
	}
	var actor *auth.Principal
	if p, ok := auth.PrincipalFromContext(r.Context()); ok {
		actor = &p
	}
	user, err := h.service.Register(r.Context(), actor, req)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/users/%d", user.ID))
	w.WriteHeader(http.StatusCreated)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, err := requirePrincipal(r)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	resp, err := h.service.Me(r.Context(), principal)
	if err != nil {
		apperror.Write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("API is running"))
}
