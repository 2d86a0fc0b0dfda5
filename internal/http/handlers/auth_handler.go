package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agriclinic/agri-clinic-hub/internal/domain"
	"github.com/agriclinic/agri-clinic-hub/internal/http/response"
	"github.com/agriclinic/agri-clinic-hub/internal/service"
)

type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/signup", h.signup)
	r.Post("/login", h.login)
	r.Post("/forgot-password", h.forgotPassword)
	r.Put("/reset-password/{secret}", h.resetPassword)
	return r
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if !decodeJSON(r, &req) {
		badBody(w)
		return
	}

	resp, err := h.auth.Signup(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeJSON(r, &req) {
		badBody(w)
		return
	}

	resp, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(r, &req) {
		badBody(w)
		return
	}

	if err := h.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		response.FromError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "password reset link sent to your email",
	})
}

func (h *AuthHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !decodeJSON(r, &req) {
		badBody(w)
		return
	}

	if err := h.auth.ResetPassword(r.Context(), chi.URLParam(r, "secret"), req.Password); err != nil {
		response.FromError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "password reset successful",
	})
}
