package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agriclinic/agri-clinic-hub/internal/domain"
	"github.com/agriclinic/agri-clinic-hub/internal/http/middleware"
	"github.com/agriclinic/agri-clinic-hub/internal/http/response"
	"github.com/agriclinic/agri-clinic-hub/internal/service"
)

type UsersHandler struct {
	users service.UserService
}

func NewUsersHandler(users service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// Routes assumes RequireJWT already ran on the parent router.
func (h *UsersHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/officers", h.listOfficers)
	r.With(middleware.RequireRole(domain.RoleAdmin)).Get("/", h.list)
	r.With(middleware.RequireRole(domain.RoleAdmin)).Patch("/{id}/verify", h.verify)
	return r
}

// listOfficers is open to any authenticated user so farmers can pick a
// consultant when creating a booking.
func (h *UsersHandler) listOfficers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	officers, err := h.users.ListVerifiedOfficers(r.Context(), limit, offset)
	if err != nil {
		response.FromError(w, err)
		return
	}
	if officers == nil {
		officers = []domain.UserInfo{}
	}

	response.WriteJSON(w, http.StatusOK, officers)
}

func (h *UsersHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	users, err := h.users.ListUsers(r.Context(), limit, offset)
	if err != nil {
		response.FromError(w, err)
		return
	}
	if users == nil {
		users = []domain.UserInfo{}
	}

	response.WriteJSON(w, http.StatusOK, users)
}

func (h *UsersHandler) verify(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "invalid user id")
		return
	}

	user, err := h.users.VerifyOfficer(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, user)
}
