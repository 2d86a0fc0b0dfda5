package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agriclinic/agri-clinic-hub/internal/domain"
	"github.com/agriclinic/agri-clinic-hub/internal/http/middleware"
	"github.com/agriclinic/agri-clinic-hub/internal/http/response"
	"github.com/agriclinic/agri-clinic-hub/internal/service"
)

type BookingsHandler struct {
	bookings service.BookingService
}

func NewBookingsHandler(bookings service.BookingService) *BookingsHandler {
	return &BookingsHandler{bookings: bookings}
}

// Routes assumes RequireJWT already ran on the parent router.
func (h *BookingsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(middleware.RequireRole(domain.RoleFarmer)).Post("/", h.create)
	r.With(middleware.RequireRole(domain.RoleFarmer)).Get("/mine", h.listMine)
	r.With(middleware.RequireRole(domain.RoleOfficer)).Get("/assigned", h.listAssigned)
	r.With(middleware.RequireRole(domain.RoleOfficer)).Patch("/{id}/status", h.setStatus)
	return r
}

func (h *BookingsHandler) create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	var req domain.CreateBookingRequest
	if !decodeJSON(r, &req) {
		badBody(w)
		return
	}

	booking, err := h.bookings.CreateBooking(r.Context(), claims.Sub, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, booking)
}

func (h *BookingsHandler) listMine(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	limit, offset := parsePagination(r)

	views, err := h.bookings.ListMine(r.Context(), claims.Sub, limit, offset)
	if err != nil {
		response.FromError(w, err)
		return
	}
	if views == nil {
		views = []domain.BookingView{}
	}

	response.WriteJSON(w, http.StatusOK, views)
}

func (h *BookingsHandler) listAssigned(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)
	limit, offset := parsePagination(r)

	views, err := h.bookings.ListAssigned(r.Context(), claims.Sub, limit, offset)
	if err != nil {
		response.FromError(w, err)
		return
	}
	if views == nil {
		views = []domain.BookingView{}
	}

	response.WriteJSON(w, http.StatusOK, views)
}

func (h *BookingsHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.Claims(r)

	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		response.BadRequest(w, "invalid booking id")
		return
	}

	var req domain.UpdateBookingStatusRequest
	if !decodeJSON(r, &req) {
		badBody(w)
		return
	}

	booking, err := h.bookings.SetStatus(r.Context(), claims.Sub, id, req.Status)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, booking)
}
