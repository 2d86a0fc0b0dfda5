package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agriclinic/agri-clinic-hub/internal/http/response"
)

// WeatherProvider is the slice of the upstream client the handler needs.
type WeatherProvider interface {
	Current(ctx context.Context, location string) (json.RawMessage, error)
	Forecast(ctx context.Context, location string) (json.RawMessage, error)
}

type WeatherHandler struct {
	provider WeatherProvider
}

func NewWeatherHandler(provider WeatherProvider) *WeatherHandler {
	return &WeatherHandler{provider: provider}
}

func (h *WeatherHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.current)
	r.Get("/forecast", h.forecast)
	return r
}

func (h *WeatherHandler) current(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, h.provider.Current)
}

func (h *WeatherHandler) forecast(w http.ResponseWriter, r *http.Request) {
	h.proxy(w, r, h.provider.Forecast)
}

func (h *WeatherHandler) proxy(w http.ResponseWriter, r *http.Request, fetch func(context.Context, string) (json.RawMessage, error)) {
	payload, err := fetch(r.Context(), r.URL.Query().Get("location"))
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, payload)
}
