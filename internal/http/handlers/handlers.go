// Package handlers wires the HTTP surface to the service layer. Each
// handler owns its chi subrouter; route protection lives in middleware.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/agriclinic/agri-clinic-hub/internal/http/response"
)

// decodeJSON rejects unknown fields so typos in request bodies fail loudly.
func decodeJSON(r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v) == nil
}

// parsePagination reads limit/offset query params, leaving bounds checks
// to the repository layer.
func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			offset = n
		}
	}
	return limit, offset
}

// parseID reads a positive int64 route param.
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func badBody(w http.ResponseWriter) {
	response.BadRequest(w, "invalid request body")
}
