package response

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/agriclinic/agri-clinic-hub/internal/domain"
)

// ErrorResponse represents a structured JSON error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Common error codes
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodePendingVerification = "PENDING_VERIFICATION"
	CodeNotFound            = "NOT_FOUND"
	CodeEmailExists         = "EMAIL_EXISTS"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeRateLimit           = "RATE_LIMIT_EXCEEDED"
	CodeDeliveryFailed      = "DELIVERY_FAILED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// WriteError writes a structured JSON error response
func WriteError(w http.ResponseWriter, statusCode int, message string, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// FromError maps a service error to its HTTP status and error code.
// Unrecognized errors become a generic 500 so internal details never
// reach the client.
func FromError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		WriteError(w, http.StatusBadRequest, err.Error(), CodeInvalidInput)
	case errors.Is(err, domain.ErrEmailExists):
		WriteError(w, http.StatusConflict, err.Error(), CodeEmailExists)
	case errors.Is(err, domain.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, err.Error(), CodeUnauthorized)
	case errors.Is(err, domain.ErrPendingVerification):
		WriteError(w, http.StatusForbidden, err.Error(), CodePendingVerification)
	case errors.Is(err, domain.ErrUnauthenticated):
		WriteError(w, http.StatusUnauthorized, err.Error(), CodeUnauthorized)
	case errors.Is(err, domain.ErrForbidden):
		WriteError(w, http.StatusForbidden, err.Error(), CodeForbidden)
	case errors.Is(err, domain.ErrInvalidTransition):
		WriteError(w, http.StatusConflict, err.Error(), CodeInvalidTransition)
	case errors.Is(err, domain.ErrInvalidResetToken):
		WriteError(w, http.StatusBadRequest, err.Error(), CodeInvalidToken)
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error(), CodeNotFound)
	case errors.Is(err, domain.ErrDelivery):
		WriteError(w, http.StatusBadGateway, err.Error(), CodeDeliveryFailed)
	default:
		WriteError(w, http.StatusInternalServerError, "internal server error", CodeInternalError)
	}
}

// Convenience functions for common errors
func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, CodeInvalidInput)
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message, CodeForbidden)
}

func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message, CodeNotFound)
}

func RateLimit(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusTooManyRequests, message, CodeRateLimit)
}
