package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors the HTTP layer maps onto status codes. Services wrap
// these with fmt.Errorf("...: %w", ...) when extra context helps; handlers
// match with errors.Is.
var (
	// ErrValidation covers malformed or missing input. Field-level detail
	// is safe to show and is carried by wrapping.
	ErrValidation = errors.New("validation failed")

	// ErrEmailExists is returned on duplicate signup email.
	ErrEmailExists = errors.New("user already exists with this email")

	// ErrInvalidCredentials is deliberately the same for unknown email and
	// wrong password so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPendingVerification is an officer with correct credentials but
	// is_verified still false. Distinct from bad credentials on purpose.
	ErrPendingVerification = errors.New("your account is pending verification by an admin")

	// ErrUnauthenticated means a missing or unusable bearer token.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden means a valid token with the wrong role or ownership.
	ErrForbidden = errors.New("not authorized to perform this action")

	// ErrInvalidTransition is a booking status change the state machine
	// does not permit.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidResetToken collapses wrong secret and expired secret into
	// one answer.
	ErrInvalidResetToken = errors.New("invalid or expired token")

	ErrNotFound = errors.New("resource not found")

	// ErrDelivery means an outbound notification could not be sent.
	ErrDelivery = errors.New("notification could not be delivered")
)

// Validationf wraps ErrValidation with a field-level message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}
