package auth

import "errors"

var (
	// ErrUnauthenticated is matched by every credential and token failure.
	// Handlers map it to 401 without revealing which check failed.
	ErrUnauthenticated = errors.New("unauthenticated")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSignature   = errors.New("invalid token signature")
	ErrExpired            = errors.New("token expired")
	ErrMalformed          = errors.New("malformed token")

	// ErrForbidden means the caller is authenticated but the policy denies the operation.
	ErrForbidden = errors.New("forbidden")

	ErrEmptyPassword = errors.New("password must not be empty")
)

// unauthenticated wraps kind so it matches both itself and ErrUnauthenticated.
func unauthenticated(kind error) error {
	return &authError{kind: kind}
}

type authError struct {
	kind error
}

func (e *authError) Error() string { return e.kind.Error() }

func (e *authError) Is(target error) bool {
	return target == ErrUnauthenticated || target == e.kind
}

func (e *authError) Unwrap() error { return e.kind }

// Reason returns a short label for err suitable for logs and metrics.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	default:
		return "error"
	}
}
