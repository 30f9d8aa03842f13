package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation is returned when a request fails schema-level checks.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredential is returned when an email/password pair does not match.
	ErrInvalidCredential = errors.New("invalid email or password")
	// ErrAccountNotVerified is returned when a user logs in before verifying their email.
	ErrAccountNotVerified = errors.New("account is not verified")
	// ErrUnauthenticated is returned when a token is missing, malformed or expired.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned when a valid token references a session or user that is gone.
	ErrForbidden = errors.New("forbidden")
	// ErrDuplicateCredential is returned when an email is already registered.
	ErrDuplicateCredential = errors.New("email already registered")
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
)

// Messages shown to API callers. Security-sensitive failures share one message
// so callers cannot tell which check failed.
const (
	MsgInvalidCredential  = "Invalid email or password."
	MsgAccountNotVerified = "You must verify your email to activate this account."
	MsgRefreshFailed      = "Could not refresh access token."
	MsgSignInRequired     = "You need to sign in."
	MsgDuplicateEmail     = "An account with that email already exists."
	MsgNotFound           = "Not found."
	MsgInternal           = "Internal server error."
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Message string `json:"message"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string, err error) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{Message: e.Message}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Errors outside the
// taxonomy become a generic 500 that does not leak the cause.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, ErrInvalidCredential):
		return NewHTTPError(http.StatusUnauthorized, MsgInvalidCredential, err)
	case errors.Is(err, ErrAccountNotVerified):
		return NewHTTPError(http.StatusBadRequest, MsgAccountNotVerified, err)
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, MsgSignInRequired, err)
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, MsgSignInRequired, err)
	case errors.Is(err, ErrDuplicateCredential):
		return NewHTTPError(http.StatusConflict, MsgDuplicateEmail, err)
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, MsgNotFound, err)
	default:
		return NewHTTPError(http.StatusInternalServerError, MsgInternal, err)
	}
}

// WithMessage maps err like MapErrorToHTTP but pins the response message.
// Handlers use it where a route must answer with one fixed message.
func WithMessage(err error, message string) *HTTPError {
	mapped := MapErrorToHTTP(err)
	if mapped.StatusCode == http.StatusInternalServerError {
		return mapped
	}
	return NewHTTPError(mapped.StatusCode, message, mapped.Err)
}

// Validation wraps a human readable validation message so it maps to 400.
func Validation(message string) error {
	return &validationError{message: message}
}

type validationError struct {
	message string
}

func (e *validationError) Error() string { return e.message }

func (e *validationError) Is(target error) bool { return target == ErrValidation }
