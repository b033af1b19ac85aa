package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// Error kinds. Each kind maps to exactly one HTTP status.
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrValidation
	ErrUnauthenticated
	ErrAuthorization
	ErrConflict
	ErrGateway
	ErrInternal
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "not_found"
	case ErrValidation:
		return "validation_error"
	case ErrUnauthenticated:
		return "unauthenticated"
	case ErrAuthorization:
		return "authorization_error"
	case ErrConflict:
		return "conflict"
	case ErrGateway:
		return "gateway_error"
	default:
		return "internal_error"
	}
}

// StatusCode returns the HTTP status for the kind.
func (c ErrorCode) StatusCode() int {
	switch c {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrValidation:
		return http.StatusBadRequest
	case ErrUnauthenticated:
		return http.StatusUnauthorized
	case ErrAuthorization:
		return http.StatusForbidden
	case ErrConflict:
		return http.StatusConflict
	case ErrGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode lets gin error middleware pick the response status.
func (e *AppError) StatusCode() int {
	return e.Code.StatusCode()
}

// Is matches any *AppError of the same kind, so callers can write
// errors.Is(err, errors.Authorization("", nil)) or use the KindOf helpers.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == "" || t.Message == e.Message)
}

func newError(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func NotFound(resource string, err error) *AppError {
	return newError(ErrNotFound, fmt.Sprintf("%s not found", resource), err)
}

func Validation(message string, err error) *AppError {
	return newError(ErrValidation, message, err)
}

func Unauthenticated(err error) *AppError {
	return newError(ErrUnauthenticated, "unauthenticated", err)
}

func Authorization(message string, err error) *AppError {
	if message == "" {
		message = "forbidden"
	}
	return newError(ErrAuthorization, message, err)
}

func Conflict(message string, err error) *AppError {
	return newError(ErrConflict, message, err)
}

func Gateway(message string, err error) *AppError {
	return newError(ErrGateway, message, err)
}

func Internal(err error) *AppError {
	return newError(ErrInternal, "internal server error", err)
}

// KindOf returns the kind of the first AppError in err's chain, or
// ErrInternal when there is none.
func KindOf(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

func IsNotFound(err error) bool      { return err != nil && KindOf(err) == ErrNotFound }
func IsValidation(err error) bool    { return err != nil && KindOf(err) == ErrValidation }
func IsAuthorization(err error) bool { return err != nil && KindOf(err) == ErrAuthorization }
func IsConflict(err error) bool      { return err != nil && KindOf(err) == ErrConflict }
func IsGateway(err error) bool       { return err != nil && KindOf(err) == ErrGateway }
