package httperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindUnexpected
)

func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unexpected"
	}
}

// AppError is an error that is safe to show to the caller. Code is stable
// and machine readable, Message is for humans.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(kind Kind, code, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

func Validation(code, message string) *AppError {
	return newError(KindValidation, code, message)
}

func Unauthenticated(code, message string) *AppError {
	return newError(KindAuthentication, code, message)
}

func Forbidden(code, message string) *AppError {
	return newError(KindAuthorization, code, message)
}

func NotFoundError(code, message string) *AppError {
	return newError(KindNotFound, code, message)
}

func Conflict(code, message string) *AppError {
	return newError(KindConflict, code, message)
}

// Unexpected hides err from the caller. It is still logged by Respond.
func Unexpected(err error) *AppError {
	return &AppError{
		Kind:    KindUnexpected,
		Code:    "internal_error",
		Message: "Une erreur interne est survenue.",
		Err:     err,
	}
}

// KindOf returns the kind of the first AppError in err's chain, or
// KindUnexpected.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnexpected
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
