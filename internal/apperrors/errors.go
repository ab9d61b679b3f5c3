package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies an application error.
type ErrorCode int

const (
	ErrValidation ErrorCode = iota + 1000
	ErrDuplicateIdentity
	ErrAuthorization
	ErrUnauthenticated
	ErrNotFound
	ErrInvalidTransition
	ErrUpstreamUnavailable
	ErrInternal
)

// AppError carries a code and a message that is safe to show to callers.
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

func Validation(message string) *AppError {
	return &AppError{Code: ErrValidation, Message: message}
}

func DuplicateIdentity(message string) *AppError {
	return &AppError{Code: ErrDuplicateIdentity, Message: message}
}

func Authorization(message string) *AppError {
	return &AppError{Code: ErrAuthorization, Message: message}
}

func Unauthenticated(message string) *AppError {
	return &AppError{Code: ErrUnauthenticated, Message: message}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{Code: ErrNotFound, Message: fmt.Sprintf("%s not found", resource), Err: err}
}

func InvalidTransition(from, to string) *AppError {
	return &AppError{Code: ErrInvalidTransition, Message: fmt.Sprintf("cannot move appointment from %s to %s", from, to)}
}

func UpstreamUnavailable(err error) *AppError {
	return &AppError{Code: ErrUpstreamUnavailable, Message: "upstream service unavailable", Err: err}
}

func Internal(err error) *AppError {
	return &AppError{Code: ErrInternal, Message: "internal server error", Err: err}
}

// CodeOf returns the code of the first AppError in err's chain, ErrInternal otherwise.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// HTTPStatus maps an error to the response status code.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch CodeOf(err) {
	case ErrValidation:
		return http.StatusBadRequest
	case ErrDuplicateIdentity, ErrInvalidTransition:
		return http.StatusConflict
	case ErrAuthorization:
		return http.StatusForbidden
	case ErrUnauthenticated:
		return http.StatusUnauthorized
	case ErrNotFound:
		return http.StatusNotFound
	case ErrUpstreamUnavailable:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// PublicMessage is the message to put in a response body. Internal errors are
// never echoed verbatim.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
