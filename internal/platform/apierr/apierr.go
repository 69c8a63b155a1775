package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
)

// Error carries the HTTP status and machine code a handler should answer with.
// Message, when set, is shown to the caller verbatim.
type Error struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func withMessage(status int, code, msg string, sentinel error) *Error {
	return &Error{Status: status, Code: code, Message: msg, Err: sentinel}
}

func BadRequest(code, msg string) *Error {
	return withMessage(http.StatusBadRequest, code, msg, ErrInvalidArgument)
}

func Unauthorized(msg string) *Error {
	return withMessage(http.StatusUnauthorized, "unauthorized", msg, ErrUnauthorized)
}

func NotFound(code, msg string) *Error {
	return withMessage(http.StatusNotFound, code, msg, ErrNotFound)
}

func Conflict(code, msg string) *Error {
	return withMessage(http.StatusConflict, code, msg, ErrConflict)
}

// Upstream mirrors a dependency's HTTP status back to the caller.
func Upstream(status int, code, msg string, err error) *Error {
	if status < 400 {
		status = http.StatusBadGateway
	}
	return &Error{Status: status, Code: code, Message: msg, Err: err}
}

// As extracts an *Error from err's chain. Anything else is reported as a 500.
func As(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae
	}
	return New(http.StatusInternalServerError, "internal_error", err)
}
