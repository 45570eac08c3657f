// Package apperr defines the closed error taxonomy shared by the HTTP
// handlers and the Go client. Transport-specific error shapes are mapped
// into an Error at the adapter boundary so callers never inspect status
// codes or response bodies themselves.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind int

const (
	Unknown Kind = iota
	Validation
	Conflict
	Auth
	Network
	NotFound
)

// String returns the kind's wire label.
func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Conflict:
		return "conflict"
	case Auth:
		return "auth"
	case Network:
		return "network"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error is a classified application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or Unknown when err carries none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Unknown
}

// HTTPStatus maps a kind to the response status the handlers emit.
func (k Kind) HTTPStatus() int {
	switch k {
	case Validation:
		return http.StatusBadRequest
	case Conflict:
		return http.StatusConflict
	case Auth:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case Network:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// FromStatus classifies an HTTP response status received by the client.
func FromStatus(status int, message string) *Error {
	var kind Kind
	switch {
	case status == http.StatusUnauthorized:
		kind = Auth
	case status == http.StatusConflict:
		kind = Conflict
	case status == http.StatusNotFound:
		kind = NotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		kind = Validation
	case status >= 500:
		kind = Network
	default:
		kind = Unknown
	}
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}
	return &Error{Kind: kind, Message: message}
}
