package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Makepad-fr/items/internal/store"
)

// Kind classifies a handler failure.
type Kind int

// Failure kinds.
const (
	KindStorage Kind = iota
	KindNotFound
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	default:
		return "storage"
	}
}

// StatusCode returns the HTTP status code for this kind.
func (k Kind) StatusCode() int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

const (
	notFoundMessage = "Item not found"
	internalMessage = "internal server error"
)

// Error pairs a kind with the client message and the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func notFound() *Error {
	return &Error{Kind: KindNotFound, Message: notFoundMessage}
}

func invalid(err error) *Error {
	return &Error{Kind: KindValidation, Message: err.Error(), Err: err}
}

// classify maps an error from the store to its Error.
func classify(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, store.ErrNotFound) {
		return notFound()
	}
	return &Error{Kind: KindStorage, Message: err.Error(), Err: err}
}

// publicMessage is what goes on the wire. Storage details are hidden unless
// expose is set.
func (e *Error) publicMessage(expose bool) string {
	if e.Kind == KindStorage && !expose {
		return internalMessage
	}
	return e.Message
}
