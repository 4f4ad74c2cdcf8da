package services

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindBadRequest
	KindNotFound
)

// Status maps a kind onto its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Error is a classified failure. Title is the short machine-facing label
// rendered as "error"; Message is the human-facing sentence.
type Error struct {
	Kind    Kind
	Title   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Unauthenticated(title, msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Title: title, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Title: "Forbidden", Message: msg}
}

func BadRequest(msg string) *Error {
	return &Error{Kind: KindBadRequest, Title: "Bad Request", Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Title: "Not Found", Message: msg}
}

// Internal wraps an unclassified failure. The message stays generic; err is
// only shown in development.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Title: "Internal Server Error", Message: msg, Err: err}
}

// KindOf returns the kind of err, KindInternal when it is not an *Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}
