package domain

import (
	"errors"
	"net/http"
)

var (
	// Common domain errors
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrChatNotAllowed   = errors.New("chat not allowed")
	ErrDocumentFetch    = errors.New("document download failed")
	ErrDocumentTooLarge = errors.New("document exceeds size limit")
	ErrAIFailed         = errors.New("ai completion failed")
	ErrConfig           = errors.New("invalid configuration")
)

// Error pairs an HTTP status and a public-safe message with the internal cause.
// Message is what callers (and chat users) see; Err is only logged.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func Invalid(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg, Err: ErrInvalidArgument}
}

func Forbidden() *Error {
	return &Error{Status: http.StatusForbidden, Message: ErrChatNotAllowed.Error(), Err: ErrChatNotAllowed}
}

func FetchFailed(cause error) *Error {
	msg := "failed to download document"
	if errors.Is(cause, ErrDocumentTooLarge) {
		msg = "document is too large"
	}
	return &Error{Status: http.StatusBadRequest, Message: msg, Err: cause}
}

func AIFailed(cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "AI analysis failed", Err: cause}
}

// StatusOf returns the HTTP status carried by err, 500 when it carries none.
func StatusOf(err error) int {
	var de *Error
	if errors.As(err, &de) && de.Status != 0 {
		return de.Status
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the caller-facing message for err.
func PublicMessage(err error) string {
	var de *Error
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return "internal error"
}
