package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const (
	CodeValidation   = "validation_error"
	CodeNotFound     = "not_found"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotConnected = "google_not_connected"
	CodeRemote       = "remote_service_error"
	CodeInternal     = "internal_error"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(format string, args ...any) *Error {
	return New(http.StatusBadRequest, CodeValidation, fmt.Errorf(format, args...))
}

func NotFound(what string) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf("%s not found", what))
}

func Unauthorized(msg string) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, errors.New(msg))
}

func Forbidden(msg string) *Error {
	return New(http.StatusForbidden, CodeForbidden, errors.New(msg))
}

// NotConnected marks the absent/revoked Google credential state. It is not a
// transient failure; the fix is re-running the OAuth flow.
func NotConnected(err error) *Error {
	if err == nil {
		err = errors.New("Google not connected. Please authorize via /api/oauth/google/start")
	}
	return New(http.StatusConflict, CodeNotConnected, err)
}

// RemoteError is a non-success answer from the document store, the order
// resolver or the credential service. Status/Body carry the upstream response
// when there was one.
type RemoteError struct {
	Service string
	Status  int
	Body    string
	Err     error
}

func (e *RemoteError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(e.Service)
	b.WriteString(" request failed")
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	} else if body := strings.TrimSpace(e.Body); body != "" {
		b.WriteString(": ")
		b.WriteString(truncate(body, 300))
	}
	return b.String()
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) HTTPStatusCode() int { return e.Status }

func Remote(service string, status int, body string, err error) *RemoteError {
	return &RemoteError{Service: service, Status: status, Body: body, Err: err}
}

// Status resolves the HTTP status and code a handler should answer with.
func Status(err error) (int, string) {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status, ae.Code
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return http.StatusBadGateway, CodeRemote
	}
	return http.StatusInternalServerError, CodeInternal
}

func IsNotFound(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == http.StatusNotFound
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
