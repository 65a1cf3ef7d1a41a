package api

import (
	"fmt"
	"net/http"
)

// StatusError is returned when the store answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	detail := e.Body
	if detail == "" {
		detail = http.StatusText(e.Code)
	}
	return fmt.Sprintf("Network error was not ok: %s", detail)
}

// TransportError wraps a failure to reach the store at all.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
