package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
	"github.com/prior-it/hermes/core"
)

func DefaultErrorHandler(apollo *Apollo, err error) {
	code, msg := StatusFor(err)
	if code >= http.StatusInternalServerError {
		apollo.Error("Server error", "error", err)
	} else {
		apollo.Debug("Request failed", "error", err, "status", code)
	}
	apollo.Writer.WriteHeader(code)
	render.PlainText(apollo.Writer, apollo.Request, msg)
}

// StatusFor returns the http status code and message that correspond with err.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, core.ErrInvalidArgument), errors.Is(err, core.ErrHTTPMethod):
		return http.StatusBadRequest, "bad request"
	case errors.Is(err, core.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method not allowed"
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, core.ErrNotFound), errors.Is(err, core.ErrNoContent):
		return http.StatusNotFound, "not found"
	case errors.Is(err, core.ErrNotImplemented):
		return http.StatusNotImplemented, "not implemented"
	}
	return http.StatusInternalServerError, "internal server error"
}
