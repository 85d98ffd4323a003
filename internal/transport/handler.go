// Package transport adapts error-returning handlers to net/http and owns the
// mapping from error kinds to HTTP responses.
package transport

import (
	"errors"
	"net/http"

	"greencare-be/internal/apperr"
	"greencare-be/internal/logger"

	"go.uber.org/zap"
)

// HandlerFunc is an http handler that reports failures by returning them.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Handle converts h into an http.HandlerFunc with centralized error handling.
func Handle(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		status, body := Resolve(err)
		log := logger.FromCtx(r.Context()).With(
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
		)
		if status >= http.StatusInternalServerError {
			log.Error("request failed", zap.Error(err))
		} else {
			log.Debug("request rejected", zap.Error(err))
		}

		WriteJSON(w, status, body)
	}
}

// Resolve maps err to a status code and a JSON body.
func Resolve(err error) (int, any) {
	var validation *apperr.ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest, validation.Fields
	}

	msg := apperr.Message(err)
	switch {
	case errors.Is(err, apperr.ErrInvalid), errors.Is(err, apperr.ErrConflict):
		return http.StatusBadRequest, errorBody(msg)
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized, errorBody(msg)
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, errorBody(msg)
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, errorBody(msg)
	case errors.Is(err, apperr.ErrUnavailable):
		return http.StatusServiceUnavailable, errorBody(msg)
	case errors.Is(err, apperr.ErrUpstream):
		return http.StatusInternalServerError, errorBody(msg)
	default:
		return http.StatusInternalServerError, errorBody("internal server error")
	}
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}
