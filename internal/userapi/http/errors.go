package http

import (
	"errors"
	"net/http"

	"github.com/arkelhq/userapi/internal/userapi/service"
	"github.com/arkelhq/userapi/internal/userapi/store"
	"github.com/arkelhq/userapi/pkg/httpx"
)

func writeInvalidBody(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "request body is not valid JSON")
}

func writeValidation(w http.ResponseWriter, message string) {
	httpx.WriteError(w, http.StatusBadRequest, "invalid_request", message)
}

func writeServerError(w http.ResponseWriter) {
	httpx.WriteError(w, http.StatusInternalServerError, "server_error", "something went wrong")
}

// writeServiceError translates service and store failures into API responses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, store.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "user_not_found", "user not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, store.ErrAlreadyExists):
		httpx.WriteError(w, http.StatusConflict, "email_taken", "email is already registered")
	default:
		writeServerError(w)
	}
}
