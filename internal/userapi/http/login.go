package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/arkelhq/userapi/internal/userapi/service"
	"github.com/arkelhq/userapi/pkg/httpx"
	"github.com/arkelhq/userapi/pkg/slogx"
)

// LoginHandler serves POST /auth/login.
type LoginHandler struct {
	LoginService *service.LoginService
}

// ServeHTTP godoc
//
//	@Summary		Login
//	@Description	Exchanges an email and password for a signed bearer token.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		LoginRequest	true	"Login credentials"
//	@Success		200			{object}	TokenResponse	"email, token"
//	@Failure		400			{object}	httpx.ErrorBody	"error, message"
//	@Failure		401			{object}	httpx.ErrorBody	"error, message"
//	@Failure		404			{object}	httpx.ErrorBody	"error, message"
//	@Failure		500			{object}	httpx.ErrorBody	"error, message"
//	@Header			200			{string}	Cache-Control	"no-store"
//	@Router			/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		writeValidation(w, "email and password are required")
		return
	}

	token, err := h.LoginService.Login(ctx, email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound),
			errors.Is(err, service.ErrInvalidCredentials):
			writeServiceError(w, err)
		default:
			log.Error("login failed", "err", err)
			writeServerError(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, TokenResponse{Email: email, Token: token})
}
