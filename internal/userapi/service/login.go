package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/arkelhq/userapi/internal/userapi/store"
	"github.com/arkelhq/userapi/pkg/cryptox"
	"github.com/arkelhq/userapi/pkg/jwtx"
	"github.com/arkelhq/userapi/pkg/slogx"
)

var (
	ErrUserNotFound       = errors.New("user_not_found")
	ErrInvalidCredentials = errors.New("invalid_credentials")
)

// LoginService authenticates credentials against stored user records and
// mints access tokens on success.
type LoginService struct {
	Store store.Store
	Codec *jwtx.Codec
}

// Login verifies the (email, password) pair and returns a signed token
// carrying the stored identity and roles. It does not mutate stored state:
// any failure leaves no observable change, and role changes only take effect
// on the next issued token.
func (s *LoginService) Login(ctx context.Context, email, password string) (string, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("login: lookup user: %w", err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrMismatch) {
			log.Info("login rejected", "email", email)
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("login: verify password: %w", err)
	}

	token, err := s.Codec.Issue(user.Email, user.RoleList())
	if err != nil {
		return "", fmt.Errorf("login: issue token: %w", err)
	}

	log.Info("login succeeded", "email", email)
	return token, nil
}
