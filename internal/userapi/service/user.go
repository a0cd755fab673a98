package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arkelhq/userapi/internal/userapi/domain"
	"github.com/arkelhq/userapi/internal/userapi/store"
	"github.com/arkelhq/userapi/pkg/cryptox"
	"github.com/arkelhq/userapi/pkg/idx"
	"github.com/arkelhq/userapi/pkg/jwtx"
	"github.com/arkelhq/userapi/pkg/slogx"
)

var ErrEmailTaken = errors.New("email_taken")

// UserService owns the user record lifecycle.
type UserService struct {
	Store store.Store
	Codec *jwtx.Codec
}

// NewUser are the fields accepted when creating a user.
type NewUser struct {
	Name     string
	Email    string
	Password string
	Roles    string // comma-separated; empty defaults to USER
	Phones   []domain.Phone
}

// UpdateUser are the mutable fields. Nil pointers leave the stored value
// alone; Phones replaces the whole list when non-nil.
type UpdateUser struct {
	Name     *string
	Password *string
	Roles    *string
	Active   *bool
	Phones   []domain.Phone
}

// Create registers a new user. The email must be unused; the password is
// hashed before storage and an initial access token is issued and persisted
// with the record.
func (s *UserService) Create(ctx context.Context, in NewUser) (domain.User, error) {
	log := slogx.FromContext(ctx)

	roles := strings.TrimSpace(in.Roles)
	if roles == "" {
		roles = domain.DefaultRole
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Roles:        roles,
		Active:       true,
		Phones:       in.Phones,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastLoginAt:  &now,
	}

	token, err := s.Codec.IssueAt(user.Email, user.RoleList(), now)
	if err != nil {
		return domain.User{}, fmt.Errorf("create user: issue token: %w", err)
	}
	user.Token = token

	// User and phone rows land atomically; the unique index on email is the
	// final word on duplicates even under concurrent signups.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().GetUserByEmail(ctx, user.Email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return tx.Users().CreateUser(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		if errors.Is(err, ErrEmailTaken) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	log.Info("user created", "user_id", user.ID, "email", user.Email, "roles", roles)
	return user, nil
}

// Get fetches a user by id.
func (s *UserService) Get(ctx context.Context, id string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Update applies the provided changes and returns the updated record.
func (s *UserService) Update(ctx context.Context, id string, in UpdateUser) (domain.User, error) {
	var updated domain.User

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetUserByID(ctx, id)
		if err != nil {
			return err
		}

		if in.Name != nil {
			user.Name = *in.Name
		}
		if in.Password != nil {
			hash, err := cryptox.HashPassword(*in.Password)
			if err != nil {
				return err
			}
			user.PasswordHash = hash
		}
		if in.Roles != nil {
			user.Roles = strings.TrimSpace(*in.Roles)
		}
		if in.Active != nil {
			user.Active = *in.Active
		}
		if in.Phones != nil {
			user.Phones = in.Phones
		}
		user.UpdatedAt = time.Now().UTC()

		if err := tx.Users().UpdateUser(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}

	return updated, nil
}

// Delete removes a user and, via the schema, its phones.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.Store.Users().DeleteUser(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	slogx.FromContext(ctx).Info("user deleted", "user_id", id)
	return nil
}

// List returns every user, newest first.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.Store.Users().ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
