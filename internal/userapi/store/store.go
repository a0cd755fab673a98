package store

import (
	"context"
	"errors"

	"github.com/arkelhq/userapi/internal/userapi/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this; the auth core and services only ever see the interface.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing on nil and
	// rolling back otherwise. Prefer this over Tx directly.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store with Commit/Rollback on top.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user with phones populated.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is the login-path lookup.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user and its phones (id provided by the app
	// via ULID). Duplicate email yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateUser rewrites the mutable fields (name, password_hash, roles,
	// active, token, phones) and bumps updated_at.
	UpdateUser(ctx context.Context, u domain.User) error

	// DeleteUser removes the user; phones cascade per schema.
	DeleteUser(ctx context.Context, id string) error

	// ListUsers returns all users ordered by creation (newest first).
	ListUsers(ctx context.Context) ([]domain.User, error)

	// IsEmpty reports whether any user exists at all (bootstrap check).
	IsEmpty(ctx context.Context) (bool, error)
}
