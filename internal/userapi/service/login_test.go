package service

import (
	"context"
	"testing"
	"time"

	"github.com/arkelhq/userapi/internal/userapi/domain"
	"github.com/arkelhq/userapi/internal/userapi/store"
	"github.com/arkelhq/userapi/internal/userapi/store/drivers/sqlite"
	"github.com/arkelhq/userapi/pkg/cryptox"
	"github.com/arkelhq/userapi/pkg/idx"
	"github.com/arkelhq/userapi/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newTestCodec(t *testing.T) *jwtx.Codec {
	t.Helper()

	codec, err := jwtx.New([]byte("test-signing-key-of-32-bytes-min!"), 10*time.Minute)
	require.NoError(t, err)
	return codec
}

func seedUser(t *testing.T, st store.Store, email, password, roles string) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		Roles:        roles,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	return u
}

func TestLoginIssuesToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	codec := newTestCodec(t)
	svc := &LoginService{Store: st, Codec: codec}

	seedUser(t, st, "alice@example.com", "Password123", "USER")

	token, err := svc.Login(ctx, "alice@example.com", "Password123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.True(t, codec.IsValid(token))

	sub, err := codec.ExtractSubject(token)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", sub)

	roles, err := codec.ExtractRoles(token)
	require.NoError(t, err)
	require.Equal(t, []string{"USER"}, roles)
}

func TestLoginRolesFromCSV(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	codec := newTestCodec(t)
	svc := &LoginService{Store: st, Codec: codec}

	// Stored role string with noise: gets trimmed and blanks dropped.
	seedUser(t, st, "root@example.com", "Password123", " ADMIN , USER ,")

	token, err := svc.Login(ctx, "root@example.com", "Password123")
	require.NoError(t, err)

	roles, err := codec.ExtractRoles(token)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"ADMIN", "USER"}, roles)
}

func TestLoginUnknownUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &LoginService{Store: st, Codec: newTestCodec(t)}

	token, err := svc.Login(ctx, "ghost@example.com", "Password123")
	require.ErrorIs(t, err, ErrUserNotFound)
	require.Empty(t, token)
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &LoginService{Store: st, Codec: newTestCodec(t)}

	seedUser(t, st, "alice@example.com", "Password123", "USER")

	token, err := svc.Login(ctx, "alice@example.com", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.Empty(t, token)
}

func TestLoginDoesNotMutateState(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := &LoginService{Store: st, Codec: newTestCodec(t)}

	seeded := seedUser(t, st, "alice@example.com", "Password123", "USER")

	_, err := svc.Login(ctx, "alice@example.com", "Password123")
	require.NoError(t, err)

	after, err := st.Users().GetUserByID(ctx, seeded.ID)
	require.NoError(t, err)
	require.Equal(t, seeded.PasswordHash, after.PasswordHash)
	require.Equal(t, seeded.Roles, after.Roles)
	require.Equal(t, seeded.Token, after.Token)
}
