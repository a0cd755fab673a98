package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arkelhq/userapi/internal/userapi/domain"
	"github.com/arkelhq/userapi/internal/userapi/service"
	"github.com/arkelhq/userapi/internal/userapi/store/drivers/sqlite"
	"github.com/arkelhq/userapi/pkg/jwtx"
	"github.com/arkelhq/userapi/pkg/slogx"
)

// testEnv drives the full request pipeline: request log, gate, policy, mux.
type testEnv struct {
	router *Router
	codec  *jwtx.Codec
	users  *service.UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	codec, err := jwtx.New([]byte("0123456789abcdef0123456789abcdef"), jwtx.DefaultTTL)
	require.NoError(t, err)

	logger := slogx.New(slogx.Config{Service: "userapi", Env: "test", Level: "error", Format: "text"})

	router := NewRouter(codec, "test", st, logger)
	router.LoginService = &service.LoginService{Store: st, Codec: codec}
	router.UserService = &service.UserService{Store: st, Codec: codec}
	router.ApplyRoutes()

	return &testEnv{router: router, codec: codec, users: router.UserService}
}

func (e *testEnv) seedUser(t *testing.T, name, email, password, roles string) domain.User {
	t.Helper()
	user, err := e.users.Create(t.Context(), service.NewUser{
		Name:     name,
		Email:    email,
		Password: password,
		Roles:    roles,
		Phones:   []domain.Phone{{Number: "1234567", CityCode: "1", CountryCode: "57"}},
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, email, password string) TokenResponse {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/login", "", LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	return out
}

func TestLoginIssuesUsableToken(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "Alice Example", "alice@example.com", "Password12", "USER")

	out := env.login(t, "alice@example.com", "Password12")
	require.Equal(t, "alice@example.com", out.Email)

	claims, err := env.codec.Decode(out.Token)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", claims.Subject)
	require.Equal(t, []string{"USER"}, claims.Roles)
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "Alice Example", "alice@example.com", "Password12", "USER")

	rec := env.do(t, http.MethodPost, "/auth/login", "",
		LoginRequest{Email: "nobody@example.com", Password: "Password12"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/auth/login", "",
		LoginRequest{Email: "alice@example.com", Password: "WrongPass12"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserEndpointsRequireToken(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "Alice Example", "alice@example.com", "Password12", "USER")

	rec := env.do(t, http.MethodGet, "/users/"+user.ID, "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	require.Contains(t, rec.Body.String(), "unauthenticated")
}

func TestUserReadWithToken(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "Alice Example", "alice@example.com", "Password12", "USER")
	out := env.login(t, "alice@example.com", "Password12")

	rec := env.do(t, http.MethodGet, "/users/"+user.ID, out.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, "alice@example.com", got.Email)
	require.Len(t, got.Phones, 1)
}

func TestDeleteRequiresAdminRole(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "Alice Example", "alice@example.com", "Password12", "USER")
	env.seedUser(t, "Root", "root@example.com", "Password34", "ADMIN,USER")

	aliceTok := env.login(t, "alice@example.com", "Password12")
	rec := env.do(t, http.MethodDelete, "/users/"+alice.ID, aliceTok.Token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "insufficient_scope")
	require.Contains(t, rec.Header().Get("WWW-Authenticate"), "ROLE_ADMIN")

	adminTok := env.login(t, "root@example.com", "Password34")
	rec = env.do(t, http.MethodDelete, "/users/"+alice.ID, adminTok.Token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/users/"+alice.ID, adminTok.Token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "Alice Example", "alice@example.com", "Password12", "USER")

	stale, err := env.codec.IssueAt("alice@example.com", []string{"USER"}, time.Now().Add(-11*time.Minute))
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/users/"+user.ID, stale, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateUserOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "Root", "root@example.com", "Password34", "ADMIN,USER")
	adminTok := env.login(t, "root@example.com", "Password34")

	payload := UserRequest{
		Name:     "Bob Example",
		Email:    "bob@example.com",
		Password: "Password12",
		Phones:   []PhoneRequest{{Number: "7654321", CityCode: "1", CountryCode: "57"}},
	}

	rec := env.do(t, http.MethodPost, "/users", adminTok.Token, payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, []string{"USER"}, created.Roles)
	require.NotEmpty(t, created.Token)
	require.True(t, env.codec.IsValid(created.Token))

	// Same email again conflicts.
	rec = env.do(t, http.MethodPost, "/users", adminTok.Token, payload)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "email_taken")
}

func TestCreateUserValidation(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "Root", "root@example.com", "Password34", "ADMIN,USER")
	adminTok := env.login(t, "root@example.com", "Password34")

	cases := []struct {
		name string
		req  UserRequest
	}{
		{"missing name", UserRequest{
			Email: "bob@example.com", Password: "Password12",
			Phones: []PhoneRequest{{Number: "7654321"}},
		}},
		{"bad email", UserRequest{
			Name: "Bob", Email: "not-an-email", Password: "Password12",
			Phones: []PhoneRequest{{Number: "7654321"}},
		}},
		{"weak password", UserRequest{
			Name: "Bob", Email: "bob@example.com", Password: "password",
			Phones: []PhoneRequest{{Number: "7654321"}},
		}},
		{"no phones", UserRequest{
			Name: "Bob", Email: "bob@example.com", Password: "Password12",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/users", adminTok.Token, tc.req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestUpdateUserOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "Alice Example", "alice@example.com", "Password12", "USER")
	tok := env.login(t, "alice@example.com", "Password12")

	rec := env.do(t, http.MethodPut, "/users/"+alice.ID, tok.Token, UserRequest{Name: "Alice Renamed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "Alice Renamed", got.Name)
	require.Equal(t, "alice@example.com", got.Email)
}

func TestHealthProbesArePublic(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = env.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestValidPassword(t *testing.T) {
	cases := []struct {
		password string
		ok       bool
	}{
		{"Password12", true},
		{"Aa345678", true},
		{"password12", false}, // no upper
		{"PASSWORD12", false}, // no lower
		{"Passwordxy", false}, // not enough digits
		{"Aa1", false},        // too short
	}
	for _, tc := range cases {
		require.Equal(t, tc.ok, validPassword(tc.password), tc.password)
	}
}
