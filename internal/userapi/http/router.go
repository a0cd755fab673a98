package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/arkelhq/userapi/internal/userapi/service"
	"github.com/arkelhq/userapi/internal/userapi/store"
	"github.com/arkelhq/userapi/pkg/httpx"
	"github.com/arkelhq/userapi/pkg/jwtx"
	"github.com/arkelhq/userapi/pkg/slogx"

	_ "github.com/arkelhq/userapi/api" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// publicPatterns are served without credentials. They feed both the
// authentication gate's exclusion list and the access policy.
var publicPatterns = []string{
	"/auth/login",
	"/livez",
	"/readyz",
	"/swagger/**",
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	codec        *jwtx.Codec
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store        store.Store
	LoginService *service.LoginService
	UserService  *service.UserService
}

func NewRouter(codec *jwtx.Codec, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		codec:        codec,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Request log, then the gate (attaches a principal, never denies),
	// then the policy (the only stage that denies).
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Authn(codec, httpx.NewPathMatcher(publicPatterns...)),
		DefaultPolicy().Middleware(),
	}

	return r
}

// DefaultPolicy is the service access table. First match wins; anything not
// listed requires an authenticated principal.
func DefaultPolicy() *httpx.Policy {
	p := httpx.NewPolicy()
	p.Allow(http.MethodPost, "/auth/login")
	p.Allow(http.MethodGet, "/livez")
	p.Allow(http.MethodGet, "/readyz")
	p.Allow("", "/swagger/**")
	p.RequireAnyRole(http.MethodDelete, "/users/**", "ADMIN")
	p.RequireAnyRole(http.MethodGet, "/users/**", "USER", "ADMIN")
	return p
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			User API
//	@version		0.1.0
//	@description	User management service issuing HS256-signed JWT bearer tokens.
//	@description	Tokens carry the subject and role claims consumed by the request pipeline.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /auth/login - strict rate limit by IP (authentication attempts)
	loginHandler := &LoginHandler{LoginService: r.LoginService}
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	limited := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn, httpx.RateLimitBySubject(httpx.LenientLimit))
	}

	r.Mux.Handle("POST /users", limited(h.HandleCreate))
	r.Mux.Handle("GET /users", limited(h.HandleList))
	r.Mux.Handle("GET /users/{id}", limited(h.HandleGet))
	r.Mux.Handle("PUT /users/{id}", limited(h.HandleUpdate))
	r.Mux.Handle("DELETE /users/{id}", limited(h.HandleDelete))
}

func (r *Router) registerSystem() {
	// Monitoring may poll these frequently.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
