package httpx

import (
	"net/http"
	"strings"

	"github.com/arkelhq/userapi/pkg/slogx"
)

// Policy is an ordered access rule table evaluated once per request, after
// the authentication gate. The first rule whose method and path pattern
// match decides; requests matching no rule require an authenticated
// principal. This is the only pipeline stage allowed to short-circuit.
type Policy struct {
	rules []rule
}

type rule struct {
	method  string // "" matches any method
	pattern string
	public  bool
	roles   []string // ROLE_-qualified; empty and not public means "any authenticated"
}

// NewPolicy returns an empty policy whose catch-all still demands
// authentication.
func NewPolicy() *Policy {
	return &Policy{}
}

// Allow marks method+pattern as public. Use method "" for all methods.
func (p *Policy) Allow(method, pattern string) *Policy {
	p.rules = append(p.rules, rule{method: method, pattern: pattern, public: true})
	return p
}

// RequireAnyRole gates method+pattern behind at least one of the given roles.
// Role names are qualified the same way the gate qualifies token roles, so
// callers pass bare tags ("USER", "ADMIN").
func (p *Policy) RequireAnyRole(method, pattern string, roles ...string) *Policy {
	p.rules = append(p.rules, rule{
		method:  method,
		pattern: pattern,
		roles:   NormalizeRoles(roles),
	})
	return p
}

// RequireAuthenticated gates method+pattern behind any valid principal.
func (p *Policy) RequireAuthenticated(method, pattern string) *Policy {
	p.rules = append(p.rules, rule{method: method, pattern: pattern})
	return p
}

// Middleware evaluates the policy for each request.
func (p *Policy) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			matched := p.match(r.Method, r.URL.Path)

			if matched.public {
				next.ServeHTTP(w, r)
				return
			}

			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeUnauthenticated(w)
				return
			}

			if len(matched.roles) > 0 && !principal.HasAnyRole(matched.roles...) {
				slogx.FromContext(r.Context()).Warn("access denied",
					"subject", principal.Subject,
					"path", r.URL.Path,
					"required_roles", matched.roles,
				)
				writeForbidden(w, matched.roles)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (p *Policy) match(method, path string) rule {
	for _, ru := range p.rules {
		if ru.method != "" && ru.method != method {
			continue
		}
		if MatchPath(ru.pattern, path) {
			return ru
		}
	}
	// Catch-all: authenticated.
	return rule{}
}

// RFC 6750 bearer challenge plus a JSON body for API clients.
func writeUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	WriteError(w, http.StatusUnauthorized, "unauthenticated", "a valid bearer token is required")
}

func writeForbidden(w http.ResponseWriter, required []string) {
	w.Header().
		Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+strings.Join(required, " ")+`"`)
	WriteError(w, http.StatusForbidden, "forbidden", "the authenticated user lacks a required role")
}
