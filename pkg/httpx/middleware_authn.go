package httpx

import (
	"net/http"
	"strings"

	"github.com/arkelhq/userapi/pkg/jwtx"
	"github.com/arkelhq/userapi/pkg/slogx"
)

const bearerScheme = "Bearer "

// Authn is the authentication gate. It runs once per request, ahead of the
// access policy, and establishes a Principal from a valid bearer token.
//
// It never rejects a request: missing, malformed and expired tokens all
// degrade to "no principal", and the access policy downstream decides whether
// that matters for the requested resource. Paths on the skip matcher and
// CORS preflight requests pass through without even looking at the header.
func Authn(codec *jwtx.Codec, skip *PathMatcher) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || (skip != nil && skip.Match(r.URL.Path)) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()

			// Idempotent: an earlier gate already authenticated this request.
			if _, ok := PrincipalFromContext(ctx); ok {
				next.ServeHTTP(w, r)
				return
			}

			raw := BearerToken(r)
			if raw != "" && codec.IsValid(raw) {
				subject, err := codec.ExtractSubject(raw)
				if err == nil {
					// IsValid already proved the token decodes, so role
					// extraction cannot hard-fail here.
					roles, _ := codec.ExtractRoles(raw)

					ctx = ContextWithPrincipal(ctx, Principal{
						Subject: subject,
						Roles:   NormalizeRoles(roles),
					})
					slogx.FromContext(ctx).Debug("request authenticated", "subject", subject)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the bearer credential from the Authorization header.
// Absent header or a foreign scheme both come back as "".
func BearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, bearerScheme) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, bearerScheme))
}
