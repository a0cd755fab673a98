package httpx

import (
	"context"
	"slices"
	"strings"
)

// RolePrefix qualifies role names inside a Principal so that plain role tags
// from tokens ("USER") and already-qualified ones ("ROLE_USER") compare equal.
const RolePrefix = "ROLE_"

// Principal is the authenticated identity attached to a request by the
// authentication gate. It lives for exactly one request and is rebuilt from
// the token every time; nothing is cached across requests.
type Principal struct {
	Subject string
	Roles   []string // ROLE_-qualified, upper-case
}

// HasAnyRole reports whether the principal holds at least one of the given
// roles. Inputs may be bare or ROLE_-qualified.
func (p Principal) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if slices.Contains(p.Roles, NormalizeRole(r)) {
			return true
		}
	}
	return false
}

// NormalizeRole upper-cases a role tag and adds the ROLE_ prefix when missing.
// Blank input stays blank.
func NormalizeRole(role string) string {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role == "" {
		return ""
	}
	if !strings.HasPrefix(role, RolePrefix) {
		role = RolePrefix + role
	}
	return role
}

// NormalizeRoles maps NormalizeRole over a list, dropping blanks.
func NormalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if n := NormalizeRole(r); n != "" {
			out = append(out, n)
		}
	}
	return out
}

type ctxKey struct{}

// ContextWithPrincipal attaches the principal for the remainder of the
// request's context chain.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFromContext returns the request principal, if one was established.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}
