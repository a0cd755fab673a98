package jwtx

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// roleClaimKeys are the claim names checked for a role list, in priority
// order. Issuance always writes "roles"; the fallbacks keep extraction
// tolerant of tokens minted by other issuers.
var roleClaimKeys = []string{"roles", "authorities", "scope"}

// Claims are the decoded fields carried inside a token.
type Claims struct {
	Subject   string
	Roles     []string
	IssuedAt  time.Time // zero when the claim is absent
	ExpiresAt time.Time // zero when the claim is absent
}

// newClaims lifts verified MapClaims into the typed form.
func newClaims(mc jwt.MapClaims) Claims {
	var c Claims

	if sub, err := mc.GetSubject(); err == nil {
		c.Subject = sub
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}

	for _, key := range roleClaimKeys {
		if raw, ok := mc[key]; ok && raw != nil {
			c.Roles = normalizeRoleClaim(raw)
			break
		}
	}
	if c.Roles == nil {
		c.Roles = []string{}
	}

	return c
}

// normalizeRoleClaim turns whatever shape the role claim arrived in into a
// trimmed, non-blank string slice. Two variants exist in the wild: a
// sequence of strings, or a single delimited string (comma or whitespace).
func normalizeRoleClaim(raw any) []string {
	switch v := raw.(type) {
	case []string:
		return cleanRoles(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return cleanRoles(parts)
	case string:
		return SplitRoles(v)
	default:
		s := strings.TrimSpace(fmt.Sprint(v))
		if s == "" {
			return []string{}
		}
		return SplitRoles(s)
	}
}

// SplitRoles splits a delimited role string: on commas when any are present,
// otherwise on runs of whitespace. Blank entries are dropped.
func SplitRoles(s string) []string {
	var parts []string
	if strings.Contains(s, ",") {
		parts = strings.Split(s, ",")
	} else {
		parts = strings.Fields(s)
	}
	return cleanRoles(parts)
}

func cleanRoles(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
