package httpx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchPath(t *testing.T) {
	t.Parallel()

	cases := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/auth/login", "/auth/login", true},
		{"/auth/login", "/auth/login/extra", false},
		{"/auth/login", "/auth", false},
		{"/swagger/**", "/swagger/index.html", true},
		{"/swagger/**", "/swagger/a/b/c", true},
		{"/swagger/**", "/swagger", true},
		{"/swagger/**", "/swaggerx", false},
		{"/users/*", "/users/abc", true},
		{"/users/*", "/users/abc/phones", false},
		{"/users/**", "/users", true},
		{"/users/**", "/users/abc/phones", true},
		{"/*/docs", "/v3/docs", true},
		{"/*/docs", "/docs", false},
		{"/livez", "/livez", true},
	}

	for _, tc := range cases {
		t.Run(tc.pattern+" vs "+tc.path, func(t *testing.T) {
			require.Equal(t, tc.want, MatchPath(tc.pattern, tc.path))
		})
	}
}

func TestPathMatcherAnyOf(t *testing.T) {
	t.Parallel()

	m := NewPathMatcher("/auth/login", "/swagger/**", "/livez")
	require.True(t, m.Match("/auth/login"))
	require.True(t, m.Match("/swagger/doc.json"))
	require.True(t, m.Match("/livez"))
	require.False(t, m.Match("/users/123"))
}
