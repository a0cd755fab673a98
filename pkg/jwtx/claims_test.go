package jwtx

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// signRaw signs arbitrary claims with the test key so we can exercise role
// claim shapes the codec itself never writes.
func signRaw(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testKey)
	require.NoError(t, err)
	return signed
}

func TestExtractRolesClaimFallback(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)

	t.Run("roles wins over authorities and scope", func(t *testing.T) {
		token := signRaw(t, jwt.MapClaims{
			"sub":         "alice",
			"roles":       []string{"USER"},
			"authorities": []string{"ADMIN"},
			"scope":       "AUDITOR",
		})

		roles, err := c.ExtractRoles(token)
		require.NoError(t, err)
		require.Equal(t, []string{"USER"}, roles)
	})

	t.Run("authorities wins over scope", func(t *testing.T) {
		token := signRaw(t, jwt.MapClaims{
			"sub":         "alice",
			"authorities": []string{"ADMIN"},
			"scope":       "AUDITOR",
		})

		roles, err := c.ExtractRoles(token)
		require.NoError(t, err)
		require.Equal(t, []string{"ADMIN"}, roles)
	})

	t.Run("scope as last resort", func(t *testing.T) {
		token := signRaw(t, jwt.MapClaims{"sub": "alice", "scope": "AUDITOR"})

		roles, err := c.ExtractRoles(token)
		require.NoError(t, err)
		require.Equal(t, []string{"AUDITOR"}, roles)
	})

	t.Run("no role claim yields empty slice", func(t *testing.T) {
		token := signRaw(t, jwt.MapClaims{"sub": "alice"})

		roles, err := c.ExtractRoles(token)
		require.NoError(t, err)
		require.NotNil(t, roles)
		require.Empty(t, roles)
	})

	t.Run("malformed token propagates the decode error", func(t *testing.T) {
		_, err := c.ExtractRoles("definitely.not.ajwt")
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestExtractRolesNormalization(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)

	cases := []struct {
		name  string
		claim any
		want  []string
	}{
		{"string list", []string{" USER ", "ADMIN", ""}, []string{"USER", "ADMIN"}},
		{"comma separated", "USER, ADMIN,,AUDITOR ", []string{"USER", "ADMIN", "AUDITOR"}},
		{"whitespace separated", "USER  ADMIN\tAUDITOR", []string{"USER", "ADMIN", "AUDITOR"}},
		{"single value", "USER", []string{"USER"}},
		{"blank string", "   ", []string{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token := signRaw(t, jwt.MapClaims{"sub": "alice", "roles": tc.claim})

			roles, err := c.ExtractRoles(token)
			require.NoError(t, err)
			require.Equal(t, tc.want, roles)
		})
	}
}

func TestRoundTripMatchesSplitRoles(t *testing.T) {
	t.Parallel()

	c := newTestCodec(t)

	// Roles supplied as a pre-split list and as a single CSV string must
	// normalize to the same set.
	fromList, err := c.Issue("alice", []string{"USER", "ADMIN"})
	require.NoError(t, err)
	fromCSV, err := c.Issue("alice", SplitRoles("USER, ADMIN"))
	require.NoError(t, err)

	listRoles, err := c.ExtractRoles(fromList)
	require.NoError(t, err)
	csvRoles, err := c.ExtractRoles(fromCSV)
	require.NoError(t, err)
	require.ElementsMatch(t, listRoles, csvRoles)
}

func TestSplitRoles(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"USER", "ADMIN"}, SplitRoles("USER,ADMIN"))
	require.Equal(t, []string{"USER", "ADMIN"}, SplitRoles("USER ADMIN"))
	require.Equal(t, []string{"USER"}, SplitRoles(" USER , "))
	require.Empty(t, SplitRoles(""))
}
