package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// MinKeyBytes is the minimum HS256 key length. Anything shorter than the
	// HMAC-SHA256 block width weakens the signature, so startup refuses it.
	MinKeyBytes = 32

	// DefaultTTL is the validity window stamped onto issued tokens.
	DefaultTTL = 10 * time.Minute
)

var (
	// ErrKeyTooShort reports a signing key under MinKeyBytes.
	ErrKeyTooShort = fmt.Errorf("jwtx: signing key must be at least %d bytes", MinKeyBytes)

	// ErrInvalidToken reports a token that failed signature verification or
	// is structurally malformed. Expiry is NOT part of this check; see
	// (*Codec).IsValid.
	ErrInvalidToken = errors.New("jwtx: invalid token")
)

// Codec issues and verifies HS256-signed access tokens with a fixed TTL.
// The key is read-only after construction, so a single Codec is safe for
// unlimited concurrent use.
type Codec struct {
	key []byte
	ttl time.Duration
}

// New builds a Codec from the shared symmetric key. A non-positive ttl
// falls back to DefaultTTL.
func New(secret []byte, ttl time.Duration) (*Codec, error) {
	if len(secret) < MinKeyBytes {
		return nil, ErrKeyTooShort
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	// Copy so a caller mutating its buffer can't swap the key under us.
	key := make([]byte, len(secret))
	copy(key, secret)

	return &Codec{key: key, ttl: ttl}, nil
}

// TTL returns the validity window applied to issued tokens.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs a token for subject carrying the given roles, valid from now
// until now plus the codec TTL.
func (c *Codec) Issue(subject string, roles []string) (string, error) {
	return c.IssueAt(subject, roles, time.Now().UTC())
}

// IssueAt is Issue with an explicit issue time. Exposed so callers that
// already hold "now" (and tests exercising expiry) stamp a consistent clock.
func (c *Codec) IssueAt(subject string, roles []string, now time.Time) (string, error) {
	if roles == nil {
		roles = []string{}
	}
	claims := jwt.MapClaims{
		"sub":   subject,
		"roles": roles,
		"iat":   jwt.NewNumericDate(now),
		"exp":   jwt.NewNumericDate(now.Add(c.ttl)),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and returns the embedded claims. It does not
// check expiry; callers that care use IsValid or inspect Claims.ExpiresAt.
// Any parse or signature failure comes back wrapping ErrInvalidToken.
func (c *Codec) Decode(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		// Expiry is checked separately so Decode keeps working on expired
		// but authentic tokens (subject extraction after the fact).
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	return newClaims(mc), nil
}

// IsValid reports whether the token is authentic and unexpired. Decode
// failures and expiry both collapse to false; callers needing the
// distinction use Decode directly.
func (c *Codec) IsValid(tokenStr string) bool {
	claims, err := c.Decode(tokenStr)
	if err != nil {
		return false
	}
	return claims.ExpiresAt.IsZero() || claims.ExpiresAt.After(time.Now())
}

// ExtractSubject decodes the token and returns its subject. Unlike IsValid
// this fails loudly: identity extraction is load-bearing.
func (c *Codec) ExtractSubject(tokenStr string) (string, error) {
	claims, err := c.Decode(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ExtractRoles decodes the token and returns its normalized role list. A
// token with no role claim yields an empty slice; a structurally invalid
// token propagates ErrInvalidToken.
func (c *Codec) ExtractRoles(tokenStr string) ([]string, error) {
	claims, err := c.Decode(tokenStr)
	if err != nil {
		return nil, err
	}
	return claims.Roles, nil
}
