package domain

import (
	"strings"
	"time"
)

// DefaultRole is assigned to users created without an explicit role list.
const DefaultRole = "USER"

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // bcrypt encoded
	Roles        string // comma-separated role tags, as stored
	Active       bool
	Token        string // most recently issued access token
	Phones       []Phone
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

// RoleList splits the stored role string into trimmed, non-empty tags.
func (u User) RoleList() []string {
	parts := strings.Split(u.Roles, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

type Phone struct {
	ID          int64
	Number      string
	CityCode    string
	CountryCode string
}
