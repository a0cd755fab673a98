package http

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/arkelhq/userapi/internal/userapi/domain"
)

// LoginRequest is the credential pair submitted to POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"    example:"alice@example.com"`
	Password string `json:"password" example:"Password123"`
}

// TokenResponse carries the issued bearer token back to the client.
type TokenResponse struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

type PhoneRequest struct {
	Number      string `json:"number"       example:"1234567"`
	CityCode    string `json:"city_code"    example:"1"`
	CountryCode string `json:"country_code" example:"57"`
}

// UserRequest is the create/update payload for user records.
type UserRequest struct {
	Name     string         `json:"name"     example:"Alice Example"`
	Email    string         `json:"email"    example:"alice@example.com"`
	Password string         `json:"password" example:"Password123"`
	Active   *bool          `json:"isactive,omitempty"`
	Roles    string         `json:"roles,omitempty" example:"USER"`
	Phones   []PhoneRequest `json:"phones"`
}

type PhoneResponse struct {
	Number      string `json:"number"`
	CityCode    string `json:"city_code"`
	CountryCode string `json:"country_code"`
}

type UserResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Roles       []string        `json:"roles"`
	Active      bool            `json:"isactive"`
	Token       string          `json:"token,omitempty"`
	Phones      []PhoneResponse `json:"phones"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
}

func toUserResponse(u domain.User) UserResponse {
	phones := make([]PhoneResponse, 0, len(u.Phones))
	for _, p := range u.Phones {
		phones = append(phones, PhoneResponse{
			Number:      p.Number,
			CityCode:    p.CityCode,
			CountryCode: p.CountryCode,
		})
	}
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Roles:       u.RoleList(),
		Active:      u.Active,
		Token:       u.Token,
		Phones:      phones,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

func toDomainPhones(in []PhoneRequest) []domain.Phone {
	phones := make([]domain.Phone, 0, len(in))
	for _, p := range in {
		phones = append(phones, domain.Phone{
			Number:      p.Number,
			CityCode:    p.CityCode,
			CountryCode: p.CountryCode,
		})
	}
	return phones
}

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

func validEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// validPassword enforces the signup password rule: 8-64 characters with at
// least one upper-case letter, one lower-case letter and two digits.
func validPassword(password string) bool {
	if len(password) < 8 || len(password) > 64 {
		return false
	}
	var upper, lower, digits int
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper++
		case unicode.IsLower(r):
			lower++
		case unicode.IsDigit(r):
			digits++
		}
	}
	return upper >= 1 && lower >= 1 && digits >= 2
}
