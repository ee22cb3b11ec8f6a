package userauth

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the claim set carried by access tokens. The subject
// is the user ID; phone and role ride along so consumers never hit the
// database for routine authorization checks.
type AccessClaims struct {
	jwt.RegisteredClaims
	Phone    string   `json:"phone,omitempty"`
	UserRole UserRole `json:"role,omitempty"`
}

// Role returns the role claim.
func (c *AccessClaims) Role() UserRole {
	if c == nil {
		return ""
	}
	return c.UserRole
}

// UserID returns the subject claim.
func (c *AccessClaims) UserID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}
