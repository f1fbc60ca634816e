package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin marks tokens allowed to hit the admin order endpoints.
const RoleAdmin = "admin"

// AccessTokenClaims is the shape of tokens minted by the identity provider.
// The owner id rides in the registered subject claim.
type AccessTokenClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// OwnerID returns the identity the token was issued for.
func (c *AccessTokenClaims) OwnerID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}

// IsAdmin reports whether the token carries the admin role.
func (c *AccessTokenClaims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}
