package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the JWT claims this system cares about. The subject is
// the user id; the display name comes from the user_metadata block the
// identity provider attaches.
type Claims struct {
	jwt.RegisteredClaims
	Email        string                 `json:"email,omitempty"`
	Role         string                 `json:"role,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// DisplayName returns the best human-readable name available in the
// claims, falling back to the email local part and then the subject.
func (c *Claims) DisplayName() string {
	if c.UserMetadata != nil {
		for _, key := range []string{"full_name", "name", "username"} {
			if v, ok := c.UserMetadata[key].(string); ok && v != "" {
				return v
			}
		}
	}
	if c.Email != "" {
		for i, r := range c.Email {
			if r == '@' {
				return c.Email[:i]
			}
		}
		return c.Email
	}
	return c.Subject
}
