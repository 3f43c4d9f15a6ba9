package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims represents the payload of a CampusHub session token.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	TenantID string   `json:"tenant_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	jwt.RegisteredClaims
}

// Session is the explicit per-request session context. It is built from a validated
// token when a request enters and dropped when the request ends.
type Session struct {
	UserID   string
	TenantID string
	Role     UserRole
	Email    string
}

// Session converts validated claims into a session context.
func (c *JWTClaims) Session() *Session {
	if c == nil {
		return nil
	}
	return &Session{UserID: c.UserID, TenantID: c.TenantID, Role: c.Role, Email: c.Email}
}

// IsPlatformAdmin reports whether the session belongs to the platform-level admin.
func (s *Session) IsPlatformAdmin() bool {
	return s != nil && s.Role == RoleSuperAdmin
}
