package auth

import (
	"github.com/angelmondragon/parkinglot-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
// Admin tokens carry no UserID; the subject is the configured admin email.
type AccessTokenPayload struct {
	UserID  *uuid.UUID
	Subject string
	Role    enums.PrincipalRole
	JTI     string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID *uuid.UUID          `json:"user_id,omitempty"`
	Role   enums.PrincipalRole `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token belongs to the configured operator.
func (c *AccessTokenClaims) IsAdmin() bool {
	return c != nil && c.Role == enums.PrincipalRoleAdmin
}
