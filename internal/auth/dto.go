package auth

import (
	"time"

	"github.com/angelmondragon/parkinglot-backend/internal/users"
)

// LoginRequest captures the credentials sent to either login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the (possibly expired) access token and the refresh
// token issued alongside it.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenPair is a freshly minted access token plus its refresh token.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// LoginResponse is returned to parkers after a successful login.
type LoginResponse struct {
	TokenPair
	User *users.UserDTO `json:"user"`
}

// AdminProfile describes the configured operator.
type AdminProfile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AdminLoginResponse is returned after a successful admin login.
type AdminLoginResponse struct {
	TokenPair
	Admin AdminProfile `json:"admin"`
}
