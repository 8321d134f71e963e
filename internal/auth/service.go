package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/parkinglot-backend/internal/users"
	pkgAuth "github.com/angelmondragon/parkinglot-backend/pkg/auth"
	"github.com/angelmondragon/parkinglot-backend/pkg/auth/session"
	"github.com/angelmondragon/parkinglot-backend/pkg/clock"
	"github.com/angelmondragon/parkinglot-backend/pkg/config"
	"github.com/angelmondragon/parkinglot-backend/pkg/db/models"
	"github.com/angelmondragon/parkinglot-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/parkinglot-backend/pkg/errors"
	"github.com/angelmondragon/parkinglot-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// ErrInvalidCredentials is returned for any login failure so callers cannot
// tell unknown emails from bad passwords.
var ErrInvalidCredentials = pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	AdminLogin(ctx context.Context, req LoginRequest) (*AdminLoginResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error)
	Logout(ctx context.Context, accessID string) error
}

type service struct {
	users   userRepository
	session sessionManager
	jwtCfg  config.JWTConfig
	admin   config.AdminConfig
	clock   clock.Clock
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	AdminConfig    config.AdminConfig
	Clock          clock.Clock
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.Clock == nil {
		params.Clock = clock.NewSystem()
	}
	return &service{
		users:   params.UserRepo,
		session: params.SessionManager,
		jwtCfg:  params.JWTConfig,
		admin:   params.AdminConfig,
		clock:   params.Clock,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now

	userID := user.ID
	pair, err := s.issue(ctx, now, pkgAuth.AccessTokenPayload{
		UserID: &userID,
		Role:   enums.PrincipalRoleUser,
	})
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		TokenPair: *pair,
		User:      users.FromModel(user),
	}, nil
}

// AdminLogin authenticates the configured operator. The admin has no users
// row; its token carries the admin role and the configured email as subject.
func (s *service) AdminLogin(ctx context.Context, req LoginRequest) (*AdminLoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	configured := strings.ToLower(strings.TrimSpace(s.admin.Email))
	if email == "" || configured == "" || s.admin.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	valid, err := security.VerifyPassword(req.Password, s.admin.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify admin password")
	}
	if !valid || email != configured {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issue(ctx, s.clock.Now(), pkgAuth.AccessTokenPayload{
		Subject: configured,
		Role:    enums.PrincipalRoleAdmin,
	})
	if err != nil {
		return nil, err
	}

	return &AdminLoginResponse{
		TokenPair: *pair,
		Admin: AdminProfile{
			Email: configured,
			Name:  s.admin.DisplayName,
		},
	}, nil
}

// Refresh rotates the session tied to the access token's jti and mints a new
// access token for the same principal.
func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, strings.TrimSpace(req.AccessToken))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}

	if claims.Role == enums.PrincipalRoleUser {
		if claims.UserID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
		}
		if _, err := s.users.FindByID(ctx, *claims.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
		}
	}

	accessID, refreshToken, err := s.session.Rotate(ctx, claims.ID, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	now := s.clock.Now()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID:  claims.UserID,
		Subject: claims.Subject,
		Role:    claims.Role,
		JTI:     accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    s.expiry(now),
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) issue(ctx context.Context, now time.Time, payload pkgAuth.AccessTokenPayload) (*TokenPair, error) {
	payload.JTI = session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, payload.JTI)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    s.expiry(now),
	}, nil
}

func (s *service) expiry(now time.Time) time.Time {
	return now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute)
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.TrimSpace(email)
	if input == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
