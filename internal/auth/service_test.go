package auth

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/angelmondragon/parkinglot-backend/pkg/auth"
	"github.com/angelmondragon/parkinglot-backend/pkg/auth/session"
	"github.com/angelmondragon/parkinglot-backend/pkg/clock"
	"github.com/angelmondragon/parkinglot-backend/pkg/config"
	"github.com/angelmondragon/parkinglot-backend/pkg/db/models"
	"github.com/angelmondragon/parkinglot-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/parkinglot-backend/pkg/errors"
	"github.com/angelmondragon/parkinglot-backend/pkg/security"
)

var testJWT = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "parking",
	ExpirationMinutes: 30,
}

var testArgon = config.PasswordConfig{
	ArgonMemoryKB:    8 * 1024,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func TestServiceLoginIssuesUserToken(t *testing.T) {
	password := "parker-secret"
	user := testUser(t, password)
	svc, sessions := buildTestService(t, user)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "  PARKER@example.com ", Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Role != enums.PrincipalRoleUser {
		t.Fatalf("expected user role claim, got %s", claims.Role)
	}
	if claims.UserID == nil || *claims.UserID != user.ID {
		t.Fatalf("expected user id %s, got %v", user.ID, claims.UserID)
	}
	if resp.RefreshToken == "" || sessions.tokens[claims.ID] != resp.RefreshToken {
		t.Fatalf("expected refresh token stored under jti %s", claims.ID)
	}
	if resp.User == nil || resp.User.LastLoginAt == nil {
		t.Fatal("expected user dto with last login")
	}
}

func TestServiceLoginRejectsBadPassword(t *testing.T) {
	user := testUser(t, "right-password")
	svc, _ := buildTestService(t, user)

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "wrong-password"})
	if err == nil {
		t.Fatal("expected unauthorized")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}

func TestServiceLoginUnknownEmail(t *testing.T) {
	svc, _ := buildTestService(t, nil)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever1"})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestServiceAdminLogin(t *testing.T) {
	svc, _ := buildTestService(t, nil)

	resp, err := svc.AdminLogin(context.Background(), LoginRequest{Email: "Admin@Example.com", Password: "admin-secret"})
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse admin token: %v", err)
	}
	if !claims.IsAdmin() {
		t.Fatalf("expected admin role, got %s", claims.Role)
	}
	if claims.UserID != nil {
		t.Fatalf("admin token must not carry a user id")
	}
	if claims.Subject != "admin@example.com" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if resp.Admin.Name != "Operator" {
		t.Fatalf("unexpected admin name %q", resp.Admin.Name)
	}
}

func TestServiceAdminLoginRejectsWrongCredentials(t *testing.T) {
	svc, _ := buildTestService(t, nil)

	cases := []LoginRequest{
		{Email: "admin@example.com", Password: "nope-nope"},
		{Email: "someone@example.com", Password: "admin-secret"},
		{Email: "", Password: "admin-secret"},
	}
	for _, req := range cases {
		if _, err := svc.AdminLogin(context.Background(), req); pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
			t.Fatalf("expected unauthorized for %q, got %v", req.Email, err)
		}
	}
}

func TestServiceRefreshRotatesSession(t *testing.T) {
	password := "parker-secret"
	user := testUser(t, password)
	svc, sessions := buildTestService(t, user)

	login, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	oldClaims, err := pkgAuth.ParseAccessToken(testJWT, login.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	pair, err := svc.Refresh(context.Background(), RefreshRequest{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	newClaims, err := pkgAuth.ParseAccessToken(testJWT, pair.AccessToken)
	if err != nil {
		t.Fatalf("parse refreshed: %v", err)
	}
	if newClaims.ID == oldClaims.ID {
		t.Fatal("expected a new jti after refresh")
	}
	if _, ok := sessions.tokens[oldClaims.ID]; ok {
		t.Fatal("expected old session to be revoked")
	}
	if newClaims.UserID == nil || *newClaims.UserID != user.ID {
		t.Fatal("expected refreshed token to keep the user id")
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected reused refresh token to be rejected, got %v", err)
	}
}

func TestServiceLogoutRevokesSession(t *testing.T) {
	password := "parker-secret"
	user := testUser(t, password)
	svc, sessions := buildTestService(t, user)

	login, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: password})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, _ := pkgAuth.ParseAccessToken(testJWT, login.AccessToken)

	if err := svc.Logout(context.Background(), claims.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.tokens) != 0 {
		t.Fatalf("expected no sessions left, got %d", len(sessions.tokens))
	}
	if err := svc.Logout(context.Background(), " "); pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for empty access id, got %v", err)
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected error without user repository")
	}
	if _, err := NewService(ServiceParams{UserRepo: stubUserRepo{}}); err == nil {
		t.Fatal("expected error without session manager")
	}
}

func buildTestService(t *testing.T, user *models.User) (Service, *stubSessionManager) {
	t.Helper()
	sessions := &stubSessionManager{tokens: map[string]string{}}
	svc, err := NewService(ServiceParams{
		UserRepo:       stubUserRepo{user: user},
		SessionManager: sessions,
		JWTConfig:      testJWT,
		AdminConfig: config.AdminConfig{
			Email:        "admin@example.com",
			PasswordHash: mustHashPassword(t, "admin-secret"),
			DisplayName:  "Operator",
		},
		Clock: clock.NewSystem(),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, sessions
}

func testUser(t *testing.T, password string) *models.User {
	t.Helper()
	return &models.User{
		ID:           uuid.New(),
		Email:        "parker@example.com",
		PasswordHash: mustHashPassword(t, password),
		Name:         "Pat Parker",
		Address:      "1 Test Street",
		PostalCode:   "560001",
	}
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, testArgon)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

type stubUserRepo struct {
	user *models.User
}

func (s stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user == nil || !strings.EqualFold(s.user.Email, email) {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s stubUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.user != nil && s.user.ID == id {
		s.user.LastLoginAt = &at
	}
	return nil
}

type stubSessionManager struct {
	tokens map[string]string
	seq    int
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	s.seq++
	token := fmt.Sprintf("refresh-%d", s.seq)
	s.tokens[accessID] = token
	return token, nil
}

func (s *stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	stored, ok := s.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.tokens, oldAccessID)
	newID := session.NewAccessID()
	token, _ := s.Generate(ctx, newID)
	return newID, token, nil
}

func (s *stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	delete(s.tokens, accessID)
	return nil
}
