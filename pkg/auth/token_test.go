package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/parkinglot-backend/pkg/config"
	"github.com/angelmondragon/parkinglot-backend/pkg/enums"
	"github.com/google/uuid"
)

func testJWTConfig(minutes int) config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "parking",
		ExpirationMinutes: minutes,
	}
}

func TestMintAndParseUserAccessToken(t *testing.T) {
	cfg := testJWTConfig(30)
	now := time.Now().UTC()
	userID := uuid.New()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		UserID: &userID,
		Role:   enums.PrincipalRoleUser,
		JTI:    "access-1",
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.UserID == nil || *claims.UserID != userID {
		t.Fatalf("expected user_id %s, got %v", userID, claims.UserID)
	}
	if claims.Role != enums.PrincipalRoleUser {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.IsAdmin() {
		t.Fatal("user token must not be admin")
	}
	if claims.Subject != userID.String() {
		t.Fatalf("expected subject to default to user id, got %q", claims.Subject)
	}
	if claims.ID != "access-1" {
		t.Fatalf("expected jti access-1, got %q", claims.ID)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	exp := now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp.UTC(), claims.ExpiresAt.UTC(), diff)
	}
}

func TestMintAdminAccessTokenWithoutUserID(t *testing.T) {
	cfg := testJWTConfig(30)

	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		Subject: "admin@example.com",
		Role:    enums.PrincipalRoleAdmin,
	})
	if err != nil {
		t.Fatalf("mint admin token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse admin token: %v", err)
	}
	if !claims.IsAdmin() {
		t.Fatal("expected admin claims")
	}
	if claims.UserID != nil {
		t.Fatalf("admin token must not carry a user id, got %v", claims.UserID)
	}
	if claims.Subject != "admin@example.com" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}
}

func TestMintUserTokenRequiresUserID(t *testing.T) {
	if _, err := MintAccessToken(testJWTConfig(5), time.Now(), AccessTokenPayload{Role: enums.PrincipalRoleUser}); err == nil {
		t.Fatal("expected missing user id error")
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := testJWTConfig(10)
	userID := uuid.New()

	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: &userID, Role: enums.PrincipalRoleUser})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if _, err = ParseAccessToken(cfg, token+"x"); err == nil {
		t.Fatal("expected invalid signature error")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := testJWTConfig(15)
	userID := uuid.New()

	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{UserID: &userID, Role: enums.PrincipalRoleUser})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = ParseAccessToken(cfg, token)
	if err == nil {
		t.Fatal("expected expiration error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	if err != nil {
		t.Fatalf("expected expired token to parse for refresh: %v", err)
	}
	if claims.ID == "" {
		t.Fatal("expected jti on expired token")
	}
}

func TestMintAccessTokenInvalidRole(t *testing.T) {
	userID := uuid.New()
	if _, err := MintAccessToken(testJWTConfig(5), time.Now(), AccessTokenPayload{UserID: &userID, Role: ""}); err == nil {
		t.Fatal("expected invalid role error")
	}
}
