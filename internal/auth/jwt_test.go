package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"exampro/internal/model"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("secret", "issuer", time.Minute)
	token, _, err := svc.Issue(model.User{ID: 7, Email: "marie@etudiant.com", Role: model.RoleStudent})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	if claims.UserID != 7 || claims.Email != "marie@etudiant.com" || claims.Role != model.RoleStudent {
		t.Fatalf("unexpected claims")
	}
	if claims.ID == "" {
		t.Fatalf("expected token id")
	}
}

func TestTokenExpiry(t *testing.T) {
	issuedAt := time.Date(2026, 1, 25, 9, 0, 0, 0, time.UTC)
	svc := NewTokenService("secret", "issuer", 0).WithClock(fixedClock(issuedAt))
	if svc.TTL() != 24*time.Hour {
		t.Fatalf("expected default ttl of 24h, got %s", svc.TTL())
	}
	token, _, err := svc.Issue(model.User{ID: 1, Email: "admin@x.com", Role: model.RoleAdministrator})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	svc.WithClock(fixedClock(issuedAt.Add(23 * time.Hour)))
	if _, err := svc.Verify(token); err != nil {
		t.Fatalf("expected token valid before expiry, got %v", err)
	}

	svc.WithClock(fixedClock(issuedAt.Add(24*time.Hour + time.Second)))
	if _, err := svc.Verify(token); err != ErrTokenExpired {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenRejectsTampering(t *testing.T) {
	svc := NewTokenService("secret", "issuer", time.Hour)
	token, _, err := svc.Issue(model.User{ID: 1, Email: "admin@x.com", Role: model.RoleAdministrator})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	other := NewTokenService("other-secret", "issuer", time.Hour)
	if _, err := other.Verify(token); err != ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid for bad signature, got %v", err)
	}

	wrongIssuer := NewTokenService("secret", "someone-else", time.Hour)
	if _, err := wrongIssuer.Verify(token); err != ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid for wrong issuer, got %v", err)
	}

	if _, err := svc.Verify(token + "x"); err != ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid for mangled token, got %v", err)
	}
	if _, err := svc.Verify(""); err != ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid for empty token, got %v", err)
	}
}

func TestTokenRejectsUnknownRoleAndAlgorithm(t *testing.T) {
	svc := NewTokenService("secret", "", time.Hour)

	claims := Claims{
		UserID: 3,
		Email:  "x@y.z",
		Role:   "superuser",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}
	if _, err := svc.Verify(signed); err != ErrTokenInvalid {
		t.Fatalf("expected unknown role rejected, got %v", err)
	}

	claims.Role = model.RoleTeacher
	signed, err = jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}
	if _, err := svc.Verify(signed); err != ErrTokenInvalid {
		t.Fatalf("expected HS512 rejected, got %v", err)
	}
}

func TestRemaining(t *testing.T) {
	issuedAt := time.Date(2026, 1, 25, 9, 0, 0, 0, time.UTC)
	svc := NewTokenService("secret", "issuer", time.Hour).WithClock(fixedClock(issuedAt))
	_, claims, err := svc.Issue(model.User{ID: 1, Email: "a@b.c", Role: model.RoleDirector})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	svc.WithClock(fixedClock(issuedAt.Add(15 * time.Minute)))
	if got := svc.Remaining(claims); got != 45*time.Minute {
		t.Fatalf("expected 45m remaining, got %s", got)
	}
	svc.WithClock(fixedClock(issuedAt.Add(2 * time.Hour)))
	if got := svc.Remaining(claims); got != 0 {
		t.Fatalf("expected 0 remaining, got %s", got)
	}
}
