package auth

import (
	"strings"
	"testing"
	"time"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	token, err := SignJWT(Claims{Sub: "user-1", Email: "u@example.com", Name: "User One"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := VerifyJWT(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Sub != "user-1" {
		t.Fatalf("expected sub user-1, got %q", claims.Sub)
	}
	if claims.Email != "u@example.com" {
		t.Fatalf("expected email preserved, got %q", claims.Email)
	}
	if claims.Exp == 0 || claims.Iat == 0 {
		t.Fatal("expected exp and iat to be populated")
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	token, err := SignJWT(Claims{Sub: "user-1"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	parts := strings.Split(token, ".")
	parts[2] = parts[2][:len(parts[2])-2] + "xx"
	if _, err := VerifyJWT(strings.Join(parts, ".")); err == nil {
		t.Fatal("expected error for tampered signature")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	past := time.Now().UTC().Add(-time.Hour).Unix()
	token, err := SignJWT(Claims{Sub: "user-1", Iat: past - 3600, Exp: past})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := VerifyJWT(token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	if _, err := VerifyJWT("not-a-token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}
