package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSignJWTRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENV", "dev")

	token, err := SignJWT(Claims{Sub: "google:u1", Email: "u1@example.com"})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}

	claims, err := VerifyJWT(token)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}
	if claims.Sub != "google:u1" || claims.Email != "u1@example.com" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.Iss != Issuer {
		t.Fatalf("issuer = %q, want %q", claims.Iss, Issuer)
	}
	if claims.Exp <= claims.Iat {
		t.Fatalf("expiry %d not after issue %d", claims.Exp, claims.Iat)
	}
}

func TestSignJWTRequiresSub(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	if _, err := SignJWT(Claims{Email: "nobody@example.com"}); err == nil {
		t.Fatal("expected error for empty sub")
	}
}

func TestVerifyJWTRejectsForeignIssuer(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENV", "dev")

	token, err := SignJWT(Claims{Sub: "google:u1", Iss: "someone-else"})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	if _, err := VerifyJWT(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyJWTRejectsExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	past := time.Now().UTC().Add(-time.Hour).Unix()
	token, err := SignJWT(Claims{Sub: "google:u1", Iat: past - 60, Exp: past})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	if _, err := VerifyJWT(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyJWTRejectsTamperedPayload(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := SignJWT(Claims{Sub: "google:u1"})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}

	parts := strings.Split(token, ".")
	forged, _ := json.Marshal(Claims{Iss: Issuer, Sub: "google:u2"})
	parts[1] = base64.RawURLEncoding.EncodeToString(forged)

	if _, err := VerifyJWT(strings.Join(parts, ".")); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
