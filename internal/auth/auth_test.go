package auth

import (
	"testing"
	"time"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "s3cret") {
		t.Fatalf("expected password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("expected wrong password to be rejected")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	tok, err := SignJWT(42, "agent", "sess-token", "secret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := ParseJWT(tok, "secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("expected uid 42, got %d", claims.UserID)
	}
	if claims.Role != "agent" {
		t.Fatalf("expected role to round-trip, got %q", claims.Role)
	}
	if claims.Session != "sess-token" {
		t.Fatalf("expected session token to round-trip, got %q", claims.Session)
	}

	if _, err := ParseJWT(tok, "other-secret"); err == nil {
		t.Fatalf("expected signature mismatch to fail")
	}
}

func TestJWTExpired(t *testing.T) {
	tok, err := SignJWT(1, "agent", "s", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseJWT(tok, "secret"); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}
