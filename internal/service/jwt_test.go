package service

import (
	"errors"
	"testing"
)

func TestPlayerTokenRoundTrip(t *testing.T) {
	InitJWT("test-secret")

	token, err := GeneratePlayerToken(42, 7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	playerID, sessionID, err := ParsePlayerToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if playerID != 42 || sessionID != 7 {
		t.Fatalf("claims = (%d, %d), want (42, 7)", playerID, sessionID)
	}
}

func TestAdminTokenRoundTrip(t *testing.T) {
	InitJWT("test-secret")

	token, err := GenerateAdminToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := ParseAdminToken(token); err != nil {
		t.Fatalf("parse: %v", err)
	}
}

func TestPlayerTokenIsNotAdmin(t *testing.T) {
	InitJWT("test-secret")

	token, err := GeneratePlayerToken(1, 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if err := ParseAdminToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("ParseAdminToken(player token) = %v, want ErrInvalidToken", err)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	InitJWT("test-secret")

	token, err := GeneratePlayerToken(1, 1)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	InitJWT("other-secret")
	if _, _, err := ParsePlayerToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("parse with wrong secret = %v, want ErrInvalidToken", err)
	}
}
