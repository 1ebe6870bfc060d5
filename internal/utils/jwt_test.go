package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

const testSecret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	id := uuid.New()

	token, err := GenerateToken(testSecret, id, "a@x.com", true, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}

	parsedID, err := claims.CollectorID()
	if err != nil {
		t.Fatalf("CollectorID: %v", err)
	}

	if parsedID != id {
		t.Errorf("expected subject %s, got %s", id, parsedID)
	}
	if claims.Email != "a@x.com" {
		t.Errorf("expected email a@x.com, got %s", claims.Email)
	}
	if !claims.IsAdmin {
		t.Error("expected admin flag to survive the round trip")
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken(testSecret, uuid.New(), "a@x.com", false, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ParseToken("other-secret", token); err == nil {
		t.Fatal("expected verification failure with the wrong secret")
	}
}

func TestParseTokenExpired(t *testing.T) {
	token, err := GenerateToken(testSecret, uuid.New(), "a@x.com", false, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ParseToken(testSecret, token); err == nil {
		t.Fatal("expected expired token to fail parsing")
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, err := ParseToken(testSecret, "not-a-token"); err == nil {
		t.Fatal("expected malformed token to fail parsing")
	}
}
