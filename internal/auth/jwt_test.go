package auth

import (
	"testing"
	"time"

	"github.com/erazemk/toolshed/internal/model"
)

func TestSignAndReadToken(t *testing.T) {
	token, err := SignToken("test-secret", 7, "alice", model.RoleUser, time.Hour)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	claims, err := ReadToken(token)
	if err != nil {
		t.Fatalf("ReadToken: %v", err)
	}
	if claims.UserID != 7 {
		t.Errorf("expected user_id 7, got %d", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Errorf("expected username from subject, got %q", claims.Username)
	}
	if claims.Role != model.RoleUser {
		t.Errorf("expected role 'user', got %q", claims.Role)
	}
}

func TestReadTokenIgnoresSignature(t *testing.T) {
	// The client never holds the backend key.
	token, _ := SignToken("backend-only", 1, "admin", model.RoleAdmin, time.Hour)
	if _, err := ReadToken(token); err != nil {
		t.Fatalf("ReadToken should not verify signature: %v", err)
	}
}

func TestReadTokenInvalid(t *testing.T) {
	if _, err := ReadToken("not-a-token"); err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := SignToken("secret1", 1, "admin", model.RoleAdmin, time.Hour)

	if _, err := ValidateToken("secret2", token); err == nil {
		t.Error("expected error for wrong secret")
	}
	if _, err := ValidateToken("secret1", token); err != nil {
		t.Errorf("ValidateToken: %v", err)
	}
}

func TestNewIdentity(t *testing.T) {
	token, _ := SignToken("s", 42, "bob", model.RoleAdmin, time.Hour)

	// Missing fields come from the token.
	id := NewIdentity(token, "", "", 0)
	if id.UserID != 42 || id.Username != "bob" || id.Role != model.RoleAdmin {
		t.Errorf("unexpected identity from token: %+v", id)
	}
	diff := time.Until(id.ExpiresAt)
	if diff < 55*time.Minute || diff > 65*time.Minute {
		t.Errorf("expiry too far from expected: %v", diff)
	}

	// Login response values win.
	id = NewIdentity(token, "robert", model.RoleUser, 9)
	if id.UserID != 9 || id.Username != "robert" || id.Role != model.RoleUser {
		t.Errorf("login response values should win: %+v", id)
	}

	// Opaque tokens are kept as-is.
	id = NewIdentity("opaque", "carol", model.RoleUser, 3)
	if id.Token != "opaque" || id.Username != "carol" || !id.ExpiresAt.IsZero() {
		t.Errorf("unexpected identity for opaque token: %+v", id)
	}
}
