package utils

import (
	"testing"
	"time"
)

func TestManager_IssueAndParse(t *testing.T) {
	m, err := NewManager("test-signing-key")
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	token, err := m.NewJWT(42, "admin", time.Minute)
	if err != nil {
		t.Fatalf("NewJWT: %v", err)
	}

	id, role, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if id != 42 || role != "admin" {
		t.Errorf("got id=%d role=%q, want 42/admin", id, role)
	}
}

func TestManager_ExpiredTokenRejected(t *testing.T) {
	m, _ := NewManager("test-signing-key")

	token, err := m.NewJWT(1, "user", -time.Minute)
	if err != nil {
		t.Fatalf("NewJWT: %v", err)
	}
	if _, _, err := m.Parse(token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestManager_WrongKeyRejected(t *testing.T) {
	m1, _ := NewManager("key-one")
	m2, _ := NewManager("key-two")

	token, _ := m1.NewJWT(1, "user", time.Minute)
	if _, _, err := m2.Parse(token); err == nil {
		t.Fatal("expected error for token signed with another key")
	}
}

func TestManager_EmptyKeyRejected(t *testing.T) {
	if _, err := NewManager(""); err == nil {
		t.Fatal("expected error for empty signing key")
	}
}

func TestNewRefreshToken_Unique(t *testing.T) {
	m, _ := NewManager("test-signing-key")

	a, err := m.NewRefreshToken()
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	b, _ := m.NewRefreshToken()
	if a == b {
		t.Error("two refresh tokens must differ")
	}
	if len(a) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(a))
	}
}
