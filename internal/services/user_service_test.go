package services

import (
	"encoding/hex"
	"testing"
)

func TestHashResetToken_DeterministicHex(t *testing.T) {
	a := HashResetToken("token-one")
	b := HashResetToken("token-one")
	if a != b {
		t.Error("hash must be deterministic")
	}
	if a == HashResetToken("token-two") {
		t.Error("different tokens must hash differently")
	}
	if _, err := hex.DecodeString(a); err != nil || len(a) != 64 {
		t.Errorf("hash %q is not 64 hex chars", a)
	}
	if a == "token-one" {
		t.Error("stored form must not equal the raw token")
	}
}
