package pay

import (
	"strings"
	"testing"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	secret := []byte("test-secret")
	sig := Sign("pay_29QQoUBi66xm2f", "sub_00000000000001", secret)
	if len(sig) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(sig))
	}
	if !Verify(sig, Sign("pay_29QQoUBi66xm2f", "sub_00000000000001", secret)) {
		t.Fatal("expected signature to verify")
	}
}

func TestVerifyRejectsEverySingleByteMutation(t *testing.T) {
	secret := []byte("test-secret")
	expected := Sign("pay_29QQoUBi66xm2f", "sub_00000000000001", secret)

	for i := 0; i < len(expected); i++ {
		mutated := []byte(expected)
		if mutated[i] == '0' {
			mutated[i] = '1'
		} else {
			mutated[i] = '0'
		}
		if Verify(string(mutated), expected) {
			t.Fatalf("mutated signature at index %d unexpectedly verified", i)
		}
	}
}

func TestVerifyRejectsNonHex(t *testing.T) {
	secret := []byte("test-secret")
	expected := Sign("pay_1", "sub_1", secret)
	if Verify("not-hex-at-all", expected) {
		t.Fatal("non-hex signature unexpectedly verified")
	}
	if Verify(strings.Repeat("zz", 32), expected) {
		t.Fatal("invalid hex signature unexpectedly verified")
	}
}

func TestSignDependsOnEveryInput(t *testing.T) {
	secret := []byte("test-secret")
	base := Sign("pay_1", "sub_1", secret)
	if Sign("pay_2", "sub_1", secret) == base {
		t.Fatal("signature did not change with payment id")
	}
	if Sign("pay_1", "sub_2", secret) == base {
		t.Fatal("signature did not change with subscription id")
	}
	if Sign("pay_1", "sub_1", []byte("other-secret")) == base {
		t.Fatal("signature did not change with secret")
	}
}
