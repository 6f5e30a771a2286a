package pay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the checkout signature the gateway is expected to send for a
// captured subscription payment: HMAC-SHA256 over "paymentID|subscriptionID"
// keyed with the API secret, hex encoded.
func Sign(paymentID, subscriptionID string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(paymentID + "|" + subscriptionID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether the received hex signature matches the expected one.
// The comparison is constant time.
func Verify(received, expected string) bool {
	rb, err := hex.DecodeString(received)
	if err != nil {
		return false
	}
	eb, err := hex.DecodeString(expected)
	if err != nil {
		return false
	}
	return hmac.Equal(rb, eb)
}
