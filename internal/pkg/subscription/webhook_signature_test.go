package subscription

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func signPayload(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifyWebhookSignature(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"subscription.created"}`)
	secret := "whsec_test"
	sig := signPayload(payload, secret)

	if !VerifyWebhookSignature(payload, sig, secret) {
		t.Fatal("expected valid signature to verify")
	}
	// Header casing must not matter for hex digests.
	if !VerifyWebhookSignature(payload, "  "+sig+"  ", secret) {
		t.Fatal("expected surrounding whitespace to be tolerated")
	}
}

func TestVerifyWebhookSignatureRejects(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	secret := "whsec_test"
	good := signPayload(payload, secret)

	tests := []struct {
		name    string
		payload []byte
		sig     string
		secret  string
	}{
		{"wrong secret", payload, good, "other"},
		{"tampered payload", []byte(`{"id":"evt_2"}`), good, secret},
		{"empty signature", payload, "", secret},
		{"empty secret", payload, good, ""},
		{"not hex", payload, "zzzz", secret},
		{"truncated", payload, good[:16], secret},
	}
	for _, tt := range tests {
		if VerifyWebhookSignature(tt.payload, tt.sig, tt.secret) {
			t.Fatalf("%s: expected rejection", tt.name)
		}
	}
}
