package messaging_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feral-file/ff-token-sweeper/internal/messaging"
)

func TestSignPayload(t *testing.T) {
	secret := "test-secret-key"
	payload := []byte(`{"id":"batch-1","calls":[]}`)

	signature := messaging.SignPayload(secret, "batch-1", payload, 1718000000)

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(`1718000000.batch-1.{"id":"batch-1","calls":[]}`))
	assert.Equal(t, "sha256="+hex.EncodeToString(h.Sum(nil)), signature)

	// Deterministic for the same input
	assert.Equal(t, signature, messaging.SignPayload(secret, "batch-1", payload, 1718000000))
}

func TestVerifyPayload(t *testing.T) {
	secret := "test-secret-key"
	payload := []byte(`{"id":"batch-1"}`)
	signature := messaging.SignPayload(secret, "batch-1", payload, 1718000000)

	tests := []struct {
		name      string
		secret    string
		messageID string
		payload   []byte
		timestamp int64
		signature string
		expected  bool
	}{
		{"valid", secret, "batch-1", payload, 1718000000, signature, true},
		{"wrong secret", "other", "batch-1", payload, 1718000000, signature, false},
		{"other message id", secret, "batch-2", payload, 1718000000, signature, false},
		{"tampered payload", secret, "batch-1", []byte(`{"id":"batch-9"}`), 1718000000, signature, false},
		{"replayed timestamp", secret, "batch-1", payload, 1718000001, signature, false},
		{"missing prefix", secret, "batch-1", payload, 1718000000, signature[len("sha256="):], false},
		{"not hex", secret, "batch-1", payload, 1718000000, "sha256=zz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, messaging.VerifyPayload(tt.secret, tt.messageID, tt.payload, tt.timestamp, tt.signature))
		})
	}
}
