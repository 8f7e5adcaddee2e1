package messaging

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// SIGNATURE_HEADER carries the HMAC-SHA256 signature of a published batch
	SIGNATURE_HEADER = "Sweeper-Signature"
	// TIMESTAMP_HEADER carries the unix timestamp the signature was made at
	TIMESTAMP_HEADER = "Sweeper-Timestamp"

	signaturePrefix = "sha256="
)

// SignPayload signs a message body with HMAC-SHA256.
// The signed content is "{timestamp}.{message_id}.{body}" so a consumer can
// reject replays and bind the signature to the deduplication id.
func SignPayload(secret string, messageID string, payload []byte, timestamp int64) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(signedContent(messageID, payload, timestamp))
	return signaturePrefix + hex.EncodeToString(h.Sum(nil))
}

// VerifyPayload reports whether signature matches the message body
func VerifyPayload(secret string, messageID string, payload []byte, timestamp int64, signature string) bool {
	hexSig, ok := strings.CutPrefix(signature, signaturePrefix)
	if !ok {
		return false
	}
	got, err := hex.DecodeString(hexSig)
	if err != nil {
		return false
	}

	h := hmac.New(sha256.New, []byte(secret))
	h.Write(signedContent(messageID, payload, timestamp))
	return hmac.Equal(got, h.Sum(nil))
}

func signedContent(messageID string, payload []byte, timestamp int64) []byte {
	return []byte(fmt.Sprintf("%d.%s.%s", timestamp, messageID, payload))
}
