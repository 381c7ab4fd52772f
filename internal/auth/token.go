package auth

import (
	"crypto/rand"
	"encoding/base64"
)

// NewDeviceToken creates a cryptographically random device token.
// 32 bytes gives 256 bits of entropy, URL-safe base64 encoded.
func NewDeviceToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
