package crypto

import (
	"crypto/rand"
	"encoding/base64"
)

// NewTemporaryPassword returns a random URL-safe password handed out once
// when an account is created without an explicit password.
func NewTemporaryPassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
