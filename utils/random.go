package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateSecureRandomString returns 2n hex characters from crypto/rand.
func GenerateSecureRandomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
