package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// TokenSize256 gives 256 bits of entropy (43 base64url characters).
const TokenSize256 = 32

// RandomToken returns size random bytes encoded as unpadded base64url.
func RandomToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("cryptox: token size must be positive, got %d", size)
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// MustRandomToken is RandomToken for initialisation paths.
func MustRandomToken(size int) string {
	tok, err := RandomToken(size)
	if err != nil {
		panic(err)
	}
	return tok
}
