package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// NonceSize is the default entropy (in bytes) for token nonces.
const NonceSize = 16

// GenerateNonce returns a base64url-encoded random string. Refresh token
// claims carry one so two logins by the same user never encode to the same
// signed token.
func GenerateNonce(size int) (string, error) {
	if size <= 0 {
		size = NonceSize
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: nonce generation failed: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
