package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// resetTokenBytes is the entropy of a reset token. 32 bytes keeps the token
// well beyond guessing range even with the 1 hour validity window.
const resetTokenBytes = 32

// NewResetToken generates an opaque password-reset token from crypto/rand,
// base64url-encoded so it survives query strings and email clients.
func NewResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
