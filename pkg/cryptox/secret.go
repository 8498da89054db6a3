package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// Secret sizes in raw bytes, before base64url encoding.
const (
	// SecretSize128 gives 128 bits of entropy (22 chars).
	SecretSize128 = 16
	// SecretSize256 gives 256 bits of entropy (43 chars), the default for
	// generated client secrets and signing passwords.
	SecretSize256 = 32
)

// GenerateSecret returns size random bytes encoded as unpadded base64url.
func GenerateSecret(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("secret size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// MustGenerateSecret is GenerateSecret for setup paths where failure is fatal.
func MustGenerateSecret(size int) string {
	s, err := GenerateSecret(size)
	if err != nil {
		panic(fmt.Sprintf("cryptox: %v", err))
	}
	return s
}

// Fingerprint is a short, stable, non-reversible label for a sensitive value
// such as an authorization code. Safe to put in logs.
func Fingerprint(value string) string {
	sum := sha256.Sum256([]byte(value))
	return base64.RawURLEncoding.EncodeToString(sum[:9])
}

// EqualSecret compares two secrets byte for byte in constant time.
func EqualSecret(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
