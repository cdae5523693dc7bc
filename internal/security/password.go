package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt rejects inputs longer than 72 bytes. Over-length passwords are
// truncated before hashing so the same password always yields a verifiable
// hash instead of an error.
const maxPasswordBytes = 72

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(plaintext string) (string, error) {
	raw := []byte(plaintext)
	if len(raw) > maxPasswordBytes {
		raw = raw[:maxPasswordBytes]
	}

	hash, err := bcrypt.GenerateFromPassword(raw, bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches hash. A malformed hash is
// treated as a mismatch, never an error.
func VerifyPassword(plaintext, hash string) bool {
	raw := []byte(plaintext)
	if len(raw) > maxPasswordBytes {
		raw = raw[:maxPasswordBytes]
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), raw) == nil
}
