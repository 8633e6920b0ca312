package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashRefreshToken returns the hex SHA-256 digest stored on a session.
// Sessions never persist the raw refresh token.
func HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// RefreshTokenHashEqual compares a presented token against the stored digest
// in constant time.
func RefreshTokenHashEqual(token, storedHash string) bool {
	digest := HashRefreshToken(token)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(storedHash)) == 1
}
