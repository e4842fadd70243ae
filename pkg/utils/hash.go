package utils

import (
	"crypto/sha256"
	"fmt"
)

// HashString returns the hex-encoded SHA-256 digest of the input. Used as a
// stable cache key for query responses.
func HashString(input string) string {
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%x", hash)
}
