package text

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the hex-encoded sha256 of s.
func Hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
