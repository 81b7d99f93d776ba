// Package utils holds small helpers shared across the gateway.
package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Digest hashes parts into a short hex key. Parts are joined with a unit
// separator, so ("ab", "c") and ("a", "bc") give different keys.
func Digest(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:16])
}
