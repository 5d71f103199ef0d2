package helpers

import (
	"crypto/sha256"
	"encoding/hex"
)

// ShortSHA256 returns the leading n hex characters of the SHA-256 digest of b. A
// non-positive or oversized n yields the full 64 character digest.
func ShortSHA256(b []byte, n int) string {
	sum := sha256.Sum256(b)
	id := hex.EncodeToString(sum[:])
	if n > 0 && n < len(id) {
		return id[:n]
	}
	return id
}
