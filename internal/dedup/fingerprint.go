package dedup

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint is the deduplication key of a posting: hex SHA-256 of the
// title immediately followed by the link. Stable across processes.
func Fingerprint(title, link string) string {
	h := sha256.Sum256([]byte(title + link))
	return hex.EncodeToString(h[:])
}
