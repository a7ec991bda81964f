// Package checksum computes content digests used for change detection and
// optimistic concurrency.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ETag quotes sum for use in an HTTP ETag header.
func ETag(sum string) string {
	return `"` + sum + `"`
}

// Match reports whether an If-Match header value matches sum. Surrounding
// quotes and a weak-validator prefix are ignored; "*" matches anything.
func Match(header, sum string) bool {
	v := strings.TrimSpace(header)
	if v == "*" {
		return true
	}
	v = strings.TrimPrefix(v, "W/")
	return strings.Trim(v, `"`) == sum
}
