package scoring

import (
	"crypto/sha256"
	"encoding/hex"

	"changal24/internal/domain"
)

// DuplicateKey derives the stable identity of a candidate: the first
// non-empty of URL, source URL, title, and body. It backs soft duplicate
// detection independent of the content hash.
func DuplicateKey(c domain.Candidate) string {
	for _, value := range []string{c.URL, c.SourceURL, c.Title, c.Body} {
		if value != "" {
			return value
		}
	}
	return ""
}

// Fingerprint hashes a duplicate key into the content fingerprint enforced
// by the storage layer's unique constraint. Two candidates with the same
// derived key collapse to one stored post even across runs.
func Fingerprint(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
