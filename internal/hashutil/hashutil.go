package hashutil

import (
	"crypto/sha256"
	"fmt"
	"strconv"
)

// SnapshotID returns the 7-character hex ID of the snapshot taken at the given
// unix millisecond timestamp.
func SnapshotID(timestampMillis int64) string {
	return FromSeed("snapshot\x00" + strconv.FormatInt(timestampMillis, 10))
}

// FromSeed creates a deterministic 7-character hex ID from a seed string.
func FromSeed(seed string) string {
	hash := sha256.Sum256([]byte(seed))
	return fmt.Sprintf("%x", hash[:4])[:7]
}
