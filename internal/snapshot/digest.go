package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Digest returns a hex sha256 over the canonical JSON encoding of d.
// Two games with equal digests are field-for-field identical.
func Digest(d GameDoc) string {
	// Struct fields marshal in declaration order, so the encoding is stable.
	// GameDoc holds only ints, bools, strings and slices of them, which
	// json.Marshal cannot fail on.
	b, _ := json.Marshal(d)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
