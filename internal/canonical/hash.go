package canonical

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex returns the lowercase hex digest of text, 64 characters.
func SHA256Hex(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// HashWithSalt pseudonymizes a value with a deployment-scoped salt. The result
// is deterministic, so correlation across entries stays possible without
// persisting the raw value.
func HashWithSalt(salt, value string) string {
	return SHA256Hex(salt + ":" + value)
}
