package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the hex SHA-256 of an upload payload. Import batches
// are tagged with it in audit logs and responses so repeated uploads of the
// same file can be spotted after the fact.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ShortFingerprint is the 12-character prefix used in log lines.
func ShortFingerprint(data []byte) string {
	return Fingerprint(data)[:12]
}
