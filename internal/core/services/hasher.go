package services

import (
	"crypto/md5" //nolint:gosec // G501: used for change detection, not security
	"encoding/hex"
)

// ContentHash returns the lowercase hex MD5 digest of text.
// It only detects whether a note changed since it was last indexed.
func ContentHash(text string) string {
	sum := md5.Sum([]byte(text)) //nolint:gosec // G401: see import
	return hex.EncodeToString(sum[:])
}
