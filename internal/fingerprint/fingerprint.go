// Package fingerprint derives the content hash and MIME type of an upload.
//
// Both are pure functions of the input: no I/O and no clock, so the same
// bytes produce the same hash on every platform and across restarts.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
)

// OctetStream is the MIME type used when nothing better is known.
const OctetStream = "application/octet-stream"

// ContentHash returns the lowercase hex SHA-256 of data.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Fingerprint returns the content hash and detected MIME type of an upload.
func Fingerprint(filename string, data []byte) (contentHash, mimeType string) {
	return ContentHash(data), Detect(filename, data)
}

// Detect runs the default detector chain.
func Detect(filename string, data []byte) string {
	return DefaultChain.Detect(filename, data)
}
