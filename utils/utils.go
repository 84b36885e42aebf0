// Package utils provides utility functions for the application.
package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"unicode/utf8"
)

// IPHashSalt is the fixed salt prefixed to IP addresses before hashing.
// The digest, not the address, is what reaches storage.
const IPHashSalt = "dynalinks_salt"

func ToPtr[T any](v T) *T {
	return &v
}

func IsTrue(b *bool) bool {
	return b != nil && *b
}

// HashIPAddress returns a fixed-length one-way digest of an IP address.
// Truncated to 16 hex chars; enough to count distinct clients, not enough
// to walk back to the address.
func HashIPAddress(ip string) string {
	sum := sha256.Sum256([]byte(IPHashSalt + ip))
	return hex.EncodeToString(sum[:])[:16]
}

// Truncate returns s cut to at most max bytes, never splitting a rune
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
