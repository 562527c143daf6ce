package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashOpaqueToken generates a SHA256 hash of an opaque credential (refresh
// token, one-time code). Only the hash is stored at rest.
func HashOpaqueToken(token string) string {
	hasher := sha256.New()
	hasher.Write([]byte(token))
	return hex.EncodeToString(hasher.Sum(nil))
}

// CompareOpaqueTokenHash compares a plain credential with its stored SHA256
// hash. The token parameter is the raw string, not a hash.
func CompareOpaqueTokenHash(token string, storedHash string) bool {
	return HashOpaqueToken(token) == storedHash
}
