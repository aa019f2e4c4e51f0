// Package cache implements the persistent per-account ledger of
// repository commit and line-change totals, plus the frozen archive
// ledger for repositories that can no longer be queried live.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// RepoKey returns the hex SHA-256 digest of a repository's
// fully-qualified "owner/name". It is the primary key of ledger records,
// so identity survives renames of the local cache and reordering of the
// remote repository list.
func RepoKey(nameWithOwner string) string {
	sum := sha256.Sum256([]byte(nameWithOwner))
	return hex.EncodeToString(sum[:])
}

// LedgerFilename returns the cache filename for an account login.
// Hashing the login keeps the filename filesystem-safe regardless of the
// characters GitHub allows in a login.
func LedgerFilename(login string) string {
	sum := sha256.Sum256([]byte(login))
	return hex.EncodeToString(sum[:]) + ".txt"
}
