package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// RepositorySnapshot is a repository as seen during one enumeration.
type RepositorySnapshot struct {
	Identity    string // owner/name
	CommitCount int
}

// CacheKey is the hashed identity of a repository. Names are never persisted.
type CacheKey string

// HashIdentity maps a repository identity to its cache key.
func HashIdentity(identity string) CacheKey {
	sum := sha256.Sum256([]byte(identity))
	return CacheKey(hex.EncodeToString(sum[:]))
}

// CacheEntry is the last computed line delta of a repository.
// CommitCount is the commit count at the time the delta was computed.
type CacheEntry struct {
	Key         CacheKey
	CommitCount int
	Additions   int64
	Deletions   int64
}

// Matches reports whether the entry may be reused for the snapshot.
func (e CacheEntry) Matches(s RepositorySnapshot) bool {
	return e.CommitCount == s.CommitCount
}

// LineDelta is the number of lines one author added and removed.
type LineDelta struct {
	Additions int64
	Deletions int64
}

// Add accumulates another delta.
func (d *LineDelta) Add(o LineDelta) {
	d.Additions += o.Additions
	d.Deletions += o.Deletions
}

// LOCTotals is the sum of line deltas over all repositories.
type LOCTotals struct {
	Additions int64
	Deletions int64
}

// Net returns additions minus deletions. It is negative when the author
// removed more lines than they wrote.
func (t LOCTotals) Net() int64 {
	return t.Additions - t.Deletions
}
