// Package determinism provides primitives for deterministic output.
// Map iteration and run IDs vary between runs; these helpers give callers
// a stable order and a content fingerprint instead.
package determinism

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"slices"
)

// SortedKeys returns the keys of m in ascending order
func SortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ContentHash is a SHA-256 hash for content integrity
type ContentHash [32]byte

// Hex returns the hash as a hex string
func (h ContentHash) Hex() string {
	return hex.EncodeToString(h[:])
}

// String implements Stringer
func (h ContentHash) String() string {
	return h.Hex()[:16]
}

// Hasher accumulates separated parts into a ContentHash.
// Parts are NUL separated so ("ab", "c") and ("a", "bc") differ.
type Hasher struct {
	h hash.Hash
}

// NewHasher creates a hasher scoped to a namespace
func NewHasher(namespace string) *Hasher {
	h := &Hasher{h: sha256.New()}
	h.Write(namespace)
	return h
}

// Write adds parts to the hash
func (h *Hasher) Write(parts ...string) *Hasher {
	for _, p := range parts {
		h.h.Write([]byte(p))
		h.h.Write([]byte{0})
	}
	return h
}

// Sum returns the hash of everything written so far
func (h *Hasher) Sum() ContentHash {
	var out ContentHash
	copy(out[:], h.h.Sum(nil))
	return out
}
