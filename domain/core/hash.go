package core

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// Hash is a hex-encoded sha256 digest
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// Short returns the first 12 hex digits, enough to tell uploads apart in logs
func (h Hash) Short() string {
	if len(h) <= 12 {
		return string(h)
	}
	return string(h[:12])
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Hasher digests everything read through it
type Hasher struct {
	r io.Reader
	h hash.Hash
}

// NewHasher wraps r so that reads are also fed to a sha256 digest
func NewHasher(r io.Reader) *Hasher {
	h := sha256.New()
	return &Hasher{r: io.TeeReader(r, h), h: h}
}

func (h *Hasher) Read(p []byte) (int, error) {
	return h.r.Read(p)
}

// Sum returns the digest of the bytes read so far
func (h *Hasher) Sum() Hash {
	return Hash(hex.EncodeToString(h.h.Sum(nil)))
}
