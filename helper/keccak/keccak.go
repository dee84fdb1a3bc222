package keccak

import (
	"hash"

	"golang.org/x/crypto/sha3"
)

// Keccak is a reusable keccak-256 hasher
type Keccak struct {
	buf  []byte
	hash hash.Hash
}

// NewKeccak256 returns a new keccak-256 hasher
func NewKeccak256() *Keccak {
	return &Keccak{
		hash: sha3.NewLegacyKeccak256(),
	}
}

// Write implements the io.Writer interface
func (k *Keccak) Write(p []byte) (int, error) {
	return k.hash.Write(p)
}

// Sum appends the current hash to dst
func (k *Keccak) Sum(dst []byte) []byte {
	k.buf = k.hash.Sum(k.buf[:0])
	dst = append(dst, k.buf...)

	return dst
}

// Reset resets the hasher for reuse
func (k *Keccak) Reset() {
	k.buf = k.buf[:0]
	k.hash.Reset()
}
