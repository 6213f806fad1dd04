// Package keyschedule derives the independent keys the Findex core needs
// — the address-permutation key, the two AES-XTS sub-keys, and the chain
// layer's address-derivation key — from a single user-owned seed, via a
// SHA3-based, domain-separated KDF.
package keyschedule

import (
	"crypto/subtle"

	"golang.org/x/crypto/sha3"
)

// SeedLength is the fixed width, in bytes, of a Seed.
const SeedLength = 32

// KeyLength is the fixed width, in bytes, of every derived key.
const KeyLength = 32

// domain tags, one byte each, keeping every derivation call on a
// disjoint input shape.
const (
	tagPermutation byte = 0x00
	tagXTSKey1     byte = 0x01
	tagXTSKey2     byte = 0x02
	tagAddressKey  byte = 0x03
)

// Seed is the client-owned secret Findex is instantiated with. It must
// be zeroed once no longer needed; see Zero.
type Seed [SeedLength]byte

// Zero overwrites the seed's bytes, rendering it unusable. Callers are
// responsible for calling it once a Seed is no longer needed (e.g. via
// defer right after deriving Keys).
func (s *Seed) Zero() {
	for i := range s {
		s[i] = 0
	}
}

// Equal reports whether two seeds hold the same bytes, in constant time.
func (s Seed) Equal(other Seed) bool {
	return subtle.ConstantTimeCompare(s[:], other[:]) == 1
}

// Key is a derived 32-byte symmetric key.
type Key [KeyLength]byte

// Zero overwrites the key's bytes.
func (k *Key) Zero() {
	for i := range k {
		k[i] = 0
	}
}

// Keys holds every key the Findex core derives from a single seed.
type Keys struct {
	// Permutation is used by the encryption layer to turn a plaintext
	// chain address into the token stored in, and read from, the
	// underlying Memory (see internal/encryption).
	Permutation Key
	// XTSKey1 and XTSKey2 are the two independent AES-256 sub-keys the
	// AES-XTS tweakable cipher needs.
	XTSKey1 Key
	XTSKey2 Key
	// Address is the chain layer's key for deriving per-keyword,
	// per-index addresses (see internal/chain).
	Address Key
}

// Zero overwrites every derived key.
func (k *Keys) Zero() {
	k.Permutation.Zero()
	k.XTSKey1.Zero()
	k.XTSKey2.Zero()
	k.Address.Zero()
}

// Derive expands seed into the four keys the core needs. Each key is
// SHA3-256(seed || tag) for a distinct one-byte tag, so the four outputs
// are independent in the random-oracle model as long as the tags never
// collide — which they don't, by construction.
func Derive(seed Seed) Keys {
	return Keys{
		Permutation: derive(seed, tagPermutation),
		XTSKey1:     derive(seed, tagXTSKey1),
		XTSKey2:     derive(seed, tagXTSKey2),
		Address:     derive(seed, tagAddressKey),
	}
}

func derive(seed Seed, tag byte) Key {
	h := sha3.New256()
	h.Write(seed[:])
	h.Write([]byte{tag})
	var k Key
	h.Sum(k[:0])
	return k
}
