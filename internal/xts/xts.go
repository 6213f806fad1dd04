// Package xts implements the tweakable, length-preserving wide-block
// cipher the encryption layer uses to encrypt Words under their Address
// as tweak.
//
// The standard IEEE P1619 AES-XTS construction multiplies the encrypted
// tweak by successive powers of the GF(2^128) generator for each block
// past the first in a "data unit" (sector), and falls back to
// ciphertext stealing when the sector length isn't a multiple of the
// block size. Findex's Word is defined to be exactly one AES block (16
// bytes) wide, so a Findex "sector" is always a single block: both
// complications disappear, and the construction reduces to
//
//	C = E_k1(P XOR E_k2(T)) XOR E_k2(T)
//
// which is what this package implements directly on crypto/aes. No
// library in the example pack implements AES-XTS (see DESIGN.md); this
// single-block specialization is small enough, and precise enough about
// the one-block case it covers, to implement directly against the
// standard library rather than reach for a general-purpose, multi-block
// XTS crate that would bring far more surface than this contract needs.
package xts

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// BlockLength is the fixed width, in bytes, of the cipher's data unit —
// equal to memory.WordLength and to the AES block size.
const BlockLength = 16

// KeyLength is the width, in bytes, of each of the two AES-256 sub-keys
// Cipher requires.
const KeyLength = 32

// Cipher is a single-block AES-XTS instance keyed by two independent
// AES-256 keys: one for the data, one for the tweak.
type Cipher struct {
	data  cipher.Block
	tweak cipher.Block
}

// New builds a Cipher from two independent 32-byte keys. The keys must
// be independent for the construction's security to hold; callers are
// expected to derive them from a key schedule that guarantees this (see
// pkg/keyschedule).
func New(key1, key2 [KeyLength]byte) (*Cipher, error) {
	data, err := aes.NewCipher(key1[:])
	if err != nil {
		return nil, fmt.Errorf("xts: data cipher: %w", err)
	}
	tweak, err := aes.NewCipher(key2[:])
	if err != nil {
		return nil, fmt.Errorf("xts: tweak cipher: %w", err)
	}
	return &Cipher{data: data, tweak: tweak}, nil
}

// EncryptSector encrypts one block-wide plaintext sector under the given
// tweak.
func (c *Cipher) EncryptSector(plaintext [BlockLength]byte, tweak [BlockLength]byte) [BlockLength]byte {
	et := c.encryptTweak(tweak)
	var x [BlockLength]byte
	xorBlock(&x, &plaintext, &et)
	var ct [BlockLength]byte
	c.data.Encrypt(ct[:], x[:])
	xorBlock(&ct, &ct, &et)
	return ct
}

// DecryptSector decrypts one block-wide ciphertext sector under the
// given tweak.
func (c *Cipher) DecryptSector(ciphertext [BlockLength]byte, tweak [BlockLength]byte) [BlockLength]byte {
	et := c.encryptTweak(tweak)
	var x [BlockLength]byte
	xorBlock(&x, &ciphertext, &et)
	var pt [BlockLength]byte
	c.data.Decrypt(pt[:], x[:])
	xorBlock(&pt, &pt, &et)
	return pt
}

func (c *Cipher) encryptTweak(tweak [BlockLength]byte) [BlockLength]byte {
	var et [BlockLength]byte
	c.tweak.Encrypt(et[:], tweak[:])
	return et
}

func xorBlock(dst, a, b *[BlockLength]byte) {
	for i := 0; i < BlockLength; i++ {
		dst[i] = a[i] ^ b[i]
	}
}
