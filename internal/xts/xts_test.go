package xts

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestCipher(t *testing.T) *Cipher {
	var k1, k2 [KeyLength]byte
	for i := range k1 {
		k1[i] = byte(i)
	}
	for i := range k2 {
		k2[i] = byte(255 - i)
	}
	c, err := New(k1, k2)
	require.NoError(t, err)
	return c
}

func TestRoundTrip(t *testing.T) {
	c := newTestCipher(t)
	var pt, tweak [BlockLength]byte
	copy(pt[:], "0123456789abcdef")
	copy(tweak[:], "tweak-0000000001")

	ct := c.EncryptSector(pt, tweak)
	require.NotEqual(t, pt, ct)

	got := c.DecryptSector(ct, tweak)
	require.Equal(t, pt, got)
}

func TestDifferentTweaksProduceDifferentCiphertext(t *testing.T) {
	c := newTestCipher(t)
	var pt, t1, t2 [BlockLength]byte
	copy(pt[:], "same plaintext!!")
	t1[0] = 0x01
	t2[0] = 0x02

	ct1 := c.EncryptSector(pt, t1)
	ct2 := c.EncryptSector(pt, t2)
	require.NotEqual(t, ct1, ct2)
}

func TestDecryptUnderWrongTweakFails(t *testing.T) {
	c := newTestCipher(t)
	var pt, tweak, wrongTweak [BlockLength]byte
	copy(pt[:], "0123456789abcdef")
	tweak[0] = 1
	wrongTweak[0] = 2

	ct := c.EncryptSector(pt, tweak)
	got := c.DecryptSector(ct, wrongTweak)
	require.NotEqual(t, pt, got)
}
