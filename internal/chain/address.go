package chain

import (
	"encoding/binary"

	"github.com/i5heu/findex/pkg/keyschedule"
	"github.com/i5heu/findex/pkg/memory"
	"golang.org/x/crypto/sha3"
)

// keywordSeed computes s_kw = SHA3-256(addressKey || 0x00 || keyword),
// the per-keyword seed spec.md §4.3 derives every chain address from.
// The 0x00 separator keeps the key and the keyword from being
// confusable under concatenation (no keyword can contain the key's
// fixed-length prefix, since the key is consumed whole before the
// separator is written).
func keywordSeed(addressKey keyschedule.Key, keyword []byte) [32]byte {
	h := sha3.New256()
	h.Write(addressKey[:])
	h.Write([]byte{0x00})
	h.Write(keyword)
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// addressAt computes addr(kw, i) = SHA3-256(s_kw || be64(i)).
func addressAt(skw [32]byte, index uint64) memory.Address {
	h := sha3.New256()
	h.Write(skw[:])
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], index)
	h.Write(idx[:])
	var out memory.Address
	h.Sum(out[:0])
	return out
}
