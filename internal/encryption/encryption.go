// Package encryption implements Findex's encryption layer: a transparent
// wrapper that turns a plaintext memory.Memory into a ciphertext one of
// identical shape, per spec.md §4.2.
//
// Every plaintext chain address is first permuted through a keyed,
// deterministic bijection before it ever reaches the underlying Memory
// or is used as an AES-XTS tweak — so two different plaintext addresses
// always map to two different, mutually indistinguishable memory
// locations, and every Word is encrypted under a tweak unique to its
// location. This is the construction used by the original Findex
// reference implementation (see
// _examples/original_source/crate/findex/src/encryption_layer.rs),
// adapted here from its 16-byte address to this spec's 32-byte one: the
// permutation is applied to each 16-byte half of the address
// independently under the same AES-256 key, which remains a keyed
// bijection on the full 32 bytes.
package encryption

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/i5heu/findex/internal/xts"
	"github.com/i5heu/findex/pkg/keyschedule"
	"github.com/i5heu/findex/pkg/memory"
)

// Layer wraps an underlying memory.Memory, presenting the same
// memory.Memory interface over plaintext addresses and words.
type Layer struct {
	underlying memory.Memory
	permute    cipher.Block
	xts        *xts.Cipher
}

// New builds an encryption layer around mem using keys derived from a
// single Findex seed (see pkg/keyschedule.Derive).
func New(keys keyschedule.Keys, mem memory.Memory) (*Layer, error) {
	permute, err := aes.NewCipher(keys.Permutation[:])
	if err != nil {
		return nil, fmt.Errorf("encryption: permutation cipher: %w", err)
	}
	x, err := xts.New(keys.XTSKey1, keys.XTSKey2)
	if err != nil {
		return nil, fmt.Errorf("encryption: %w", err)
	}
	return &Layer{underlying: mem, permute: permute, xts: x}, nil
}

// token permutes a plaintext address into the value actually used as a
// key in, and read from, the underlying Memory.
func (l *Layer) token(a memory.Address) memory.Address {
	var t memory.Address
	l.permute.Encrypt(t[:16], a[:16])
	l.permute.Encrypt(t[16:], a[16:])
	return t
}

// tweak derives the 16-byte AES-XTS tweak for a permuted token by
// folding its two halves together, so the tweak depends on all 32
// permuted bytes rather than only half of them.
func tweak(tok memory.Address) [16]byte {
	var tw [16]byte
	for i := 0; i < 16; i++ {
		tw[i] = tok[i] ^ tok[i+16]
	}
	return tw
}

func (l *Layer) encrypt(w memory.Word, tok memory.Address) memory.Word {
	return memory.Word(l.xts.EncryptSector(w, tweak(tok)))
}

func (l *Layer) decrypt(w memory.Word, tok memory.Address) memory.Word {
	return memory.Word(l.xts.DecryptSector(w, tweak(tok)))
}

// BatchRead implements memory.Memory: addresses are permuted before the
// underlying read, and returned words are decrypted before returning to
// the caller.
func (l *Layer) BatchRead(ctx context.Context, addresses []memory.Address) ([]*memory.Word, error) {
	tokens := make([]memory.Address, len(addresses))
	for i, a := range addresses {
		tokens[i] = l.token(a)
	}

	raw, err := l.underlying.BatchRead(ctx, tokens)
	if err != nil {
		return nil, fmt.Errorf("encryption: batch read: %w", err)
	}

	out := make([]*memory.Word, len(raw))
	for i, w := range raw {
		if w == nil {
			continue
		}
		pt := l.decrypt(*w, tokens[i])
		out[i] = &pt
	}
	return out, nil
}

// GuardedWrite implements memory.Memory: the guard and every binding are
// permuted/encrypted before delegating to the underlying Memory, and the
// returned "current" word is decrypted before returning to the caller.
func (l *Layer) GuardedWrite(ctx context.Context, guard memory.Guard, bindings []memory.Binding) (*memory.Word, error) {
	if len(bindings) == 0 {
		return nil, memory.ErrEmptyBindings
	}

	guardTok := l.token(guard.Address)
	var guardCT *memory.Word
	if guard.Expected != nil {
		ct := l.encrypt(*guard.Expected, guardTok)
		guardCT = &ct
	}

	ctBindings := make([]memory.Binding, len(bindings))
	for i, b := range bindings {
		tok := l.token(b.Address)
		ctBindings[i] = memory.Binding{
			Address: tok,
			Word:    l.encrypt(b.Word, tok),
		}
	}

	cur, err := l.underlying.GuardedWrite(ctx, memory.Guard{Address: guardTok, Expected: guardCT}, ctBindings)
	if err != nil {
		return nil, fmt.Errorf("encryption: guarded write: %w", err)
	}
	if cur == nil {
		return nil, nil
	}
	pt := l.decrypt(*cur, guardTok)
	return &pt, nil
}
