// Package chain implements the Chain Layer: deterministic per-keyword
// address derivation, the lock-free guarded-write insert protocol, and
// the wait-free search protocol described in spec.md §4.3.
//
// The Chain Layer is generic over the Memory it runs on — typically the
// encryption layer (internal/encryption.Layer) wrapping a concrete
// back-end — and never interprets the bytes of a payload word; that is
// the Encoder's job (pkg/encoder).
package chain

import (
	"context"
	"fmt"

	"github.com/i5heu/findex/pkg/keyschedule"
	"github.com/i5heu/findex/pkg/memory"
)

// Chain binds one keyword to a sequence of addresses in a Memory. It is
// cheap to construct; callers typically build one per operation rather
// than caching it.
type Chain struct {
	mem        memory.Memory
	keywordSkw [32]byte
}

// For returns the Chain for the given keyword, deriving its per-keyword
// seed from the chain layer's address-derivation key.
func For(addressKey keyschedule.Key, mem memory.Memory, keyword []byte) Chain {
	return Chain{mem: mem, keywordSkw: keywordSeed(addressKey, keyword)}
}

func (c Chain) addr(index uint64) memory.Address {
	return addressAt(c.keywordSkw, index)
}

// Insert appends words to the end of the chain, retrying on guard
// contention until its guarded write is linearized. It is lock-free:
// every failed attempt observes a strictly larger counter than the one
// it guarded with, so some writer always makes progress.
//
// Inserting zero words is a documented no-op (spec.md §4.3 edge policy
// (b)).
func (c Chain) Insert(ctx context.Context, words []memory.Word) error {
	if len(words) == 0 {
		return nil
	}

	a0 := c.addr(0)
	heads, err := c.mem.BatchRead(ctx, []memory.Address{a0})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMemory, err)
	}
	cur := heads[0]

	for {
		count := uint32(0)
		if cur != nil {
			if err := validateReserved(*cur); err != nil {
				return err
			}
			count = decodeHeader(*cur).counter
		}

		newHeader := header{counter: count + uint32(len(words))}
		if newHeader.counter < count {
			return fmt.Errorf("%w: header counter overflow", ErrInvariant)
		}

		bindings := make([]memory.Binding, 0, len(words)+1)
		for i, w := range words {
			bindings = append(bindings, memory.Binding{
				Address: c.addr(uint64(count) + uint64(i) + 1),
				Word:    w,
			})
		}
		bindings = append(bindings, memory.Binding{Address: a0, Word: newHeader.encode()})

		observed, err := c.mem.GuardedWrite(ctx, memory.Guard{Address: a0, Expected: cur}, bindings)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMemory, err)
		}

		if wordEqual(observed, cur) {
			return nil
		}

		if observed == nil {
			return fmt.Errorf("%w: guard mismatch returned nil after a non-nil guard", ErrInvariant)
		}
		if err := validateReserved(*observed); err != nil {
			return err
		}
		observedCount := decodeHeader(*observed).counter
		if observedCount < count {
			return fmt.Errorf("%w: header counter regressed from %d to %d", ErrInvariant, count, observedCount)
		}

		cur = observed
	}
}

// Read returns every payload word currently committed to the chain, in
// chain order. It performs exactly one header read and, if the chain is
// non-empty, exactly one batch read — no retry loop, per spec.md's
// wait-free search guarantee.
func (c Chain) Read(ctx context.Context) ([]memory.Word, error) {
	a0 := c.addr(0)
	heads, err := c.mem.BatchRead(ctx, []memory.Address{a0})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMemory, err)
	}
	if heads[0] == nil {
		return nil, nil
	}
	if err := validateReserved(*heads[0]); err != nil {
		return nil, err
	}

	count := decodeHeader(*heads[0]).counter
	if count == 0 {
		return nil, nil
	}

	addrs := make([]memory.Address, count)
	for i := uint32(0); i < count; i++ {
		addrs[i] = c.addr(uint64(i) + 1)
	}

	words, err := c.mem.BatchRead(ctx, addrs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMemory, err)
	}

	out := make([]memory.Word, count)
	for i, w := range words {
		if w == nil {
			return nil, fmt.Errorf("%w: committed payload word %d missing from memory", ErrInvariant, i)
		}
		out[i] = *w
	}
	return out, nil
}

func wordEqual(a, b *memory.Word) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
