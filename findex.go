// Package findex implements a Symmetric Searchable Encryption multi-map
// index: a {keyword -> set of values} store whose backing Memory never
// observes plaintext keywords, values, or addresses.
//
// A Findex composes three layers over a caller-supplied memory.Memory:
// the Encryption Layer (internal/encryption), which presents an
// encrypted view of that Memory; the Chain Layer (internal/chain),
// which derives per-keyword addresses and implements lock-free append
// and wait-free read; and an Encoder (pkg/encoder), which serializes
// application values into chain words and back.
package findex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/i5heu/findex/internal/chain"
	"github.com/i5heu/findex/internal/encryption"
	"github.com/i5heu/findex/pkg/encoder"
	"github.com/i5heu/findex/pkg/keyschedule"
	"github.com/i5heu/findex/pkg/memory"
)

// Findex binds an encrypted Memory, an Encoder, and a key schedule into
// the insert/delete/search API described in spec.md §4.5.
type Findex struct {
	layer *encryption.Layer
	keys  keyschedule.Keys
	enc   encoder.Encoder
	log   *slog.Logger
}

// Option configures a Findex at construction time.
type Option func(*Findex)

// WithLogger overrides the default tint-backed logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Findex) { f.log = l }
}

// WithEncoder overrides the reference Encoder. Most callers should not
// need this; it exists so the Encoder truly stays pluggable per
// spec.md §4.4.
func WithEncoder(e encoder.Encoder) Option {
	return func(f *Findex) { f.enc = e }
}

// New derives a key schedule from seed, wraps mem in the encryption
// layer, and returns a ready-to-use Findex. The reference Encoder is
// used unless overridden with WithEncoder.
func New(seed keyschedule.Seed, mem memory.Memory, opts ...Option) (*Findex, error) {
	keys := keyschedule.Derive(seed)

	layer, err := encryption.New(keys, mem)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCrypto, err)
	}

	f := &Findex{
		layer: layer,
		keys:  keys,
		enc:   encoder.NewReference(),
		log:   defaultLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Insert adds values to the set indexed under keyword.
func (f *Findex) Insert(ctx context.Context, keyword []byte, values [][]byte) error {
	return f.append(ctx, keyword, values, true)
}

// Delete removes values from the set indexed under keyword. A value
// never inserted is silently ignored, per spec.md's log semantics.
func (f *Findex) Delete(ctx context.Context, keyword []byte, values [][]byte) error {
	return f.append(ctx, keyword, values, false)
}

func (f *Findex) append(ctx context.Context, keyword []byte, values [][]byte, add bool) error {
	if len(values) == 0 {
		return nil
	}

	ops := make([]encoder.Op, len(values))
	for i, v := range values {
		ops[i] = encoder.Op{Add: add, Value: v}
	}

	words, err := f.enc.Encode(ops)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	c := chain.For(f.keys.Address, f.layer, keyword)
	if err := c.Insert(ctx, words); err != nil {
		return translateChainErr(err)
	}

	f.log.Debug("findex: appended", "keyword", string(keyword), "add", add, "count", len(values))
	return nil
}

// Search returns the current set of values indexed under keyword, or an
// empty slice if the keyword has never been inserted.
func (f *Findex) Search(ctx context.Context, keyword []byte) ([][]byte, error) {
	c := chain.For(f.keys.Address, f.layer, keyword)
	words, err := c.Read(ctx)
	if err != nil {
		return nil, translateChainErr(err)
	}
	if len(words) == 0 {
		return nil, nil
	}

	values, err := f.enc.Decode(words)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return values, nil
}

func translateChainErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, chain.ErrInvariant) {
		return fmt.Errorf("%w: %w", ErrInvariant, err)
	}
	return fmt.Errorf("%w: %w", ErrMemory, err)
}
