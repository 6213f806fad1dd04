package findex

import "errors"

// Sentinel errors surfaced by the facade, per spec.md §7. Internal
// packages raise their own sentinels (chain.ErrInvariant,
// chain.ErrMemory, ...); the facade wraps whatever it receives with one
// of these so callers can errors.Is against a single stable set.
var (
	ErrMemory    = errors.New("findex: memory error")
	ErrCrypto    = errors.New("findex: cryptographic invariant violated")
	ErrEncoding  = errors.New("findex: encoding error")
	ErrInvariant = errors.New("findex: invariant violation")
)
