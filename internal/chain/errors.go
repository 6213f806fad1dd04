package chain

import "errors"

// ErrInvariant is wrapped by every error the Chain Layer raises when it
// observes state that a correct Memory could never produce — e.g. a
// header counter that decreased between two reads of the same address.
// Per spec.md §7, these are fatal and surfaced distinctly from ordinary
// Memory errors.
var ErrInvariant = errors.New("chain: invariant violation")

// ErrMemory wraps any error surfaced by the underlying Memory. The
// Chain Layer never retries these; only guard mismatches are retried.
var ErrMemory = errors.New("chain: memory error")
