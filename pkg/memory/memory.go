// Package memory defines the abstract untrusted key-value contract the
// Findex core is built on: a fixed-width Address maps to a fixed-width
// Word, and the only mutation primitive is an atomic guarded write (a
// compare-and-set over a batch of bindings).
//
// Concrete back-ends — in-memory, Badger-backed, or otherwise — satisfy
// this interface. The cryptographic core never inspects the content of a
// Word; it only compares and moves opaque bytes.
package memory

import (
	"context"
	"fmt"
)

// AddressLength is the fixed width, in bytes, of every Address.
const AddressLength = 32

// WordLength is the fixed width, in bytes, of every Word.
const WordLength = 16

// Address is an opaque 32-byte key into a Memory.
type Address [AddressLength]byte

// String returns the hex representation of the address.
func (a Address) String() string {
	return fmt.Sprintf("%x", a[:])
}

// Word is an opaque, fixed-size 16-byte value stored at an Address.
type Word [WordLength]byte

// Guard identifies the address a GuardedWrite is conditioned on, plus the
// word it is expected to currently hold. A nil Expected means "the
// address has never been written".
type Guard struct {
	Address  Address
	Expected *Word
}

// Binding is a single address/word pair applied atomically as part of a
// guarded write.
type Binding struct {
	Address Address
	Word    Word
}

// Memory is the only I/O boundary the Findex core crosses. Every method
// may suspend (it is the sole source of asynchrony in the core); once it
// returns, all derived work (address derivation, encryption, encoding)
// runs to completion without further suspension.
//
// Implementations must be safe for concurrent use: multiple Findex
// handles, and multiple goroutines within one handle, may call into the
// same Memory simultaneously.
type Memory interface {
	// BatchRead returns, in input order, the word currently stored at
	// each address, or nil where the address has never been written.
	// Reads are independently linearizable; there is no atomicity
	// guarantee across the batch.
	BatchRead(ctx context.Context, addresses []Address) ([]*Word, error)

	// GuardedWrite atomically tests guard.Address against guard.Expected
	// and, only if they match, applies every binding. It always returns
	// the word observed at guard.Address at the linearization point:
	// on success that is guard.Expected itself; on failure it is
	// whatever is actually stored there, letting the caller retry with
	// fresh context.
	//
	// bindings must be non-empty; an empty batch is a programmer error,
	// not an empty-but-successful write.
	GuardedWrite(ctx context.Context, guard Guard, bindings []Binding) (*Word, error)
}

// ErrEmptyBindings is returned by conforming implementations when
// GuardedWrite is called with no bindings.
var ErrEmptyBindings = fmt.Errorf("memory: guarded write requires at least one binding")
