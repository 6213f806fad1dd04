// Package inmemory provides a mutex-guarded map implementation of
// memory.Memory, suitable as Findex's zero-dependency default and as a
// reference point for cross-backend equivalence testing.
package inmemory

import (
	"context"
	"sync"

	"github.com/i5heu/findex/pkg/memory"
)

// Store is a thread-safe, process-local implementation of memory.Memory.
// The zero value is not usable; construct with New.
type Store struct {
	mu   sync.Mutex
	data map[memory.Address]memory.Word
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		data: make(map[memory.Address]memory.Word),
	}
}

// BatchRead implements memory.Memory.
func (s *Store) BatchRead(_ context.Context, addresses []memory.Address) ([]*memory.Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*memory.Word, len(addresses))
	for i, a := range addresses {
		if w, ok := s.data[a]; ok {
			wc := w
			out[i] = &wc
		}
	}
	return out, nil
}

// GuardedWrite implements memory.Memory.
func (s *Store) GuardedWrite(_ context.Context, guard memory.Guard, bindings []memory.Binding) (*memory.Word, error) {
	if len(bindings) == 0 {
		return nil, memory.ErrEmptyBindings
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.data[guard.Address]
	var curPtr *memory.Word
	if ok {
		curPtr = &cur
	}

	if !wordEqual(curPtr, guard.Expected) {
		return curPtr, nil
	}

	for _, b := range bindings {
		s.data[b.Address] = b.Word
	}
	return curPtr, nil
}

// Len reports the number of addresses currently populated. Test-only
// convenience, not part of memory.Memory.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Snapshot returns a copy of every word currently stored, keyed by its
// address. Test-only convenience, not part of memory.Memory.
func (s *Store) Snapshot() map[memory.Address]memory.Word {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[memory.Address]memory.Word, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}
	return out
}

func wordEqual(a, b *memory.Word) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
