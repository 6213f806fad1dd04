// Package badgerstore provides a Badger-backed implementation of
// memory.Memory: the same guarded-write/batch-read contract, persisted
// to disk via github.com/dgraph-io/badger/v4 instead of held in a
// process-local map.
package badgerstore

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"github.com/i5heu/findex/pkg/memory"
)

// Config configures a Store.
type Config struct {
	// Path is the Badger data directory.
	Path string
	// SyncWrites forces an fsync after every write when true. Findex's
	// durability requirements are the caller's concern; default is
	// false for throughput, matching the teacher's keyValStore default.
	SyncWrites bool
	// Logger is used for lifecycle and counter logging. If nil, a new
	// logrus logger at Warn level, writing to stderr, is used.
	Logger *logrus.Logger
}

// Store is a Badger-backed memory.Memory.
type Store struct {
	db     *badger.DB
	log    *logrus.Logger
	reads  uint64
	writes uint64
}

// Open opens (creating if necessary) a Badger database at cfg.Path and
// wraps it as a memory.Memory.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("badgerstore: path is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
		cfg.Logger.SetLevel(logrus.WarnLevel)
	}

	opts := badger.DefaultOptions(cfg.Path)
	opts.Logger = nil
	opts.SyncWrites = cfg.SyncWrites
	opts.ValueLogFileSize = 100 * 1024 * 1024

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerstore: open: %w", err)
	}

	return &Store{db: db, log: cfg.Logger}, nil
}

// Close flushes and releases the underlying Badger database.
func (s *Store) Close() error {
	return s.db.Close()
}

// BatchRead implements memory.Memory.
func (s *Store) BatchRead(_ context.Context, addresses []memory.Address) ([]*memory.Word, error) {
	out := make([]*memory.Word, len(addresses))

	err := s.db.View(func(txn *badger.Txn) error {
		for i, addr := range addresses {
			atomic.AddUint64(&s.reads, 1)
			item, err := txn.Get(addr[:])
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", addr, err)
			}
			var w memory.Word
			if err := item.Value(func(val []byte) error {
				if len(val) != memory.WordLength {
					return fmt.Errorf("corrupted word at %s: got %d bytes, want %d", addr, len(val), memory.WordLength)
				}
				copy(w[:], val)
				return nil
			}); err != nil {
				return err
			}
			out[i] = &w
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GuardedWrite implements memory.Memory.
//
// The guard read, comparison, and batch write all happen inside a single
// Badger transaction. Badger rejects the Commit with ErrConflict when a
// key the transaction read (here, the guard) was written by another
// transaction that committed after it started (SSI); on conflict we
// retry the whole transaction, since a
// conflict means some other writer linearized first and our guard
// comparison may now be stale — exactly the contention case the Chain
// Layer's insert loop is built to tolerate.
func (s *Store) GuardedWrite(_ context.Context, guard memory.Guard, bindings []memory.Binding) (*memory.Word, error) {
	if len(bindings) == 0 {
		return nil, memory.ErrEmptyBindings
	}

	var observed *memory.Word
	for {
		txn := s.db.NewTransaction(true)

		atomic.AddUint64(&s.reads, 1)
		item, err := txn.Get(guard.Address[:])
		var cur *memory.Word
		switch {
		case err == badger.ErrKeyNotFound:
			cur = nil
		case err != nil:
			txn.Discard()
			return nil, fmt.Errorf("read guard %s: %w", guard.Address, err)
		default:
			var w memory.Word
			if err := item.Value(func(val []byte) error {
				if len(val) != memory.WordLength {
					return fmt.Errorf("corrupted word at %s: got %d bytes, want %d", guard.Address, len(val), memory.WordLength)
				}
				copy(w[:], val)
				return nil
			}); err != nil {
				txn.Discard()
				return nil, err
			}
			cur = &w
		}

		if !wordEqual(cur, guard.Expected) {
			txn.Discard()
			return cur, nil
		}

		for _, b := range bindings {
			atomic.AddUint64(&s.writes, 1)
			key, w := b.Address, b.Word
			if err := txn.Set(key[:], w[:]); err != nil {
				txn.Discard()
				return nil, fmt.Errorf("stage %s: %w", b.Address, err)
			}
		}

		err = txn.Commit()
		if err == nil {
			observed = cur
			break
		}
		if err == badger.ErrConflict {
			s.log.Debug("badgerstore: guarded write conflict, retrying")
			continue
		}
		return nil, fmt.Errorf("commit: %w", err)
	}
	return observed, nil
}

func wordEqual(a, b *memory.Word) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
