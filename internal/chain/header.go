package chain

import (
	"encoding/binary"
	"fmt"

	"github.com/i5heu/findex/pkg/memory"
)

// header is the first word of every chain: a 4-byte big-endian counter
// of committed payload words, followed by 12 reserved zero bytes, per
// spec.md §4.3.
type header struct {
	counter uint32
}

func (h header) encode() memory.Word {
	var w memory.Word
	binary.BigEndian.PutUint32(w[:4], h.counter)
	return w
}

func decodeHeader(w memory.Word) header {
	return header{counter: binary.BigEndian.Uint32(w[:4])}
}

// validateReserved checks the 12 reserved bytes are zero, catching
// corrupted or foreign data at the header address early rather than
// silently misreading the chain length.
func validateReserved(w memory.Word) error {
	for _, b := range w[4:] {
		if b != 0 {
			return fmt.Errorf("%w: non-zero reserved byte in header", ErrInvariant)
		}
	}
	return nil
}
