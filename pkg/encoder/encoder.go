// Package encoder translates between an application-level multi-set of
// value operations and the sequence of opaque memory.Word the Chain
// Layer stores, per spec.md §4.4.
//
// Encoder is pluggable: the Chain Layer never interprets a payload
// word's bytes, only the Encoder does. This package ships the reference
// encoder used throughout the rest of this module, grounded on the
// tag-byte-plus-length framing used by the teacher's root-level encoding
// package.
package encoder

import (
	"encoding/binary"
	"fmt"

	"github.com/i5heu/findex/pkg/memory"
)

// Op is a single logged operation against a keyword's value set.
type Op struct {
	Add   bool
	Value []byte
}

// Encoder is the pluggable contract spec.md §4.4 describes.
type Encoder interface {
	// Encode serializes ops into a sequence of Words. Encoding an empty
	// slice of ops yields an empty slice of Words.
	Encode(ops []Op) ([]memory.Word, error)

	// Decode interprets words as a log and returns the resulting set of
	// live values: a Del(v) suppresses every Add(v) earlier in the
	// sequence, and a later Add(v) re-inserts it.
	Decode(words []memory.Word) ([][]byte, error)
}

const (
	tagAdd byte = 0x00
	tagDel byte = 0x01
	// tagPad marks the rest of the current word as padding. The Chain
	// Layer appends independently-encoded batches to the same chain
	// over successive Insert/Delete calls, so a batch's final word is
	// frequently only partially used; tagPad tells Decode to skip to
	// the next word boundary and keep reading rather than stop, which
	// is what lets two separately-encoded batches concatenate into one
	// coherent log.
	tagPad byte = 0x02
)

// Reference is the encoder described in spec.md §4.4: each operation is
// framed as tag(1 byte) || length(varint) || bytes, and the concatenated
// stream is chunked into fixed-size Words; any unused tail of the final
// word is marked with tagPad so it is never mistaken for a frame.
type Reference struct{}

// NewReference constructs the reference Encoder.
func NewReference() Reference {
	return Reference{}
}

func (Reference) Encode(ops []Op) ([]memory.Word, error) {
	if len(ops) == 0 {
		return nil, nil
	}

	var data []byte
	var lenBuf [binary.MaxVarintLen64]byte

	for _, op := range ops {
		tag := tagAdd
		if !op.Add {
			tag = tagDel
		}
		data = append(data, tag)
		n := binary.PutUvarint(lenBuf[:], uint64(len(op.Value)))
		data = append(data, lenBuf[:n]...)
		data = append(data, op.Value...)
	}

	if rem := len(data) % memory.WordLength; rem != 0 {
		data = append(data, tagPad)
		for len(data)%memory.WordLength != 0 {
			data = append(data, 0)
		}
	}

	wordCount := len(data) / memory.WordLength
	words := make([]memory.Word, wordCount)
	for i := 0; i < wordCount; i++ {
		copy(words[i][:], data[i*memory.WordLength:(i+1)*memory.WordLength])
	}
	return words, nil
}

func (Reference) Decode(words []memory.Word) ([][]byte, error) {
	data := make([]byte, 0, len(words)*memory.WordLength)
	for _, w := range words {
		data = append(data, w[:]...)
	}

	live := make(map[string]bool)
	order := make([]string, 0)

	pos := 0
	for pos < len(data) {
		tag := data[pos]
		pos++

		if tag == tagPad {
			if rem := pos % memory.WordLength; rem != 0 {
				pos += memory.WordLength - rem
			}
			continue
		}
		if tag != tagAdd && tag != tagDel {
			return nil, fmt.Errorf("encoder: unknown tag %#x at offset %d", tag, pos-1)
		}

		length, n := binary.Uvarint(data[pos:])
		if n <= 0 {
			return nil, fmt.Errorf("encoder: malformed length varint at offset %d", pos)
		}
		pos += n

		if uint64(pos)+length > uint64(len(data)) {
			return nil, fmt.Errorf("encoder: value at offset %d overruns the log", pos)
		}
		value := data[pos : pos+int(length)]
		pos += int(length)

		key := string(value)
		if _, seen := live[key]; !seen {
			order = append(order, key)
		}
		live[key] = tag == tagAdd
	}

	out := make([][]byte, 0, len(order))
	for _, key := range order {
		if live[key] {
			out = append(out, []byte(key))
		}
	}
	return out, nil
}
