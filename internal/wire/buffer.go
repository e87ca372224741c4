// Package wire implements the binary command stream shared by recording
// and replay: a growable store of 8-byte words, an encoder that appends
// self-describing records to it, and a bounds-checked decoder that walks the
// records back in order.
//
// Record layout:
//
//	| header | fixed block ... | count | payload ... | count | payload ... |
//
// The header's low 32 bits hold the opcode and the high 32 bits hold the
// record length in words, header included. Fixed blocks and array payloads
// are rounded up to whole words, so every value starts 8-byte aligned and
// arrays can be viewed in place without copying.
//
// The package knows nothing about individual opcodes. The field order of a
// record is a contract between the code that encodes it and the code that
// decodes it.
package wire

import (
	"errors"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// WordSize is the size in bytes of one stream word.
const WordSize = 8

// Errors reported by the word store, the encoder and the decoder.
var (
	// ErrBufferFull is returned when an append would grow the buffer past
	// its limit. The buffer keeps its previous length.
	ErrBufferFull = errors.New("wire: buffer limit exceeded")

	// ErrSealed is returned when appending to a sealed buffer.
	ErrSealed = errors.New("wire: buffer is sealed")

	// ErrCorrupt is returned when a record header is malformed.
	ErrCorrupt = errors.New("wire: corrupt record header")

	// ErrTruncated is returned when a read runs past the end of the record.
	ErrTruncated = errors.New("wire: read past end of record")

	// ErrNested is returned when Begin is called inside an open record.
	ErrNested = errors.New("wire: record already open")
)

// wordsFor returns the number of words needed to hold n bytes.
func wordsFor[T constraints.Integer](n T) int {
	return (int(n) + WordSize - 1) / WordSize
}

// WordsFor returns the number of words needed to hold n bytes.
func WordsFor(n int) int {
	return wordsFor(n)
}

// sizeOf returns the in-memory size of T in bytes.
func sizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// Buffer is an append-only store of words holding encoded records.
//
// A Buffer is owned by one recording at a time and is not safe for
// concurrent mutation. Once sealed it is read-only and may be decoded by any
// number of Decoders.
type Buffer struct {
	words  []uint64
	limit  int
	sealed bool
}

// NewBuffer creates a buffer with room for capacity words preallocated.
func NewBuffer(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{words: make([]uint64, 0, capacity)}
}

// SetLimit bounds the buffer to at most n words. Zero removes the bound.
func (b *Buffer) SetLimit(n int) {
	if n < 0 {
		n = 0
	}
	b.limit = n
}

// Limit returns the word limit, or 0 if the buffer is unbounded.
func (b *Buffer) Limit() int {
	return b.limit
}

// Len returns the number of words in the buffer.
func (b *Buffer) Len() int {
	return len(b.words)
}

// Cap returns the number of words the buffer can hold before reallocating.
func (b *Buffer) Cap() int {
	return cap(b.words)
}

// Words returns the buffer contents. The slice aliases the buffer storage.
func (b *Buffer) Words() []uint64 {
	return b.words
}

// Reset empties and unseals the buffer while keeping its storage.
func (b *Buffer) Reset() {
	clear(b.words)
	b.words = b.words[:0]
	b.sealed = false
}

// Seal makes the buffer read-only. Further appends fail with ErrSealed.
func (b *Buffer) Seal() {
	b.sealed = true
}

// Sealed reports whether the buffer has been sealed.
func (b *Buffer) Sealed() bool {
	return b.sealed
}

// grow extends the buffer by n zeroed words and returns the index of the
// first new word. On failure the buffer is unchanged.
func (b *Buffer) grow(n int) (int, error) {
	if b.sealed {
		return 0, ErrSealed
	}
	start := len(b.words)
	if b.limit > 0 && start+n > b.limit {
		return 0, ErrBufferFull
	}
	if start+n > cap(b.words) {
		// Same doubling policy as a plain append, with a floor so small
		// recordings don't reallocate on every command.
		size := 2 * cap(b.words)
		if size < 256 {
			size = 256
		}
		if size < start+n {
			size = 2 * (start + n)
		}
		if b.limit > 0 && size > b.limit {
			size = b.limit
		}
		words := make([]uint64, start, size)
		copy(words, b.words)
		b.words = words
	}
	b.words = b.words[:start+n]
	return start, nil
}

// truncate shrinks the buffer back to n words, zeroing the dropped tail.
func (b *Buffer) truncate(n int) {
	if n >= len(b.words) {
		return
	}
	clear(b.words[n:])
	b.words = b.words[:n]
}

func header(op uint32, length int) uint64 {
	return uint64(op) | uint64(uint32(length))<<32 //nolint:gosec // record length is bounded by the buffer limit
}

func splitHeader(h uint64) (op uint32, length int) {
	return uint32(h), int(h >> 32)
}
