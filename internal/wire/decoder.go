package wire

import (
	"fmt"

	"honnef.co/go/safeish"
)

// Decoder walks the records of a word stream in order.
//
// The decoder never allocates: fixed blocks are returned by value and arrays
// are returned as views into the stream. Views stay valid for as long as the
// underlying buffer is not mutated, which a sealed buffer never is.
//
//	dec := wire.NewDecoder(buf.Words())
//	for dec.Next() {
//	    switch dec.Op() {
//	    case opDraw:
//	        args, err := wire.ReadFixed[drawArgs](dec)
//	        ...
//	    }
//	}
//	if err := dec.Err(); err != nil {
//	    // corrupt stream
//	}
type Decoder struct {
	words []uint64

	// Current record bounds and read cursor.
	start int
	pos   int
	end   int
	op    uint32

	next int
	err  error
}

// NewDecoder creates a decoder positioned before the first record of words.
func NewDecoder(words []uint64) *Decoder {
	return &Decoder{words: words}
}

// Reset repositions the decoder before the first record of words.
func (d *Decoder) Reset(words []uint64) {
	*d = Decoder{words: words}
}

// Next advances to the next record. It returns false at the end of the
// stream or when the next header is malformed; Err distinguishes the two.
func (d *Decoder) Next() bool {
	if d.err != nil || d.next >= len(d.words) {
		return false
	}
	op, length := splitHeader(d.words[d.next])
	if length < 1 || length > len(d.words)-d.next {
		d.err = fmt.Errorf("%w: length %d at word %d", ErrCorrupt, length, d.next)
		return false
	}
	d.op = op
	d.start = d.next
	d.pos = d.next + 1
	d.end = d.next + length
	d.next = d.end
	return true
}

// Op returns the opcode of the current record.
func (d *Decoder) Op() uint32 {
	return d.op
}

// Offset returns the word offset of the current record's header.
func (d *Decoder) Offset() int {
	return d.start
}

// Len returns the length in words of the current record.
func (d *Decoder) Len() int {
	return d.end - d.start
}

// Remaining returns the number of unread words in the current record.
func (d *Decoder) Remaining() int {
	return d.end - d.pos
}

// Err returns the error that stopped iteration, if any.
func (d *Decoder) Err() error {
	return d.err
}

// ReadFixed reads a fixed-size block of type T from the current record.
func ReadFixed[T any](d *Decoder) (T, error) {
	var v T
	n := wordsFor(sizeOf[T]())
	if n == 0 {
		return v, nil
	}
	if n > d.end-d.pos {
		return v, ErrTruncated
	}
	v = *safeish.Cast[*T](&d.words[d.pos])
	d.pos += n
	return v, nil
}

// ReadArray reads a count-prefixed array from the current record. The
// returned slice aliases the stream and has its capacity clipped to its
// length, so appending to it never writes into the stream. A zero count
// yields an empty, non-nil slice.
func ReadArray[E any](d *Decoder) ([]E, error) {
	if d.pos >= d.end {
		return nil, ErrTruncated
	}
	count := d.words[d.pos]
	size := sizeOf[E]()
	avail := d.end - d.pos - 1
	if size > 0 && count > uint64(avail)*WordSize/uint64(size) {
		return nil, ErrTruncated
	}
	d.pos++
	if count == 0 || size == 0 {
		return []E{}, nil
	}
	c := int(count) //nolint:gosec // bounded by the record length above
	n := wordsFor(c * size)
	view := safeish.SliceCast[[]E](d.words[d.pos : d.pos+n])
	d.pos += n
	return view[:c:c], nil
}

// ReadBytes reads a count-prefixed byte string from the current record.
func ReadBytes(d *Decoder) ([]byte, error) {
	return ReadArray[byte](d)
}
