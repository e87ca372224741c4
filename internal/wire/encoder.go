package wire

import "honnef.co/go/safeish"

// Encoder appends records to a Buffer.
//
// A record is written between Begin and End. Values written in between are
// staged in the buffer but the record only counts once End has patched its
// header; if anything fails along the way End rolls the buffer back to the
// length it had before Begin, so a partial record is never left behind.
//
//	enc.Begin(op)
//	wire.Fixed(enc, &block)
//	wire.Array(enc, elems)
//	if err := enc.End(); err != nil {
//	    // buffer unchanged
//	}
type Encoder struct {
	buf   *Buffer
	start int
	err   error
}

// NewEncoder creates an encoder appending to b.
func NewEncoder(b *Buffer) *Encoder {
	return &Encoder{buf: b, start: -1}
}

// Buffer returns the buffer being appended to.
func (e *Encoder) Buffer() *Buffer {
	return e.buf
}

// Open reports whether a record has been begun but not ended.
func (e *Encoder) Open() bool {
	return e.start >= 0
}

// Begin starts a new record for op.
func (e *Encoder) Begin(op uint32) {
	if e.start >= 0 {
		e.err = ErrNested
		return
	}
	e.start = e.buf.Len()
	e.err = nil
	at, err := e.buf.grow(1)
	if err != nil {
		e.err = err
		return
	}
	e.buf.words[at] = header(op, 0)
}

// End finishes the current record and returns the first error that occurred
// while writing it. On error the buffer is truncated to its length before
// Begin.
func (e *Encoder) End() error {
	if e.start < 0 {
		return ErrNested
	}
	start, err := e.start, e.err
	e.start, e.err = -1, nil
	if err != nil {
		e.buf.truncate(start)
		return err
	}
	op, _ := splitHeader(e.buf.words[start])
	e.buf.words[start] = header(op, e.buf.Len()-start)
	return nil
}

func (e *Encoder) writable() bool {
	return e.start >= 0 && e.err == nil
}

// Fixed writes the fixed-size block *v into the current record, rounded up
// to whole words. T must not contain pointers.
func Fixed[T any](e *Encoder, v *T) {
	if !e.writable() {
		return
	}
	n := wordsFor(sizeOf[T]())
	if n == 0 {
		return
	}
	at, err := e.buf.grow(n)
	if err != nil {
		e.err = err
		return
	}
	copy(safeish.SliceCast[[]byte](e.buf.words[at:at+n]), safeish.AsBytes(v))
}

// Array writes a count word followed by a deep copy of s into the current
// record. The caller may reuse s as soon as Array returns. E must not
// contain pointers.
func Array[E any](e *Encoder, s []E) {
	if !e.writable() {
		return
	}
	n := wordsFor(len(s) * sizeOf[E]())
	at, err := e.buf.grow(1 + n)
	if err != nil {
		e.err = err
		return
	}
	e.buf.words[at] = uint64(len(s))
	if n > 0 {
		copy(safeish.SliceCast[[]byte](e.buf.words[at+1:at+1+n]), safeish.SliceCast[[]byte](s))
	}
}

// Bytes writes a count-prefixed byte string into the current record.
func Bytes(e *Encoder, b []byte) {
	Array(e, b)
}

// String writes s as a count-prefixed byte string.
func String(e *Encoder, s string) {
	Array(e, []byte(s))
}

// Append writes a complete record made of op and the fixed block *v.
func Append[T any](e *Encoder, op uint32, v *T) error {
	e.Begin(op)
	Fixed(e, v)
	return e.End()
}

// AppendArray writes a complete record made of op, the fixed block *v and
// one count-prefixed array.
func AppendArray[T, E any](e *Encoder, op uint32, v *T, elems []E) error {
	e.Begin(op)
	Fixed(e, v)
	Array(e, elems)
	return e.End()
}
