package cmdstream

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/gogpu/cmdstream/internal/wire"
)

// Disassemble writes one line per record of cb to w:
//
//	word  index  opcode               arguments
//
// It decodes the stream exactly as replay does, so a record that replay
// would reject stops the listing with the same error.
func Disassemble(w io.Writer, cb *CommandBuffer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "; %s %d records, %d words, state %s\n",
		labelOrDefault(cb.opts.label), cb.records, cb.buf.Len(), cb.state)

	var d wire.Decoder
	d.Reset(cb.buf.Words())
	r := reader{d: &d, objs: &cb.objs}

	var err error
	for i := 0; d.Next(); i++ {
		op := Opcode(d.Op())
		if !op.Valid() {
			err = &ReplayError{Index: i, Op: op, Err: fmt.Errorf("%w: unknown opcode %d", ErrCorrupt, d.Op())}
			break
		}
		r.err = nil
		rec := codecs[op].decode(&r)
		if r.err != nil {
			err = corruptRecord(i, op, &d, r.err)
			break
		}
		fmt.Fprintf(bw, "%6d %5d  %-24s %s\n", d.Offset(), i, op, formatArgs(rec))
	}
	if err == nil && d.Err() != nil {
		err = &ReplayError{Index: -1, Err: d.Err()}
	}
	if err != nil {
		fmt.Fprintf(bw, "; error: %v\n", err)
	}
	if ferr := bw.Flush(); ferr != nil {
		return ferr
	}
	return err
}

func labelOrDefault(label string) string {
	if label == "" {
		return "(unlabeled)"
	}
	return label
}

// formatArgs prints the record's fields without the surrounding braces.
func formatArgs(rec Record) string {
	switch c := rec.(type) {
	case EndCmd, EndRenderingCmd, EndAnnotationCmd:
		return ""
	case BeginAnnotationCmd:
		return fmt.Sprintf("%q color=%#06x", c.Name, c.Color)
	case AnnotationCmd:
		return fmt.Sprintf("%q color=%#06x", c.Name, c.Color)
	case SetRootConstantsCmd:
		return fmt.Sprintf("index=%d data=% x", c.Index, c.Data)
	}
	s := fmt.Sprintf("%+v", rec)
	s = strings.TrimPrefix(s, "{")
	return strings.TrimSuffix(s, "}")
}
