package stream

import "bytes"

// DedupWriteContext deduplicates strings written during its scope. Scope
// writes go through the context's buffer rather than straight to the
// underlying writer: the first occurrence of a string is assigned the
// next index in insertion order, repeats reuse it, and End flushes the
// table followed by the buffered scope payload to the real writer. Table
// before payload lets the reader resolve every index in a single pass
// instead of backpatching.
type DedupWriteContext struct {
	index map[string]uint32
	order []string
	buf   bytes.Buffer
}

// BeginDedupWrite starts a new scope. Use the returned context's Writer()
// for every write made during the scope; writes to any other writer
// bypass deduplication.
func BeginDedupWrite() *DedupWriteContext {
	return &DedupWriteContext{index: make(map[string]uint32)}
}

// Writer returns the Writer that scope content should be written through.
func (ctx *DedupWriteContext) Writer() Writer { return dedupScopeWriter{ctx} }

type dedupScopeWriter struct{ ctx *DedupWriteContext }

func (d dedupScopeWriter) WriteBytes(b []byte) error {
	_, err := d.ctx.buf.Write(b)
	return err
}

func writeDedupString(w Writer, ctx *DedupWriteContext, s string) error {
	if ctx == nil {
		return WriteString(w, s)
	}
	idx, ok := ctx.index[s]
	if !ok {
		idx = uint32(len(ctx.order))
		ctx.index[s] = idx
		ctx.order = append(ctx.order, s)
	}
	return WriteU32(w, idx)
}

// End writes the accumulated table, then the buffered scope payload, to
// dst, and returns the number of distinct strings written.
func (ctx *DedupWriteContext) End(dst Writer) (int, error) {
	if err := WriteU32(dst, uint32(len(ctx.order))); err != nil {
		return 0, err
	}
	for _, s := range ctx.order {
		if err := WriteString(dst, s); err != nil {
			return 0, err
		}
	}
	if err := dst.WriteBytes(ctx.buf.Bytes()); err != nil {
		return 0, err
	}
	return len(ctx.order), nil
}

// DedupReadContext is the read-side counterpart: BeginDedupRead consumes
// the table immediately, then hands back a context whose Reader() decodes
// indices from the remaining stream.
type DedupReadContext struct {
	table []string
	src   Reader
}

// BeginDedupRead reads the table written by DedupWriteContext.End from
// src, then returns a context whose Reader() continues reading the
// deduplicated payload from the same src.
func BeginDedupRead(src Reader) (*DedupReadContext, error) {
	n, err := ReadU32(src)
	if err != nil {
		return nil, err
	}
	table := make([]string, n)
	for i := uint32(0); i < n; i++ {
		s, err := ReadString(src)
		if err != nil {
			return nil, err
		}
		table[i] = s
	}
	return &DedupReadContext{table: table, src: src}, nil
}

// Reader returns the Reader scope content should be read through.
func (ctx *DedupReadContext) Reader() Reader { return ctx.src }

func readDedupString(r Reader, ctx *DedupReadContext) (string, error) {
	if ctx == nil {
		return ReadString(r)
	}
	idx, err := ReadU32(r)
	if err != nil {
		return "", err
	}
	if int(idx) >= len(ctx.table) {
		return "", ErrUnexpectedEof
	}
	return ctx.table[idx], nil
}
