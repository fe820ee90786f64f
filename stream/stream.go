// Package stream implements the binary wire codec: a pair of minimal
// reader/writer interfaces plus extension functions for every Variant tag,
// length-prefixed strings, Uuid, Time, and a string deduplication scope
// the graph writer uses to avoid repeating component-type and property
// names.
package stream

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/lixenwraith/enginecore/corevalue"
	"github.com/pkg/errors"
)

// ErrUnexpectedEof is returned when a read runs out of bytes mid-value.
var ErrUnexpectedEof = errors.New("stream: unexpected eof")

// Reader is the minimal read contract a stream source must satisfy.
type Reader interface {
	ReadBytes(buf []byte) (int, error)
}

// Writer is the minimal write contract a stream sink must satisfy.
type Writer interface {
	WriteBytes(buf []byte) error
}

// byteReader adapts an io.Reader to Reader.
type byteReader struct{ r io.Reader }

func NewReader(r io.Reader) Reader { return byteReader{r} }

func (b byteReader) ReadBytes(buf []byte) (int, error) {
	n, err := io.ReadFull(b.r, buf)
	if err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return n, ErrUnexpectedEof
		}
		return n, err
	}
	return n, nil
}

type byteWriter struct{ w io.Writer }

func NewWriter(w io.Writer) Writer { return byteWriter{w} }

func (b byteWriter) WriteBytes(buf []byte) error {
	_, err := b.w.Write(buf)
	return err
}

// ReadU8/WriteU8 and friends — the primitive scalar codecs every
// extension method is built from.

func ReadU8(r Reader) (uint8, error) {
	var buf [1]byte
	if _, err := r.ReadBytes(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func WriteU8(w Writer, v uint8) error { return w.WriteBytes([]byte{v}) }

func ReadU16(r Reader) (uint16, error) {
	var buf [2]byte
	if _, err := r.ReadBytes(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func WriteU16(w Writer, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return w.WriteBytes(buf[:])
}

func ReadU32(r Reader) (uint32, error) {
	var buf [4]byte
	if _, err := r.ReadBytes(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func WriteU32(w Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return w.WriteBytes(buf[:])
}

func ReadU64(r Reader) (uint64, error) {
	var buf [8]byte
	if _, err := r.ReadBytes(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func WriteU64(w Writer, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return w.WriteBytes(buf[:])
}

func ReadF32(r Reader) (float32, error) {
	u, err := ReadU32(r)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

func WriteF32(w Writer, v float32) error { return WriteU32(w, math.Float32bits(v)) }

func ReadF64(r Reader) (float64, error) {
	u, err := ReadU64(r)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}

func WriteF64(w Writer, v float64) error { return WriteU64(w, math.Float64bits(v)) }

// ReadString reads a length-prefixed (u32 length + bytes) string.
func ReadString(r Reader) (string, error) {
	n, err := ReadU32(r)
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := r.ReadBytes(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// WriteString writes a length-prefixed string.
func WriteString(w Writer, s string) error {
	if err := WriteU32(w, uint32(len(s))); err != nil {
		return err
	}
	if len(s) == 0 {
		return nil
	}
	return w.WriteBytes([]byte(s))
}

// ReadDataBuffer reads a length-prefixed byte blob.
func ReadDataBuffer(r Reader) ([]byte, error) {
	n, err := ReadU32(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, n)
	if _, err := r.ReadBytes(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func WriteDataBuffer(w Writer, b []byte) error {
	if err := WriteU32(w, uint32(len(b))); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	return w.WriteBytes(b)
}

// ReadUuid/WriteUuid encode a Uuid as two u64s (high, low).
func ReadUuid(r Reader) (corevalue.Uuid, error) {
	hi, err := ReadU64(r)
	if err != nil {
		return corevalue.NilUuid, err
	}
	lo, err := ReadU64(r)
	if err != nil {
		return corevalue.NilUuid, err
	}
	var raw [16]byte
	binary.BigEndian.PutUint64(raw[0:8], hi)
	binary.BigEndian.PutUint64(raw[8:16], lo)
	var u corevalue.Uuid
	copy(u[:], raw[:])
	return u, nil
}

func WriteUuid(w Writer, u corevalue.Uuid) error {
	hi := binary.BigEndian.Uint64(u[0:8])
	lo := binary.BigEndian.Uint64(u[8:16])
	if err := WriteU64(w, hi); err != nil {
		return err
	}
	return WriteU64(w, lo)
}

// ReadTime/WriteTime encode Time as seconds in an f64.
func ReadTime(r Reader) (corevalue.Time, error) {
	f, err := ReadF64(r)
	if err != nil {
		return 0, err
	}
	return corevalue.Time(f), nil
}

func WriteTime(w Writer, t corevalue.Time) error { return WriteF64(w, float64(t)) }
