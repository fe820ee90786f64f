package graph

import (
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/lixenwraith/enginecore/stream"
	"github.com/pkg/errors"
)

// WriteWorldStreamCompressed writes ws to w the same way WriteWorldStream
// does, but wraps the byte stream in zstd: scene files are dominated by
// repeated property names and zeroed transform padding, which compresses
// well and keeps saved levels small on disk.
func WriteWorldStreamCompressed(w io.Writer, ws *WorldStream) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return errors.Wrap(err, "graph: open zstd writer")
	}
	if err := WriteWorldStream(stream.NewWriter(zw), ws); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// ReadWorldStreamCompressed is the inverse of WriteWorldStreamCompressed.
func ReadWorldStreamCompressed(r io.Reader, known map[string]bool, maxVersion uint32) (*WorldStream, []string, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, nil, errors.Wrap(err, "graph: open zstd reader")
	}
	defer zr.Close()
	return ReadWorldStream(stream.NewReader(zr), known, maxVersion)
}
