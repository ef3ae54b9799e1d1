package aardict

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
)

// Decompressor is a named decompression method selected either by id (sdct)
// or by best-effort trial (aar).
type Decompressor interface {
	Name() string
	Decompress(data []byte) ([]byte, error)
}

type noneDecompressor struct{}

func (noneDecompressor) Name() string                          { return "none" }
func (noneDecompressor) Decompress(data []byte) ([]byte, error) { return data, nil }

type gzipDecompressor struct{}

func (gzipDecompressor) Name() string { return "gzip" }

func (gzipDecompressor) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

type bzip2Decompressor struct{}

func (bzip2Decompressor) Name() string { return "bzip2" }

func (bzip2Decompressor) Decompress(data []byte) ([]byte, error) {
	return io.ReadAll(bzip2.NewReader(bytes.NewReader(data)))
}

// aarDecompressors is the best-effort trial order used to decompress an aar
// article: the format does not record which compressor produced a given
// payload, so decompression tries each of these in turn and takes the first
// that does not error. If none succeeds the raw bytes are used as-is.
var aarDecompressors = []Decompressor{gzipDecompressor{}, bzip2Decompressor{}, noneDecompressor{}}

// decompressAny runs the any-success combinator described in spec.md §4.2's
// compression fallback design note.
func decompressAny(data []byte, candidates []Decompressor) []byte {
	for _, d := range candidates {
		if out, err := d.Decompress(data); err == nil {
			return out
		}
	}
	return data
}

// sdctDecompressors maps the low-nibble compression method id from the sdct
// header (spec.md §6) to the decompressor it selects.
var sdctDecompressors = map[byte]Decompressor{
	0: noneDecompressor{},
	1: gzipDecompressor{},
	2: bzip2Decompressor{},
}

func sdctDecompressorFor(method byte) (Decompressor, error) {
	d, ok := sdctDecompressors[method]
	if !ok {
		return nil, fmt.Errorf("unknown sdct compression method %d", method)
	}
	return d, nil
}
