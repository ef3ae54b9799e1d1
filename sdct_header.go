package aardict

import (
	"encoding/binary"
	"strings"
)

// sdctHeaderSize is the fixed 43-byte header every sdct file starts with
// (spec.md §4.3, §6).
const sdctHeaderSize = 0x2b

type sdctHeader struct {
	WordLang          string
	ArticleLang       string
	CompressionMethod byte
	ShortIndexDepth   byte
	NumWords          uint32
	ShortIndexLength  uint32
	TitleOffset       uint32
	CopyrightOffset   uint32
	VersionOffset     uint32
	ShortIndexOffset  uint32
	FullIndexOffset   uint32
	ArticlesOffset    uint32
}

// parseSdctHeader decodes the 43-byte little-endian sdct header laid out in
// spec.md §6. The compression-and-levels byte at 0x0a packs the compression
// method in the low nibble and the short-index depth in the high nibble.
func parseSdctHeader(buf []byte) (sdctHeader, error) {
	if len(buf) < sdctHeaderSize {
		return sdctHeader{}, errSdctHeaderTruncated
	}
	if string(buf[0x0:0x4]) != "sdct" {
		return sdctHeader{}, errSdctBadSignature
	}

	compAndDepth := buf[0xa]
	h := sdctHeader{
		WordLang:          strings.TrimRight(string(buf[0x4:0x7]), "\x00"),
		ArticleLang:       strings.TrimRight(string(buf[0x7:0xa]), "\x00"),
		CompressionMethod: compAndDepth & 0x0f,
		ShortIndexDepth:   compAndDepth >> 4,
		NumWords:          binary.LittleEndian.Uint32(buf[0xb:0xf]),
		ShortIndexLength:  binary.LittleEndian.Uint32(buf[0xf:0x13]),
		TitleOffset:       binary.LittleEndian.Uint32(buf[0x13:0x17]),
		CopyrightOffset:   binary.LittleEndian.Uint32(buf[0x17:0x1b]),
		VersionOffset:     binary.LittleEndian.Uint32(buf[0x1b:0x1f]),
		ShortIndexOffset:  binary.LittleEndian.Uint32(buf[0x1f:0x23]),
		FullIndexOffset:   binary.LittleEndian.Uint32(buf[0x23:0x27]),
		ArticlesOffset:    binary.LittleEndian.Uint32(buf[0x27:0x2b]),
	}
	return h, nil
}

var (
	errSdctHeaderTruncated = sdctHeaderError("truncated sdct header")
	errSdctBadSignature    = sdctHeaderError("not a valid sdct dictionary")
)

type sdctHeaderError string

func (e sdctHeaderError) Error() string { return string(e) }
