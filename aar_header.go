package aardict

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-mmap/mmap"
	"golang.org/x/text/language"
)

// aar files start with a fixed 3-byte magic, a 2-byte version, and an
// 8-ASCII-digit big-endian decimal length prefix for the JSON metadata
// blob that follows (spec.md §4.2, §6).
const (
	aarMagic      = "aar"
	aarVersion    = "01"
	aarLenDigits  = 8
	aarIndexRecSz = 12 // key_pos u32 | file_no u32 | article_unit_ptr u32, all BE
)

// readAarHeader reads the magic/version/metadata-length preamble and the
// metadata JSON blob that follows it from r, which must be positioned at
// the start of the file. primary selects which metadata keys are required:
// the full set for volume 0, only article_offset+timestamp for a
// continuation volume (see decodeAarMetadata).
func readAarHeader(path string, r io.Reader, primary bool) (aarMetadata, error) {
	preamble := make([]byte, 3+2+aarLenDigits)
	if _, err := io.ReadFull(r, preamble); err != nil {
		return aarMetadata{}, &FormatError{Path: path, Reason: "truncated header: " + err.Error()}
	}

	if string(preamble[0:3]) != aarMagic {
		return aarMetadata{}, &FormatError{Path: path, Reason: "not a recognized aar dictionary file"}
	}
	if string(preamble[3:5]) != aarVersion {
		return aarMetadata{}, &FormatError{Path: path, Reason: "incompatible aar version"}
	}

	metaLen, err := strconv.Atoi(string(preamble[5 : 5+aarLenDigits]))
	if err != nil {
		return aarMetadata{}, &FormatError{Path: path, Reason: "malformed metadata length: " + err.Error()}
	}

	raw := make([]byte, metaLen)
	if _, err := io.ReadFull(r, raw); err != nil {
		return aarMetadata{}, &FormatError{Path: path, Reason: "truncated metadata: " + err.Error()}
	}

	meta, err := decodeAarMetadata(raw, primary)
	if err != nil {
		return aarMetadata{}, &FormatError{Path: path, Reason: err.Error()}
	}
	return meta, nil
}

// volumePath computes the file name for aar volume n (1..file_count-1): the
// primary file name with its final two characters replaced by a zero-padded
// two-digit volume number (spec.md §4.2, §6).
func volumePath(primary string, n int) (string, error) {
	if len(primary) < 2 {
		return "", fmt.Errorf("primary file name %q too short to derive a volume name", primary)
	}
	return fmt.Sprintf("%s%02d", primary[:len(primary)-2], n), nil
}

// normalizeLanguage mirrors the original viewer's use of an ICU Locale to
// narrow a declared language tag down to its base language subtag, e.g.
// "en_US" -> "en". An unparsable or empty tag is returned unchanged.
func normalizeLanguage(tag string) string {
	if tag == "" {
		return tag
	}
	t, err := language.Parse(tag)
	if err != nil {
		return tag
	}
	base, conf := t.Base()
	if conf == language.No {
		return tag
	}
	return base.String()
}

// closeAll closes every non-nil file in files, collecting but not stopping
// on individual close errors, and returns the first one encountered.
func closeAll(files []*mmap.File) error {
	var first error
	for _, f := range files {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
