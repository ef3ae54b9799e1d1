package aardict

import (
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"sort"

	"github.com/go-mmap/mmap"
)

// AarDictionary is an opened multi-file aar dictionary. It owns every file
// handle (primary plus volume continuations) for its lifetime.
type AarDictionary struct {
	fileName string
	files    []*mmap.File

	articleOffset []int64 // per-volume article_offset, indexed by file_no

	index1Offset int64
	index2Offset int64
	indexCount   int64

	indexLanguage string
	// articleLanguage is derived from the index language's locale, not the
	// article_language metadata field — this reproduces a documented upstream
	// quirk in the original aarddict viewer rather than "fixing" it; see
	// SPEC_FULL.md §13, decision 1.
	articleLanguage string

	title       string
	version     string
	description string
	copyright   string
}

// OpenAar opens the aar dictionary whose primary file is at path, opening
// every additional volume the metadata declares and validating that all
// volumes share a single timestamp.
func OpenAar(path string) (*AarDictionary, error) {
	f0, err := mmap.Open(path)
	if err != nil {
		return nil, &FormatError{Path: path, Reason: err.Error()}
	}

	meta0, err := readAarHeader(path, f0, true)
	if err != nil {
		f0.Close()
		return nil, err
	}

	d := &AarDictionary{
		fileName:      path,
		files:         []*mmap.File{f0},
		articleOffset: []int64{meta0.ArticleOffset},
		index1Offset:  meta0.Index1Offset,
		index2Offset:  meta0.Index2Offset,
		indexCount:    meta0.IndexCount,
		title:         meta0.Title,
		version:       meta0.Version,
		description:   meta0.Description,
		copyright:     meta0.Copyright,
	}
	d.indexLanguage = normalizeLanguage(meta0.IndexLanguage)
	d.articleLanguage = normalizeLanguage(meta0.IndexLanguage)

	fileCount := int(meta0.FileCount)
	for i := 1; i < fileCount; i++ {
		vp, err := volumePath(path, i)
		if err != nil {
			closeAll(d.files)
			return nil, &FormatError{Path: path, Reason: err.Error()}
		}

		fv, err := mmap.Open(vp)
		if err != nil {
			closeAll(d.files)
			return nil, &FormatError{Path: vp, Reason: err.Error()}
		}
		d.files = append(d.files, fv)

		metaV, err := readAarHeader(vp, fv, false)
		if err != nil {
			closeAll(d.files)
			return nil, err
		}
		if !jsonRawEqual(metaV.Timestamp, meta0.Timestamp) {
			closeAll(d.files)
			return nil, &VolumeMismatchError{Primary: path, Volume: vp}
		}
		d.articleOffset = append(d.articleOffset, metaV.ArticleOffset)
	}

	if len(d.files) != fileCount {
		closeAll(d.files)
		return nil, &FormatError{Path: path, Reason: fmt.Sprintf("file_count %d does not match %d opened volumes", fileCount, len(d.files))}
	}

	return d, nil
}

func jsonRawEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (d *AarDictionary) IndexLanguage() string   { return d.indexLanguage }
func (d *AarDictionary) ArticleLanguage() string { return d.articleLanguage }
func (d *AarDictionary) Title() string           { return d.title }
func (d *AarDictionary) Version() string         { return d.version }
func (d *AarDictionary) Description() string     { return d.description }
func (d *AarDictionary) Copyright() string       { return d.copyright }
func (d *AarDictionary) FileName() string        { return d.fileName }
func (d *AarDictionary) Len() int                { return int(d.indexCount) }

// Close closes every owned file handle. It is idempotent: a second call is
// a no-op rather than an error.
func (d *AarDictionary) Close() error {
	if d.files == nil {
		return nil
	}
	err := closeAll(d.files)
	d.files = nil
	return err
}

type aarIndexRecord struct {
	KeyPos         uint32
	FileNo         uint32
	ArticleUnitPtr uint32
}

func (d *AarDictionary) indexRecord(i int) (aarIndexRecord, error) {
	if i < 0 || int64(i) >= d.indexCount {
		return aarIndexRecord{}, fmt.Errorf("index position %d out of range [0, %d)", i, d.indexCount)
	}
	f := d.files[0]
	if _, err := f.Seek(d.index1Offset+int64(i)*aarIndexRecSz, io.SeekStart); err != nil {
		return aarIndexRecord{}, err
	}
	var rec aarIndexRecord
	if err := binary.Read(f, binary.BigEndian, &rec); err != nil {
		return aarIndexRecord{}, err
	}
	return rec, nil
}

// WordAt reads word i from the key pool (random access).
func (d *AarDictionary) WordAt(i int) (Word, error) {
	rec, err := d.indexRecord(i)
	if err != nil {
		return Word{}, err
	}

	f := d.files[0]
	if _, err := f.Seek(d.index2Offset+int64(rec.KeyPos), io.SeekStart); err != nil {
		return Word{}, err
	}
	var keyLen uint32
	if err := binary.Read(f, binary.BigEndian, &keyLen); err != nil {
		return Word{}, err
	}
	raw := make([]byte, keyLen)
	if _, err := io.ReadFull(f, raw); err != nil {
		return Word{}, err
	}
	return NewWord(raw), nil
}

// ArticleHandle returns a lazy handle to the article at index position i.
func (d *AarDictionary) ArticleHandle(i int) (ArticleHandle, error) {
	rec, err := d.indexRecord(i)
	if err != nil {
		return nil, err
	}
	fileNo := int(rec.FileNo)
	if fileNo < 0 || fileNo >= len(d.files) {
		return nil, fmt.Errorf("article file_no %d out of range [0, %d)", fileNo, len(d.files))
	}
	offset := d.articleOffset[fileNo] + int64(rec.ArticleUnitPtr)

	return func() (Article, error) {
		return d.readArticle(fileNo, offset)
	}, nil
}

func (d *AarDictionary) readArticle(fileNo int, offset int64) (Article, error) {
	f := d.files[fileNo]
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return Article{}, err
	}
	var length uint32
	if err := binary.Read(f, binary.BigEndian, &length); err != nil {
		return Article{}, err
	}
	compressed := make([]byte, length)
	if _, err := io.ReadFull(f, compressed); err != nil {
		return Article{}, err
	}

	raw := decompressAny(compressed, aarDecompressors)
	ref := DictionaryRef{Title: d.title, FileName: d.fileName}
	return toArticle(raw, ref), nil
}

// PrefixLookup finds the leftmost index position whose Word is not less
// than query under the truncating primary-strength comparison, then yields
// every (word, articleHandle) pair while that Word remains "equal" to query
// (spec.md §4.2). Iteration stops at end of index or at the first entry
// whose collation-key prefix diverges from the query. A genuine I/O error
// reading a word or article is treated the same as reaching the end of the
// index (spec.md §7's no-match contract), rather than being surfaced to the
// caller as distinguishable from a clean end-of-results.
func (d *AarDictionary) PrefixLookup(query string) iter.Seq2[Word, ArticleHandle] {
	return func(yield func(Word, ArticleHandle) bool) {
		n := int(d.indexCount)
		p := sort.Search(n, func(i int) bool {
			w, err := d.WordAt(i)
			if err != nil {
				return true
			}
			return compareWordPrefix(w.Unicode, query) >= 0
		})

		for p < n {
			w, err := d.WordAt(p)
			if err != nil {
				return
			}
			if compareWordPrefix(w.Unicode, query) != 0 {
				return
			}
			h, err := d.ArticleHandle(p)
			if err != nil {
				return
			}
			if !yield(w, h) {
				return
			}
			p++
		}
	}
}
