package aardict

import (
	"encoding/binary"
	"io"
	"iter"
	"sort"
	"strings"

	"github.com/go-mmap/mmap"
)

// SdctDictionary is an opened single-file sdct dictionary.
type SdctDictionary struct {
	fileName string
	file     *mmap.File
	header   sdctHeader
	decomp   Decompressor

	// shortIndex[k] maps a k-codepoint prefix (re-encoded to UTF-8, the
	// only encoding the sdct reader targets) to its delta offset into the
	// full index. Index 0 is unused; valid depths are 1..header.ShortIndexDepth.
	shortIndex []map[string]uint32

	title     string
	version   string
	copyright string
}

// OpenSdct opens the single-file sdct dictionary at path, parses its header,
// and reads its short index.
func OpenSdct(path string) (*SdctDictionary, error) {
	f, err := mmap.Open(path)
	if err != nil {
		return nil, &FormatError{Path: path, Reason: err.Error()}
	}

	buf := make([]byte, sdctHeaderSize)
	if _, err := io.ReadFull(f, buf); err != nil {
		f.Close()
		return nil, &FormatError{Path: path, Reason: "truncated sdct header: " + err.Error()}
	}
	header, err := parseSdctHeader(buf)
	if err != nil {
		f.Close()
		return nil, &FormatError{Path: path, Reason: err.Error()}
	}

	decomp, err := sdctDecompressorFor(header.CompressionMethod)
	if err != nil {
		f.Close()
		return nil, &FormatError{Path: path, Reason: err.Error()}
	}

	d := &SdctDictionary{
		fileName: path,
		file:     f,
		header:   header,
		decomp:   decomp,
	}

	if d.title, err = d.readUnitString(header.TitleOffset); err != nil {
		f.Close()
		return nil, &FormatError{Path: path, Reason: "failed to read title unit: " + err.Error()}
	}
	if d.version, err = d.readUnitString(header.VersionOffset); err != nil {
		f.Close()
		return nil, &FormatError{Path: path, Reason: "failed to read version unit: " + err.Error()}
	}
	if d.copyright, err = d.readUnitString(header.CopyrightOffset); err != nil {
		f.Close()
		return nil, &FormatError{Path: path, Reason: "failed to read copyright unit: " + err.Error()}
	}

	if err := d.readShortIndex(); err != nil {
		f.Close()
		return nil, &FormatError{Path: path, Reason: "failed to read short index: " + err.Error()}
	}

	return d, nil
}

func (d *SdctDictionary) IndexLanguage() string { return d.header.WordLang }
func (d *SdctDictionary) Title() string         { return d.title }
func (d *SdctDictionary) Version() string       { return d.version }
func (d *SdctDictionary) Copyright() string     { return d.copyright }
func (d *SdctDictionary) FileName() string      { return d.fileName }
func (d *SdctDictionary) Len() int              { return int(d.header.NumWords) }

// Close closes the owned file handle. It is idempotent.
func (d *SdctDictionary) Close() error {
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// readUnit performs a length-prefixed compressed read at absolute offset
// pos: a 4-byte little-endian length followed by that many compressed
// bytes, decompressed with the dictionary's selected method (spec.md §4.3).
func (d *SdctDictionary) readUnit(pos uint32) ([]byte, error) {
	if _, err := d.file.Seek(int64(pos), io.SeekStart); err != nil {
		return nil, err
	}
	var length uint32
	if err := binary.Read(d.file, binary.LittleEndian, &length); err != nil {
		return nil, err
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(d.file, raw); err != nil {
		return nil, err
	}
	return d.decomp.Decompress(raw)
}

func (d *SdctDictionary) readUnitString(pos uint32) (string, error) {
	b, err := d.readUnit(pos)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\x00"), nil
}

// readShortIndex reads and decompresses the short index table as a single
// blob (the whole table shares one compressed record) and organizes it into
// depth+1 prefix-length-indexed maps (spec.md §4.3).
func (d *SdctDictionary) readShortIndex() error {
	depth := int(d.header.ShortIndexDepth)
	recordSize := (depth + 1) * 4
	total := recordSize * int(d.header.ShortIndexLength)

	if _, err := d.file.Seek(int64(d.header.ShortIndexOffset), io.SeekStart); err != nil {
		return err
	}
	raw := make([]byte, total)
	if _, err := io.ReadFull(d.file, raw); err != nil {
		return err
	}
	table, err := d.decomp.Decompress(raw)
	if err != nil {
		return err
	}

	shortIndex := make([]map[string]uint32, depth+1)
	for i := range shortIndex {
		shortIndex[i] = make(map[string]uint32)
	}

	for i := 0; i < int(d.header.ShortIndexLength); i++ {
		entryStart := i * recordSize
		var word []rune
		for j := 0; j < depth; j++ {
			start := entryStart + j*4
			code := binary.LittleEndian.Uint32(table[start : start+4])
			if code != 0 {
				word = append(word, rune(code))
			}
		}
		pointerStart := entryStart + depth*4
		pointer := binary.LittleEndian.Uint32(table[pointerStart : pointerStart+4])

		if len(word) > 0 {
			shortIndex[len(word)][string(word)] = pointer
		}
	}

	d.shortIndex = shortIndex
	return nil
}

// searchPosFor selects the starting position for a query, per spec.md §4.3:
// for k = 1..depth, if the k-rune prefix of word is present in map k, keep
// it as the deepest match seen so far.
func (d *SdctDictionary) searchPosFor(word string) (offset uint32, startsWith string, ok bool) {
	depth := int(d.header.ShortIndexDepth)
	runes := []rune(word)

	for k := 1; k <= depth && k <= len(runes); k++ {
		sub := string(runes[:k])
		if off, found := d.shortIndex[k][sub]; found {
			offset = off
			startsWith = sub
			ok = true
		}
	}
	return offset, startsWith, ok
}

type fullIndexItem struct {
	NextDelta  uint16
	ArticlePtr uint32
	Word       string
}

// readFullIndexItem reads the full-index item at absolute offset pos. If
// pos falls at or past the articles region the read is out of range; per
// SPEC_FULL.md §13 decision 2, this is treated as silent end-of-chain
// (valid=false, err=nil) rather than an error.
func (d *SdctDictionary) readFullIndexItem(pos uint32) (item fullIndexItem, valid bool, err error) {
	if pos >= d.header.ArticlesOffset {
		return fullIndexItem{}, false, nil
	}
	if _, err := d.file.Seek(int64(pos), io.SeekStart); err != nil {
		return fullIndexItem{}, false, err
	}

	var fixed struct {
		Next       uint16
		Prev       uint16
		ArticlePtr uint32
	}
	if err := binary.Read(d.file, binary.LittleEndian, &fixed); err != nil {
		return fullIndexItem{}, false, err
	}

	item = fullIndexItem{NextDelta: fixed.Next, ArticlePtr: fixed.ArticlePtr}
	if fixed.Next != 0 {
		wordLen := int(fixed.Next) - 8
		if wordLen < 0 {
			return fullIndexItem{}, false, nil
		}
		wb := make([]byte, wordLen)
		if _, err := io.ReadFull(d.file, wb); err != nil {
			return fullIndexItem{}, false, err
		}
		item.Word = string(wb)
	}
	return item, true, nil
}

func (d *SdctDictionary) readArticle(ptr uint32) (Article, error) {
	raw, err := d.readUnit(d.header.ArticlesOffset + ptr)
	if err != nil {
		return Article{}, err
	}
	return Article{Text: string(raw), Dictionary: DictionaryRef{Title: d.title, FileName: d.fileName}}, nil
}

// Lookup walks the full-index chain from the short-index-selected start
// position looking for an exact word match (spec.md §4.3).
func (d *SdctDictionary) Lookup(word string) (Article, bool, error) {
	searchOffset, startsWith, ok := d.searchPosFor(word)
	if !ok {
		return Article{}, false, nil
	}

	current := d.header.FullIndexOffset + searchOffset
	for {
		item, valid, err := d.readFullIndexItem(current)
		if err != nil {
			return Article{}, false, err
		}
		if !valid || !strings.HasPrefix(item.Word, startsWith) {
			return Article{}, false, nil
		}
		if item.Word == word {
			a, err := d.readArticle(item.ArticlePtr)
			return a, err == nil, err
		}
		if item.NextDelta == 0 {
			return Article{}, false, nil
		}
		current += uint32(item.NextDelta)
	}
}

// PrefixLookup walks the full-index chain yielding every (word, handle) pair
// whose word starts with prefix, until the chain diverges from the
// short-index-selected prefix or terminates (spec.md §4.3).
//
// An empty prefix has no short-index entry to bisect from (searchPosFor's
// loop requires at least one rune), so it is handled separately by walking
// every depth-1 bucket in turn — the same way get_word_list in
// original_source/src/sdict.py has no choice but to visit every bucket to
// produce a full listing. This is also what makes PrefixLookup("") a
// correct full word enumeration for BuildCompletionIndex.
func (d *SdctDictionary) PrefixLookup(prefix string) iter.Seq2[Word, ArticleHandle] {
	if prefix == "" {
		return d.allWords()
	}

	return func(yield func(Word, ArticleHandle) bool) {
		searchOffset, startsWith, ok := d.searchPosFor(prefix)
		if !ok {
			return
		}

		current := d.header.FullIndexOffset + searchOffset
		for {
			item, valid, err := d.readFullIndexItem(current)
			if err != nil || !valid || !strings.HasPrefix(item.Word, startsWith) {
				return
			}

			if strings.HasPrefix(item.Word, prefix) {
				ptr := item.ArticlePtr
				handle := ArticleHandle(func() (Article, error) { return d.readArticle(ptr) })
				if !yield(NewWord([]byte(item.Word)), handle) {
					return
				}
			}

			if item.NextDelta == 0 {
				return
			}
			current += uint32(item.NextDelta)
		}
	}
}

// allWords enumerates every word in the dictionary by walking the full-index
// chain starting at each depth-1 short-index bucket, in bucket-key order.
// Every word has a non-empty first rune, so its depth-1 prefix always has a
// bucket entry; walking all of them in turn visits every word exactly once.
func (d *SdctDictionary) allWords() iter.Seq2[Word, ArticleHandle] {
	return func(yield func(Word, ArticleHandle) bool) {
		if len(d.shortIndex) < 2 {
			return
		}

		buckets := d.shortIndex[1]
		starts := make([]string, 0, len(buckets))
		for k := range buckets {
			starts = append(starts, k)
		}
		sort.Strings(starts)

		for _, start := range starts {
			current := d.header.FullIndexOffset + buckets[start]
			for {
				item, valid, err := d.readFullIndexItem(current)
				if err != nil || !valid || !strings.HasPrefix(item.Word, start) {
					break
				}

				ptr := item.ArticlePtr
				handle := ArticleHandle(func() (Article, error) { return d.readArticle(ptr) })
				if !yield(NewWord([]byte(item.Word)), handle) {
					return
				}

				if item.NextDelta == 0 {
					break
				}
				current += uint32(item.NextDelta)
			}
		}
	}
}
