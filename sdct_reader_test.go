package aardict

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// sdctWord is one entry going into a synthetic sdct fixture's full index.
type sdctWord struct {
	Word string
	Text string
}

// writeUnit appends a length-prefixed (u32 LE) uncompressed record to buf,
// returning the absolute offset the record starts at. The fixture uses
// compression method 0 ("none") throughout: readShortIndex derives the
// number of bytes to read from the short index's record count rather than
// from a stored compressed length (matching original_source/src/sdict.py's
// read_short_index, which has the same assumption), so only "none" keeps
// the on-disk byte count and the decompressed byte count equal for every
// unit in the file.
func writeUnit(buf *bytes.Buffer, base int, data []byte) uint32 {
	offset := uint32(base + buf.Len())
	binary.Write(buf, binary.LittleEndian, uint32(len(data)))
	buf.Write(data)
	return offset
}

// writeSdctFixture builds a single-file sdct dictionary at dir/name with
// short-index depth 1 (so every single-rune prefix is a valid search
// anchor), compression method 0 ("none"), per the header layout in spec.md
// §4.3/§6. words must already be sorted under primary collation.
func writeSdctFixture(t *testing.T, dir, name string, words []sdctWord) string {
	t.Helper()

	const depth = 1
	const headerSize = sdctHeaderSize

	// Full index: each item is next(u16) prev(u16) articlePtr(u32) word(raw
	// bytes, no length prefix — length is implied by next-8).
	var fullIndex bytes.Buffer
	var articles bytes.Buffer

	// Article records are emitted first into their own buffer, relocated
	// relative to ArticlesOffset once known.
	articlePtrs := make([]uint32, len(words))
	for i, w := range words {
		articlePtrs[i] = writeUnit(&articles, 0, []byte(w.Text))
	}

	// Each item's size must be known before its next-delta can be written.
	sizes := make([]int, len(words))
	for i, w := range words {
		sizes[i] = 8 + len(w.Word)
	}
	offsets := make([]uint32, len(words))
	running := 0
	for i := range words {
		offsets[i] = uint32(running)
		running += sizes[i]
	}
	for i, w := range words {
		binary.Write(&fullIndex, binary.LittleEndian, uint16(sizes[i]))
		binary.Write(&fullIndex, binary.LittleEndian, uint16(0)) // prev, unused by the reader
		binary.Write(&fullIndex, binary.LittleEndian, articlePtrs[i])
		fullIndex.WriteString(w.Word)
	}
	// Terminal item: next=0 ends the chain and carries no word bytes.
	binary.Write(&fullIndex, binary.LittleEndian, uint16(0))
	binary.Write(&fullIndex, binary.LittleEndian, uint16(0))
	binary.Write(&fullIndex, binary.LittleEndian, uint32(0))

	// Short index: one (depth+1)*4-byte record per distinct first-rune
	// prefix, pointing at the first full-index item with that prefix.
	type shortEntry struct {
		rune0 rune
		ptr   uint32
	}
	seen := map[rune]bool{}
	var shortEntries []shortEntry
	for i, w := range words {
		r := []rune(w.Word)[0]
		if seen[r] {
			continue
		}
		seen[r] = true
		shortEntries = append(shortEntries, shortEntry{rune0: r, ptr: offsets[i]})
	}
	sort.Slice(shortEntries, func(i, j int) bool { return shortEntries[i].rune0 < shortEntries[j].rune0 })

	var shortIndexRaw bytes.Buffer
	for _, e := range shortEntries {
		binary.Write(&shortIndexRaw, binary.LittleEndian, uint32(e.rune0))
		binary.Write(&shortIndexRaw, binary.LittleEndian, e.ptr)
	}

	title := []byte("Test Sdct")
	version := []byte("1")
	copyright := []byte("none")

	// Layout after the fixed header: title unit, version unit, copyright
	// unit, short index, full index, articles.
	var body bytes.Buffer
	titleOffset := writeUnit(&body, headerSize, title)
	versionOffset := writeUnit(&body, headerSize, version)
	copyrightOffset := writeUnit(&body, headerSize, copyright)

	shortIndexOffset := uint32(headerSize + body.Len())
	body.Write(shortIndexRaw.Bytes())

	fullIndexOffset := uint32(headerSize + body.Len())
	body.Write(fullIndex.Bytes())

	articlesOffset := uint32(headerSize + body.Len())
	body.Write(articles.Bytes())
	// Relocate article pointers: they were written relative to the articles
	// buffer's own start, which is exactly what readArticle expects (it adds
	// ArticlesOffset itself), so no adjustment needed.

	header := make([]byte, headerSize)
	copy(header[0x0:0x4], "sdct")
	copy(header[0x4:0x7], "eng")
	copy(header[0x7:0xa], "eng")
	header[0xa] = byte(depth<<4) | 0 // depth in high nibble, method 0 (none) in low nibble
	binary.LittleEndian.PutUint32(header[0xb:0xf], uint32(len(words)))
	binary.LittleEndian.PutUint32(header[0xf:0x13], uint32(len(shortEntries)))
	binary.LittleEndian.PutUint32(header[0x13:0x17], titleOffset)
	binary.LittleEndian.PutUint32(header[0x17:0x1b], copyrightOffset)
	binary.LittleEndian.PutUint32(header[0x1b:0x1f], versionOffset)
	binary.LittleEndian.PutUint32(header[0x1f:0x23], shortIndexOffset)
	binary.LittleEndian.PutUint32(header[0x23:0x27], fullIndexOffset)
	binary.LittleEndian.PutUint32(header[0x27:0x2b], articlesOffset)

	var out bytes.Buffer
	out.Write(header)
	out.Write(body.Bytes())

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestOpenSdctRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := writeSdctFixture(t, dir, "test.sdct", []sdctWord{
		{Word: "apple", Text: "a fruit"},
		{Word: "apricot", Text: "another fruit"},
		{Word: "banana", Text: "yet another fruit"},
	})

	d, err := OpenSdct(path)
	if err != nil {
		t.Fatalf("OpenSdct: %v", err)
	}
	defer d.Close()

	if got, want := d.Title(), "Test Sdct"; got != want {
		t.Errorf("Title() = %q, want %q", got, want)
	}
	if got, want := d.Version(), "1"; got != want {
		t.Errorf("Version() = %q, want %q", got, want)
	}
	if got, want := d.Len(), 3; got != want {
		t.Errorf("Len() = %d, want %d", got, want)
	}

	a, ok, err := d.Lookup("apple")
	if err != nil {
		t.Fatalf("Lookup(apple): %v", err)
	}
	if !ok {
		t.Fatal("Lookup(apple) = not found, want found")
	}
	if got, want := a.Text, "a fruit"; got != want {
		t.Errorf("Lookup(apple) text = %q, want %q", got, want)
	}

	if _, ok, err := d.Lookup("missing"); err != nil || ok {
		t.Errorf("Lookup(missing) = (_, %v, %v), want (_, false, nil)", ok, err)
	}
}

func TestSdctPrefixLookup(t *testing.T) {
	dir := t.TempDir()
	path := writeSdctFixture(t, dir, "test.sdct", []sdctWord{
		{Word: "apple", Text: "t1"},
		{Word: "apricot", Text: "t2"},
		{Word: "banana", Text: "t3"},
	})

	d, err := OpenSdct(path)
	if err != nil {
		t.Fatalf("OpenSdct: %v", err)
	}
	defer d.Close()

	var got []string
	for w, h := range d.PrefixLookup("ap") {
		got = append(got, w.Unicode)
		if _, err := h.Evaluate(); err != nil {
			t.Errorf("Evaluate(%q): %v", w.Unicode, err)
		}
	}
	want := []string{"apple", "apricot"}
	if len(got) != len(want) {
		t.Fatalf("PrefixLookup(ap) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PrefixLookup(ap)[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestSdctPrefixLookupEmptyEnumeratesAllWords covers the fix for an empty
// prefix: searchPosFor has no anchor to bisect from (its loop needs at
// least one rune), so PrefixLookup("") must fall back to walking every
// depth-1 short-index bucket rather than silently yielding nothing.
func TestSdctPrefixLookupEmptyEnumeratesAllWords(t *testing.T) {
	dir := t.TempDir()
	path := writeSdctFixture(t, dir, "test.sdct", []sdctWord{
		{Word: "apple", Text: "t1"},
		{Word: "apricot", Text: "t2"},
		{Word: "banana", Text: "t3"},
	})

	d, err := OpenSdct(path)
	if err != nil {
		t.Fatalf("OpenSdct: %v", err)
	}
	defer d.Close()

	var got []string
	for w := range d.PrefixLookup("") {
		got = append(got, w.Unicode)
	}
	want := []string{"apple", "apricot", "banana"}
	if len(got) != len(want) {
		t.Fatalf("PrefixLookup(\"\") = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PrefixLookup(\"\")[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestBuildCompletionIndexFromSdct ensures the completion cache actually
// sees every sdct word, not a silently-empty index.
func TestBuildCompletionIndexFromSdct(t *testing.T) {
	dir := t.TempDir()
	path := writeSdctFixture(t, dir, "test.sdct", []sdctWord{
		{Word: "apple", Text: "t1"},
		{Word: "apricot", Text: "t2"},
		{Word: "banana", Text: "t3"},
	})

	d, err := OpenSdct(path)
	if err != nil {
		t.Fatalf("OpenSdct: %v", err)
	}
	defer d.Close()

	idx := BuildCompletionIndex(d)
	for _, w := range []string{"apple", "apricot", "banana"} {
		if !idx.Has(w) {
			t.Errorf("completion index built from sdct missing word %q", w)
		}
	}
	got := idx.Suggest("ap", 0)
	if len(got) != 2 {
		t.Errorf("Suggest(ap) = %v, want 2 results", got)
	}
}

func TestOpenSdctRejectsBadSignature(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.sdct")
	if err := os.WriteFile(path, make([]byte, sdctHeaderSize), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if _, err := OpenSdct(path); err == nil {
		t.Fatal("expected error opening file with bad signature, got nil")
	}
}
