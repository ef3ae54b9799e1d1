package aardict

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
)

// CompletionIndex is an in-memory prefix-completion cache over a
// dictionary's word list. The on-disk formats already support efficient
// single-query prefix search (§4.2, §4.3), but a caller driving an
// interactive search box wants sub-millisecond suggestions for every
// keystroke without re-walking the on-disk index each time; CompletionIndex
// answers that need from memory instead.
//
// Adapted from the teacher's query-time prefix tree (trie.go): same node
// shape and binary serialization, extended with prefix enumeration (the
// original only supported exact membership).
type CompletionIndex struct {
	root *completionNode
}

type completionNode struct {
	children map[rune]*completionNode
	isWord   bool
}

func newCompletionNode() *completionNode {
	return &completionNode{children: make(map[rune]*completionNode)}
}

// NewCompletionIndex returns an empty index.
func NewCompletionIndex() *CompletionIndex {
	return &CompletionIndex{root: newCompletionNode()}
}

// BuildCompletionIndex builds a CompletionIndex from every word a dictionary
// yields for the empty-string prefix query. AarDictionary answers this with
// a full bisect-to-start scan; SdctDictionary answers it by walking every
// depth-1 short-index bucket in turn (see SdctDictionary.PrefixLookup) since
// its bisect has no anchor for an empty prefix. Both yield the dictionary's
// complete word list.
func BuildCompletionIndex(d Dictionary) *CompletionIndex {
	idx := NewCompletionIndex()
	for word := range d.PrefixLookup("") {
		idx.Insert(word.Unicode)
	}
	return idx
}

// Insert adds a word to the index.
func (c *CompletionIndex) Insert(word string) {
	current := c.root
	for _, ch := range word {
		next, ok := current.children[ch]
		if !ok {
			next = newCompletionNode()
			current.children[ch] = next
		}
		current = next
	}
	current.isWord = true
}

// Has reports whether word was inserted verbatim.
func (c *CompletionIndex) Has(word string) bool {
	current := c.root
	for _, ch := range word {
		next, ok := current.children[ch]
		if !ok {
			return false
		}
		current = next
	}
	return current.isWord
}

// Suggest returns up to limit complete words that start with prefix, in
// sorted order. A limit <= 0 means unbounded.
func (c *CompletionIndex) Suggest(prefix string, limit int) []string {
	current := c.root
	for _, ch := range prefix {
		next, ok := current.children[ch]
		if !ok {
			return nil
		}
		current = next
	}

	var out []string
	collectWords(current, prefix, &out, limit)
	sort.Strings(out)
	return out
}

func collectWords(n *completionNode, prefix string, out *[]string, limit int) {
	if limit > 0 && len(*out) >= limit {
		return
	}
	if n.isWord {
		*out = append(*out, prefix)
	}
	for ch, child := range n.children {
		collectWords(child, prefix+string(ch), out, limit)
		if limit > 0 && len(*out) >= limit {
			return
		}
	}
}

// Serialize persists the index in the same version-prefixed binary layout
// the teacher's prefix tree uses, so callers can cache it alongside a
// dictionary file instead of rebuilding it on every process start.
//
// Layout (big endian), relative to the start of the root node:
// 0x00               : u32   version, currently 1
// 0x04               : tree structure (see serializeCompletionNode)
func (c *CompletionIndex) Serialize() ([]byte, error) {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, uint32(1))
	st := serializeCompletionNode(c.root)
	n, err := buf.Write(st)
	if err != nil {
		return nil, err
	}
	if n < len(st) {
		return nil, io.ErrShortWrite
	}
	return buf.Bytes(), nil
}

// serializeCompletionNode writes one node's record:
// 0x00               : u8    1 if this node ends a word, 0 otherwise
// 0x01               : u16   number of children
// 0x03               : rune  for child 0 (utf-8 encoded)
// 0x03+rune0         : subtree under child 0
// ...                : remaining children, each rune followed by its subtree
func serializeCompletionNode(n *completionNode) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.BigEndian, n.isWord)
	binary.Write(buf, binary.BigEndian, uint16(len(n.children)))
	for ch, child := range n.children {
		buf.WriteRune(ch)
		buf.Write(serializeCompletionNode(child))
	}
	return buf.Bytes()
}

// DeserializeCompletionIndex reads back an index written by Serialize.
func DeserializeCompletionIndex(data []byte) (*CompletionIndex, error) {
	buf := bytes.NewReader(data)

	var version uint32
	if err := binary.Read(buf, binary.BigEndian, &version); err != nil {
		return nil, err
	}
	if version != 1 {
		return nil, fmt.Errorf("unsupported completion index version %d", version)
	}

	root, err := deserializeCompletionNode(buf)
	if err != nil {
		return nil, err
	}
	return &CompletionIndex{root: root}, nil
}

func deserializeCompletionNode(r *bytes.Reader) (*completionNode, error) {
	n := newCompletionNode()
	if err := binary.Read(r, binary.BigEndian, &n.isWord); err != nil {
		return nil, err
	}

	var numChildren uint16
	if err := binary.Read(r, binary.BigEndian, &numChildren); err != nil {
		return nil, err
	}
	for i := uint16(0); i < numChildren; i++ {
		ch, _, err := r.ReadRune()
		if err != nil {
			return nil, err
		}
		child, err := deserializeCompletionNode(r)
		if err != nil {
			return nil, err
		}
		n.children[ch] = child
	}
	return n, nil
}
