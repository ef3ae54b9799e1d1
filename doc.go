// Package aardict provides read-only lookup over two on-disk dictionary
// file formats: the multi-file "aar" format and the single-file "sdct"
// format. It exposes an ordered, Unicode-aware word index and a compressed
// article store behind a uniform Dictionary interface, plus a
// DictionaryCollection that groups opened dictionaries by index language.
//
// Writing, editing, re-indexing and network sync are out of scope; this
// package only ever reads existing dictionary files.
package aardict
