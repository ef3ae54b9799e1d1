package aardict

import "unicode/utf8"

// Word pairs the raw on-disk key bytes with their decoded Unicode form. If
// the raw bytes are not valid UTF-8 the decoded form is the sentinel string
// "error" and DecodeError is set; the raw bytes are preserved either way.
type Word struct {
	Raw         []byte
	Unicode     string
	DecodeError bool
}

// NewWord decodes raw key bytes into a Word, per spec.md §3.
func NewWord(raw []byte) Word {
	if !utf8.Valid(raw) {
		return Word{Raw: raw, Unicode: "error", DecodeError: true}
	}
	return Word{Raw: raw, Unicode: string(raw)}
}

// Tag describes a markup span over an article's text. A negative Start or
// End denotes "unset".
type Tag struct {
	Name       string
	Start      int
	End        int
	Attributes map[string]string
}

// DictionaryRef is a non-owning back-reference from an Article to the
// dictionary it came from. It is a value, not a pointer, so an Article can
// outlive the call that produced it without pinning the dictionary's file
// handles open.
type DictionaryRef struct {
	Title    string
	FileName string
}

// Article is the decoded text of one dictionary entry plus its ordered
// sequence of structural tags. Rendering (HTML/markup interpretation) is the
// caller's concern; Article only carries decoded data.
type Article struct {
	Text       string
	Tags       []Tag
	Dictionary DictionaryRef
}

// ArticleHandle is a deferred reference to one article. Evaluating it
// performs one random file read plus decompression (and, for aar, a tagged
// text decode). Evaluating the same handle twice yields equal Articles
// barring intervening file mutation. A handle borrows its owning dictionary
// for the call; it does not hold an owning reference to any file handle.
type ArticleHandle func() (Article, error)

// Evaluate reads and decodes the article this handle refers to.
func (h ArticleHandle) Evaluate() (Article, error) {
	return h()
}

// WordLookup aggregates a word together with the lazy article handle(s)
// produced for it by one query. DictionaryCollection.Lookup yields one
// WordLookup per (word, article) pair encountered during prefix iteration;
// a caller merging results across dictionaries by word key can append
// further handles to Articles as it does so.
type WordLookup struct {
	Word     Word
	Articles []ArticleHandle
}

// ReadArticles evaluates every handle in order, stopping at the first error.
func (wl WordLookup) ReadArticles() ([]Article, error) {
	out := make([]Article, 0, len(wl.Articles))
	for _, h := range wl.Articles {
		a, err := h.Evaluate()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
