package aardict

import "iter"

// Dictionary is the common surface shared by AarDictionary and
// SdctDictionary that DictionaryCollection operates over. Equality between
// two dictionaries is the (Title, Version, FileName) triple (spec.md §3).
type Dictionary interface {
	IndexLanguage() string
	Title() string
	Version() string
	FileName() string
	PrefixLookup(prefix string) iter.Seq2[Word, ArticleHandle]
	Close() error
}

type dictKey struct {
	title    string
	version  string
	fileName string
}

func keyOf(d Dictionary) dictKey {
	return dictKey{title: d.Title(), version: d.Version(), fileName: d.FileName()}
}

// DictionaryCollection groups opened dictionaries by index language and
// performs prefix lookups that fan out across the dictionaries in one
// language bucket, without ever merging results across languages.
type DictionaryCollection struct {
	buckets   map[string][]Dictionary
	langOrder []string
}

// NewDictionaryCollection returns an empty collection.
func NewDictionaryCollection() *DictionaryCollection {
	return &DictionaryCollection{buckets: make(map[string][]Dictionary)}
}

// Add appends d to the bucket for d.IndexLanguage().
func (c *DictionaryCollection) Add(d Dictionary) {
	lang := d.IndexLanguage()
	if _, ok := c.buckets[lang]; !ok {
		c.langOrder = append(c.langOrder, lang)
	}
	c.buckets[lang] = append(c.buckets[lang], d)
}

// Has reports whether exactly one entry equal to d exists in d's bucket.
func (c *DictionaryCollection) Has(d Dictionary) bool {
	key := keyOf(d)
	count := 0
	for _, e := range c.buckets[d.IndexLanguage()] {
		if keyOf(e) == key {
			count++
		}
	}
	return count == 1
}

// Remove removes one entry equal to d, dropping the bucket if it becomes
// empty.
func (c *DictionaryCollection) Remove(d Dictionary) {
	lang := d.IndexLanguage()
	bucket := c.buckets[lang]
	key := keyOf(d)

	for i, e := range bucket {
		if keyOf(e) == key {
			c.buckets[lang] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}

	if len(c.buckets[lang]) == 0 {
		delete(c.buckets, lang)
		for i, l := range c.langOrder {
			if l == lang {
				c.langOrder = append(c.langOrder[:i], c.langOrder[i+1:]...)
				break
			}
		}
	}
}

// Len is the sum of every bucket's size.
func (c *DictionaryCollection) Len() int {
	n := 0
	for _, b := range c.buckets {
		n += len(b)
	}
	return n
}

// All iterates every dictionary across buckets in language-map order, then
// bucket order.
func (c *DictionaryCollection) All() iter.Seq[Dictionary] {
	return func(yield func(Dictionary) bool) {
		for _, lang := range c.langOrder {
			for _, d := range c.buckets[lang] {
				if !yield(d) {
					return
				}
			}
		}
	}
}

// Langs returns the set of known languages, in the order they were first
// added.
func (c *DictionaryCollection) Langs() []string {
	out := make([]string, len(c.langOrder))
	copy(out, c.langOrder)
	return out
}

// defaultMaxFromOneDict is the fallback bound applied when Lookup is called
// with maxFromOneDict <= 0, matching spec.md §4.4's documented default.
const defaultMaxFromOneDict = 50

// Lookup fans out a prefix search across every dictionary in lang's bucket,
// in bucket order, emitting at most maxFromOneDict WordLookup values per
// dictionary before moving to the next. Results never merge across
// languages.
func (c *DictionaryCollection) Lookup(lang, startWord string, maxFromOneDict int) iter.Seq[WordLookup] {
	if maxFromOneDict <= 0 {
		maxFromOneDict = defaultMaxFromOneDict
	}
	return func(yield func(WordLookup) bool) {
		for _, d := range c.buckets[lang] {
			count := 0
			for word, handle := range d.PrefixLookup(startWord) {
				if !yield(WordLookup{Word: word, Articles: []ArticleHandle{handle}}) {
					return
				}
				count++
				if count >= maxFromOneDict {
					break
				}
			}
		}
	}
}
