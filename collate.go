package aardict

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// primaryCollator produces the opaque byte sort keys the aar index relies
// on for ordering and prefix comparison (spec.md §4.1). It is locale-less
// (language.Und) and configured at primary strength, which folds case and
// accent differences the way the original ICU-backed reader did.
//
// The core is single-threaded (spec.md §5); a single package-level
// Collator matches that model. Callers guarding a shared Dictionary with an
// external mutex inherit the same guarantee for this collator.
var primaryCollator = collate.New(language.Und, collate.Strength(collate.Primary))

// collationKey returns the opaque sort key for s.
func collationKey(s string) []byte {
	var buf collate.Buffer
	key := primaryCollator.KeyFromString(&buf, s)
	out := make([]byte, len(key))
	copy(out, key)
	return out
}

// compareWordPrefix implements the aar Word ordering contract from
// spec.md §4.1: compare self truncated to the rune-length of other against
// other in full. This asymmetry is deliberate — it is what lets a bisect
// over the word list find the first entry whose primary-collation prefix
// equals the query, which is what prefix enumeration depends on. Do not
// symmetrize it.
func compareWordPrefix(self, other string) int {
	o := []rune(other)
	s := []rune(self)
	if len(s) > len(o) {
		s = s[:len(o)]
	}
	return primaryCollator.CompareString(string(s), other)
}
