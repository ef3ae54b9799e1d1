package aardict

import (
	"reflect"
	"sort"
	"testing"
)

func TestCompletionIndexInsertHas(t *testing.T) {
	idx := NewCompletionIndex()
	words := []string{"cat", "car", "cart", "dog"}
	for _, w := range words {
		idx.Insert(w)
	}

	for _, w := range words {
		if !idx.Has(w) {
			t.Errorf("Has(%q) = false, want true", w)
		}
	}
	for _, w := range []string{"ca", "ca", "do", "catalog"} {
		if idx.Has(w) {
			t.Errorf("Has(%q) = true, want false", w)
		}
	}
}

func TestCompletionIndexSuggest(t *testing.T) {
	idx := NewCompletionIndex()
	for _, w := range []string{"cat", "car", "cart", "carton", "dog"} {
		idx.Insert(w)
	}

	tests := []struct {
		prefix string
		limit  int
		want   []string
	}{
		{"ca", 0, []string{"car", "cart", "carton", "cat"}},
		{"car", 0, []string{"car", "cart", "carton"}},
		{"do", 0, []string{"dog"}},
		{"zz", 0, nil},
		{"", 2, nil}, // limit enforced, exact membership of the 2 is non-deterministic across a map walk
	}

	for _, tt := range tests {
		got := idx.Suggest(tt.prefix, tt.limit)
		if tt.limit > 0 {
			if len(got) > tt.limit {
				t.Errorf("Suggest(%q, %d) returned %d results, want <= %d", tt.prefix, tt.limit, len(got), tt.limit)
			}
			continue
		}
		sort.Strings(got)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Suggest(%q, %d) = %v, want %v", tt.prefix, tt.limit, got, tt.want)
		}
	}
}

func TestCompletionIndexSerializeRoundTrip(t *testing.T) {
	idx := NewCompletionIndex()
	for _, w := range []string{"alpha", "alpine", "beta", "bétail"} {
		idx.Insert(w)
	}

	data, err := idx.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	restored, err := DeserializeCompletionIndex(data)
	if err != nil {
		t.Fatalf("DeserializeCompletionIndex: %v", err)
	}

	for _, w := range []string{"alpha", "alpine", "beta", "bétail"} {
		if !restored.Has(w) {
			t.Errorf("restored index missing %q", w)
		}
	}
	if restored.Has("alp") {
		t.Errorf("restored index unexpectedly has non-inserted prefix %q", "alp")
	}

	got := restored.Suggest("al", 0)
	sort.Strings(got)
	want := []string{"alpha", "alpine"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest(%q) after round trip = %v, want %v", "al", got, want)
	}
}

func TestDeserializeCompletionIndexRejectsBadVersion(t *testing.T) {
	_, err := DeserializeCompletionIndex([]byte{0, 0, 0, 2})
	if err == nil {
		t.Fatal("expected error for unsupported version, got nil")
	}
}
