package trie

import (
	"bytes"
	"sort"
	"testing"

	"github.com/hayesgm/exthereum/core/types"
)

func TestTrieGetPutRoundTrip(t *testing.T) {
	tr := New(nil)
	if err := tr.Put([]byte("key"), []byte("value")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := tr.Get([]byte("key"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, []byte("value")) {
		t.Errorf("got %q, want %q", got, "value")
	}
}

func TestTrieGetMissingKey(t *testing.T) {
	tr := New(nil)
	tr.Put([]byte("present"), []byte("v"))
	got, err := tr.Get([]byte("absent"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing key, got %q", got)
	}
}

func TestTriePutOverwriteIsFinalWriteWins(t *testing.T) {
	a := New(nil)
	a.Put([]byte("k"), []byte("v1"))
	a.Put([]byte("k"), []byte("v2"))

	b := New(nil)
	b.Put([]byte("k"), []byte("v2"))

	if a.Hash() != b.Hash() {
		t.Errorf("overwritten trie root %s != single-write root %s", a.Hash(), b.Hash())
	}
}

func TestTrieEmptyRootHash(t *testing.T) {
	tr := New(nil)
	if tr.Hash() != emptyRoot {
		t.Errorf("empty trie root = %s, want %s", tr.Hash(), emptyRoot)
	}
}

// TestTrieConvergence inserts the same four key/value pairs in several
// orders; every order must enumerate back out identically and produce the
// same root hash.
func TestTrieConvergence(t *testing.T) {
	pairs := [][2]string{
		{"type", "fighter"},
		{"name", "bob"},
		{"nationality", "usa"},
		{"nato", "strong"},
	}

	orders := [][]int{
		{0, 1, 2, 3},
		{3, 2, 1, 0},
		{1, 3, 0, 2},
		{2, 0, 3, 1},
	}

	var roots []types.Hash
	for _, order := range orders {
		tr := New(nil)
		for _, i := range order {
			if err := tr.Put([]byte(pairs[i][0]), []byte(pairs[i][1])); err != nil {
				t.Fatalf("put: %v", err)
			}
		}
		roots = append(roots, tr.Hash())

		entries, err := Entries(tr)
		if err != nil {
			t.Fatalf("entries: %v", err)
		}
		if len(entries) != len(pairs) {
			t.Fatalf("got %d entries, want %d", len(entries), len(pairs))
		}

		sortedPairs := append([][2]string(nil), pairs...)
		sort.Slice(sortedPairs, func(i, j int) bool { return sortedPairs[i][0] < sortedPairs[j][0] })
		for i, e := range entries {
			if string(e[0]) != sortedPairs[i][0] || string(e[1]) != sortedPairs[i][1] {
				t.Errorf("entry %d = (%q,%q), want (%q,%q)", i, e[0], e[1], sortedPairs[i][0], sortedPairs[i][1])
			}
		}
	}

	for i := 1; i < len(roots); i++ {
		if roots[i] != roots[0] {
			t.Errorf("order %d root %s != order 0 root %s", i, roots[i], roots[0])
		}
	}
}

func TestTrieDelete(t *testing.T) {
	tr := New(nil)
	tr.Put([]byte("a"), []byte("1"))
	tr.Put([]byte("b"), []byte("2"))
	if err := tr.Delete([]byte("a")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := tr.Get([]byte("a"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("expected key to be gone after delete, got %q", got)
	}
	got, err = tr.Get([]byte("b"))
	if err != nil || !bytes.Equal(got, []byte("2")) {
		t.Errorf("unrelated key disturbed by delete: got %q, err %v", got, err)
	}
}
