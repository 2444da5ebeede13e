package trie

// Iterator walks a trie's key-value pairs in ascending lexicographic key
// order via depth-first traversal, resolving hash references against the
// trie's database as they are encountered. A missing child hash surfaces as
// a fatal Err(), matching the fail-fast contract of Trie.Get.
type Iterator struct {
	trie  *Trie
	stack []iteratorFrame
	Key   []byte
	Value []byte
	err   error
}

type iteratorFrame struct {
	node   node
	prefix []byte // accumulated hex-nibble path to this node
	child  int    // next child index to descend into (-1 before first use)
}

// NewIterator creates an iterator positioned before the first key.
func NewIterator(t *Trie) *Iterator {
	it := &Iterator{trie: t}
	if t.root != nil {
		it.stack = append(it.stack, iteratorFrame{node: t.root, child: -1})
	}
	return it
}

// Err returns the first error encountered during iteration, if any.
func (it *Iterator) Err() error { return it.err }

// Next advances the iterator to the next key-value pair, returning false
// when iteration is complete or an error occurred.
func (it *Iterator) Next() bool {
	if it.err != nil {
		return false
	}
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]

		switch n := top.node.(type) {
		case valueNode:
			it.stack = it.stack[:len(it.stack)-1]
			it.Key = hexToKeybytes(top.prefix)
			it.Value = []byte(n)
			return true

		case *shortNode:
			if top.child == -1 {
				top.child = 0
				it.stack = append(it.stack, iteratorFrame{node: n.Val, prefix: concat(top.prefix, n.Key), child: -1})
				continue
			}
			it.stack = it.stack[:len(it.stack)-1]
			continue

		case *fullNode:
			// The branch's own value (slot 16) is visited before the 16
			// children: its key is a prefix of every key below the branch.
			next := top.child + 1
			if top.child == -1 && n.Children[16] != nil {
				next = 16
			} else if top.child == 16 {
				next = 0
			}
			found := top.child == -1 && next == 16
			for ; !found && next < 16; next++ {
				if n.Children[next] != nil {
					found = true
					break
				}
			}
			if !found {
				it.stack = it.stack[:len(it.stack)-1]
				continue
			}
			top.child = next
			var childPrefix []byte
			if next < 16 {
				childPrefix = concat(top.prefix, []byte{byte(next)})
			} else {
				childPrefix = concat(top.prefix, []byte{terminatorByte})
			}
			it.stack = append(it.stack, iteratorFrame{node: n.Children[next], prefix: childPrefix, child: -1})
			continue

		case hashNode:
			resolved, err := it.trie.resolve(n, nil)
			if err != nil {
				it.err = err
				return false
			}
			top.node = resolved
			continue

		case nil:
			it.stack = it.stack[:len(it.stack)-1]
			continue
		}
	}
	return false
}

// NodeCount returns the number of key-value pairs in the trie by exhausting
// a fresh iterator.
func NodeCount(t *Trie) (int, error) {
	it := NewIterator(t)
	n := 0
	for it.Next() {
		n++
	}
	return n, it.Err()
}

// Entries collects every key-value pair in the trie in ascending key order.
func Entries(t *Trie) ([][2][]byte, error) {
	it := NewIterator(t)
	var out [][2][]byte
	for it.Next() {
		out = append(out, [2][]byte{append([]byte(nil), it.Key...), append([]byte(nil), it.Value...)})
	}
	if it.Err() != nil {
		return nil, it.Err()
	}
	return out, nil
}
