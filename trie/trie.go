package trie

import (
	"errors"

	"github.com/hayesgm/exthereum/core/types"
	"github.com/hayesgm/exthereum/crypto"
)

// ErrNotFound is returned when a key is not found in the trie.
var ErrNotFound = errors.New("trie: key not found")

// emptyRoot is the root hash of an empty trie: Keccak256(RLP("")).
var emptyRoot = crypto.Keccak256Hash([]byte{0x80})

// Trie is a Modified Merkle-Patricia Trie. A Trie backed by a nil Database
// is a pure in-memory trie: any hashNode reference it ever encounters (which
// can only happen if one was injected via RootHash-based reconstruction) is
// a hard, unrecoverable error, per ErrMissingNode. A Trie backed by a
// non-nil Database transparently resolves hash references as they are
// reached, so a trie reloaded from a root hash behaves identically to the
// live trie that produced it.
type Trie struct {
	root node
	db   *Database
}

// New creates a new, empty trie backed by db (nil for a pure in-memory trie
// that is never persisted).
func New(db *Database) *Trie {
	return &Trie{db: db}
}

// NewFromRoot creates a trie whose root is the given hash, to be resolved
// lazily against db as keys are accessed. A zero/empty root hash yields an
// empty trie.
func NewFromRoot(root types.Hash, db *Database) (*Trie, error) {
	t := &Trie{db: db}
	if root == emptyRoot || root.IsZero() {
		return t, nil
	}
	t.root = hashNode(append([]byte(nil), root.Bytes()...))
	return t, nil
}

// resolve turns a hashNode reference into its concrete node, reading
// through the trie's database. Returns ErrMissingNode if the database
// cannot supply it -- resolution of a referenced child must always
// succeed in a consistent trie, so this is treated as fatal by callers.
func (t *Trie) resolve(n node, prefix []byte) (node, error) {
	hn, ok := n.(hashNode)
	if !ok {
		return n, nil
	}
	blob, err := t.db.Node(hn)
	if err != nil {
		return nil, ErrMissingNode
	}
	resolved, err := decodeNode(blob)
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// Get retrieves the value associated with the given key.
func (t *Trie) Get(key []byte) ([]byte, error) {
	value, newRoot, resolved, err := t.get(t.root, keybytesToHex(key), 0)
	if err != nil {
		return nil, err
	}
	if resolved {
		t.root = newRoot
	}
	if value == nil {
		return nil, ErrNotFound
	}
	return value, nil
}

func (t *Trie) get(n node, key []byte, pos int) (value []byte, newNode node, resolved bool, err error) {
	switch n := n.(type) {
	case nil:
		return nil, nil, false, nil
	case valueNode:
		return []byte(n), n, false, nil
	case *shortNode:
		if len(key)-pos < len(n.Key) || !keysEqual(n.Key, key[pos:pos+len(n.Key)]) {
			return nil, n, false, nil
		}
		value, newVal, didResolve, err := t.get(n.Val, key, pos+len(n.Key))
		if err != nil {
			return nil, n, false, err
		}
		if didResolve {
			n = n.copy()
			n.Val = newVal
		}
		return value, n, didResolve, nil
	case *fullNode:
		child := n.Children[16]
		idx := 16
		if pos < len(key) {
			child = n.Children[key[pos]]
			idx = int(key[pos])
		}
		value, newChild, didResolve, err := t.get(child, key, pos+1)
		if err != nil {
			return nil, n, false, err
		}
		if didResolve {
			n = n.copy()
			n.Children[idx] = newChild
		}
		return value, n, didResolve, nil
	case hashNode:
		resolvedNode, err := t.resolve(n, key[:pos])
		if err != nil {
			return nil, n, false, err
		}
		value, newNode, _, err := t.get(resolvedNode, key, pos)
		if err != nil {
			return nil, n, false, err
		}
		return value, newNode, true, nil
	default:
		return nil, n, false, nil
	}
}

// Put inserts or updates a key-value pair in the trie. An empty value
// deletes the key instead.
func (t *Trie) Put(key, value []byte) error {
	if len(value) == 0 {
		return t.Delete(key)
	}
	k := keybytesToHex(key)
	n, err := t.insert(t.root, k, valueNode(append([]byte(nil), value...)))
	if err != nil {
		return err
	}
	t.root = n
	return nil
}

func (t *Trie) insert(n node, key []byte, value node) (node, error) {
	if len(key) == 0 {
		if v, ok := n.(valueNode); ok {
			if keysEqual(v, value.(valueNode)) {
				return v, nil
			}
		}
		return value, nil
	}

	switch n := n.(type) {
	case nil:
		return &shortNode{Key: key, Val: value, flags: nodeFlag{dirty: true}}, nil

	case *shortNode:
		matchLen := prefixLen(key, n.Key)
		if matchLen == len(n.Key) {
			nn, err := t.insert(n.Val, key[matchLen:], value)
			if err != nil {
				return nil, err
			}
			return &shortNode{Key: n.Key, Val: nn, flags: nodeFlag{dirty: true}}, nil
		}
		branch := &fullNode{flags: nodeFlag{dirty: true}}
		existingChild, err := t.insert(nil, n.Key[matchLen+1:], n.Val)
		if err != nil {
			return nil, err
		}
		branch.Children[n.Key[matchLen]] = existingChild
		newChild, err := t.insert(nil, key[matchLen+1:], value)
		if err != nil {
			return nil, err
		}
		branch.Children[key[matchLen]] = newChild
		if matchLen > 0 {
			return &shortNode{Key: key[:matchLen], Val: branch, flags: nodeFlag{dirty: true}}, nil
		}
		return branch, nil

	case *fullNode:
		nn := n.copy()
		nn.flags = nodeFlag{dirty: true}
		if len(key) == 1 && key[0] == 16 {
			nn.Children[16] = value
			return nn, nil
		}
		child, err := t.insert(n.Children[key[0]], key[1:], value)
		if err != nil {
			return nil, err
		}
		nn.Children[key[0]] = child
		return nn, nil

	case hashNode:
		resolved, err := t.resolve(n, nil)
		if err != nil {
			return nil, err
		}
		return t.insert(resolved, key, value)

	default:
		return nil, errors.New("trie: unknown node type")
	}
}

// Delete removes a key from the trie. Deleting an absent key is a no-op.
func (t *Trie) Delete(key []byte) error {
	k := keybytesToHex(key)
	n, err := t.delete(t.root, k)
	if err != nil {
		return err
	}
	t.root = n
	return nil
}

func (t *Trie) delete(n node, key []byte) (node, error) {
	switch n := n.(type) {
	case nil:
		return nil, nil

	case *shortNode:
		matchLen := prefixLen(key, n.Key)
		if matchLen < len(n.Key) {
			return n, nil
		}
		if matchLen == len(key) {
			return nil, nil
		}
		child, err := t.delete(n.Val, key[len(n.Key):])
		if err != nil {
			return nil, err
		}
		switch child := child.(type) {
		case nil:
			return nil, nil
		case *shortNode:
			return &shortNode{Key: concat(n.Key, child.Key), Val: child.Val, flags: nodeFlag{dirty: true}}, nil
		default:
			return &shortNode{Key: n.Key, Val: child, flags: nodeFlag{dirty: true}}, nil
		}

	case *fullNode:
		nn := n.copy()
		nn.flags = nodeFlag{dirty: true}
		if len(key) == 1 && key[0] == 16 {
			nn.Children[16] = nil
		} else {
			child, err := t.delete(n.Children[key[0]], key[1:])
			if err != nil {
				return nil, err
			}
			nn.Children[key[0]] = child
		}
		remaining := -1
		for i := 0; i < 17; i++ {
			if nn.Children[i] != nil {
				if remaining >= 0 {
					return nn, nil
				}
				remaining = i
			}
		}
		if remaining < 0 {
			return nil, nil
		}
		if remaining == 16 {
			return &shortNode{Key: []byte{terminatorByte}, Val: nn.Children[16], flags: nodeFlag{dirty: true}}, nil
		}
		child := nn.Children[remaining]
		if hn, ok := child.(hashNode); ok {
			resolved, err := t.resolve(hn, nil)
			if err != nil {
				return nil, err
			}
			child = resolved
		}
		if cnode, ok := child.(*shortNode); ok {
			return &shortNode{Key: concat([]byte{byte(remaining)}, cnode.Key), Val: cnode.Val, flags: nodeFlag{dirty: true}}, nil
		}
		return &shortNode{Key: []byte{byte(remaining)}, Val: child, flags: nodeFlag{dirty: true}}, nil

	case valueNode:
		if len(key) == 0 {
			return nil, nil
		}
		return n, nil

	case hashNode:
		resolved, err := t.resolve(n, nil)
		if err != nil {
			return nil, err
		}
		return t.delete(resolved, key)

	default:
		return nil, errors.New("trie: unknown node type")
	}
}

// Hash computes the Keccak-256 root hash of the trie without persisting
// anything. An empty trie returns the canonical empty-trie hash.
func (t *Trie) Hash() types.Hash {
	if t.root == nil {
		return emptyRoot
	}
	h := newHasher()
	hashed, cached := h.hash(t.root, true)
	t.root = cached
	if hn, ok := hashed.(hashNode); ok {
		return types.BytesToHash(hn)
	}
	enc, _ := encodeNode(hashed)
	return crypto.Keccak256Hash(enc)
}

// Commit computes the root hash and, if the trie has an attached database,
// persists every node reachable from the root that was modified since the
// last commit.
func (t *Trie) Commit() (types.Hash, error) {
	if t.root == nil {
		return emptyRoot, nil
	}
	h := newCommitHasher()
	hashed, cached := h.hash(t.root, true)
	t.root = cached

	var rootHash types.Hash
	if hn, ok := hashed.(hashNode); ok {
		rootHash = types.BytesToHash(hn)
	} else {
		enc, _ := encodeNode(hashed)
		rootHash = crypto.Keccak256Hash(enc)
		h.commit[string(rootHash.Bytes())] = enc
	}
	if t.db != nil {
		for k, v := range h.commit {
			t.db.insertPending([]byte(k), v)
		}
	}
	return rootHash, nil
}

// Len returns the number of key-value pairs reachable from the root without
// resolving any hash references (an O(n) traversal of resident nodes).
func (t *Trie) Len() int { return countValues(t.root) }

// Empty returns true if the trie has no entries.
func (t *Trie) Empty() bool { return t.root == nil }

func countValues(n node) int {
	switch n := n.(type) {
	case nil:
		return 0
	case valueNode:
		return 1
	case *shortNode:
		return countValues(n.Val)
	case *fullNode:
		count := 0
		for i := 0; i < 17; i++ {
			count += countValues(n.Children[i])
		}
		return count
	default:
		return 0
	}
}

func keysEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func concat(a, b []byte) []byte {
	r := make([]byte, len(a)+len(b))
	copy(r, a)
	copy(r[len(a):], b)
	return r
}
