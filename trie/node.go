// Package trie implements the Modified Merkle-Patricia Trie used for the
// global state trie, per-account storage tries, and (conceptually) the
// per-block transaction and receipt tries.
package trie

// node is the interface implemented by all trie node types.
type node interface {
	// cache returns the cached hash and dirty flag for this node.
	cache() (hashNode, bool)
}

// fullNode is a branch node with 16 children (one per hex nibble) plus an
// optional value. Children[16] holds the value embedded at this branch
// point, if any.
type fullNode struct {
	Children [17]node
	flags    nodeFlag
}

// shortNode is an extension or leaf node. If Key carries the HP terminator
// nibble it is a leaf (Val is a valueNode); otherwise it is an extension
// (Val is another branch/extension node).
type shortNode struct {
	Key   []byte
	Val   node
	flags nodeFlag
}

// hashNode is a 32-byte reference to a node stored in the backing database,
// used whenever a child's RLP encoding is 32 bytes or more.
type hashNode []byte

// valueNode is the raw value stored at a leaf.
type valueNode []byte

// nodeFlag carries caching information for a node.
type nodeFlag struct {
	hash  hashNode
	dirty bool
}

func (n *fullNode) cache() (hashNode, bool)  { return n.flags.hash, n.flags.dirty }
func (n *shortNode) cache() (hashNode, bool) { return n.flags.hash, n.flags.dirty }
func (n hashNode) cache() (hashNode, bool)   { return nil, true }
func (n valueNode) cache() (hashNode, bool)  { return nil, true }

func (n *fullNode) copy() *fullNode {
	cp := *n
	return &cp
}

func (n *shortNode) copy() *shortNode {
	cp := *n
	return &cp
}
