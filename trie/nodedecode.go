package trie

import (
	"bytes"
	"fmt"

	"github.com/hayesgm/exthereum/rlp"
)

// decodeNode parses the RLP encoding of a stored node (always a 2-element
// shortNode list or a 17-element fullNode list; inline nodes smaller than
// the hash threshold never appear standalone in the database).
func decodeNode(buf []byte) (node, error) {
	s := rlp.NewStream(bytes.NewReader(buf))
	if _, err := s.List(); err != nil {
		return nil, fmt.Errorf("trie: decode node: %w", err)
	}
	var elems [][]byte
	for s.MoreDataInList() {
		raw, err := s.Raw()
		if err != nil {
			return nil, fmt.Errorf("trie: decode node: %w", err)
		}
		elems = append(elems, raw)
	}
	if err := s.ListEnd(); err != nil {
		return nil, fmt.Errorf("trie: decode node: %w", err)
	}
	switch len(elems) {
	case 2:
		return decodeShort(elems)
	case 17:
		return decodeFull(elems)
	default:
		return nil, fmt.Errorf("trie: invalid node list of %d elements", len(elems))
	}
}

func decodeShort(elems [][]byte) (node, error) {
	var kbuf []byte
	if err := rlp.DecodeBytes(elems[0], &kbuf); err != nil {
		return nil, err
	}
	key := compactToHex(kbuf)
	if hasTerm(key) {
		var val []byte
		if err := rlp.DecodeBytes(elems[1], &val); err != nil {
			return nil, err
		}
		return &shortNode{Key: key, Val: valueNode(val)}, nil
	}
	val, err := decodeRef(elems[1])
	if err != nil {
		return nil, err
	}
	return &shortNode{Key: key, Val: val}, nil
}

func decodeFull(elems [][]byte) (node, error) {
	n := &fullNode{}
	for i := 0; i < 16; i++ {
		child, err := decodeRef(elems[i])
		if err != nil {
			return nil, err
		}
		n.Children[i] = child
	}
	var val []byte
	if err := rlp.DecodeBytes(elems[16], &val); err != nil {
		return nil, err
	}
	if len(val) > 0 {
		n.Children[16] = valueNode(val)
	}
	return n, nil
}

// decodeRef decodes one child slot: an empty string means no child, a
// 32-byte string is a hash reference, a shorter string is an inline value,
// and a list is an inline-embedded node.
func decodeRef(raw []byte) (node, error) {
	if len(raw) > 0 && raw[0] >= 0xc0 {
		return decodeNode(raw)
	}
	var b []byte
	if err := rlp.DecodeBytes(raw, &b); err != nil {
		return nil, err
	}
	switch {
	case len(b) == 0:
		return nil, nil
	case len(b) == 32:
		return hashNode(b), nil
	default:
		return valueNode(b), nil
	}
}
