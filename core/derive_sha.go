package core

import (
	"github.com/hayesgm/exthereum/core/types"
	"github.com/hayesgm/exthereum/rlp"
	"github.com/hayesgm/exthereum/trie"
)

// rlpEncoder is satisfied by every list member DeriveListRoot indexes:
// transactions, receipts, and ommer headers all expose EncodeRLP.
type rlpEncoder interface {
	EncodeRLP() ([]byte, error)
}

// DeriveListRoot builds a throwaway, unpersisted trie keyed by the
// RLP-encoding of each item's position (0, 1, 2, ...) and valued by the
// item's own RLP encoding, then returns its root hash. This is how the
// transaction list, receipt list, and ommer list each get a single
// authenticated root committed into the block header.
func DeriveListRoot[T rlpEncoder](items []T) (types.Hash, error) {
	t := trie.New(nil)
	for i, item := range items {
		key, err := rlp.EncodeToBytes(uint64(i))
		if err != nil {
			return types.Hash{}, err
		}
		val, err := item.EncodeRLP()
		if err != nil {
			return types.Hash{}, err
		}
		if err := t.Put(key, val); err != nil {
			return types.Hash{}, err
		}
	}
	return t.Hash(), nil
}
