package core

import (
	"math/big"
	"testing"

	"github.com/hayesgm/exthereum/core/types"
)

func headerWithParent(parent types.Hash, number int64, difficulty int64, salt byte) *types.Header {
	return &types.Header{
		ParentHash: parent,
		Difficulty: big.NewInt(difficulty),
		Number:     big.NewInt(number),
		Extra:      []byte{salt},
	}
}

// TestBlockTreeCanonicalization builds a forked tree: blocks 10 (genesis,
// diff 100), 20 (parent 10, diff 110), 21 (parent 10, diff 120), 30
// (parent 20, diff 120), 40 (parent 30, diff 120). The path through
// 10-20-30-40 weighs 450; the branch ending at 21 weighs 220; the
// canonical tip is block 40.
func TestBlockTreeCanonicalization(t *testing.T) {
	tree := NewBlockTree()

	h10 := headerWithParent(types.Hash{}, 0, 100, 10)
	if err := tree.AddBlock(h10); err != nil {
		t.Fatalf("add h10: %v", err)
	}

	h20 := headerWithParent(h10.Hash(), 1, 110, 20)
	if err := tree.AddBlock(h20); err != nil {
		t.Fatalf("add h20: %v", err)
	}

	h21 := headerWithParent(h10.Hash(), 1, 120, 21)
	if err := tree.AddBlock(h21); err != nil {
		t.Fatalf("add h21: %v", err)
	}

	h30 := headerWithParent(h20.Hash(), 2, 120, 30)
	if err := tree.AddBlock(h30); err != nil {
		t.Fatalf("add h30: %v", err)
	}

	h40 := headerWithParent(h30.Hash(), 3, 120, 40)
	if err := tree.AddBlock(h40); err != nil {
		t.Fatalf("add h40: %v", err)
	}

	td40, err := tree.TotalDifficulty(h10.Hash())
	if err != nil {
		t.Fatalf("total difficulty at h10: %v", err)
	}
	if td40.Cmp(big.NewInt(450)) != 0 {
		t.Errorf("total difficulty at root's child = %s, want 450", td40)
	}

	td21, err := tree.TotalDifficulty(h21.Hash())
	if err != nil {
		t.Fatalf("total difficulty at h21: %v", err)
	}
	if td21.Cmp(big.NewInt(220)) != 0 {
		t.Errorf("total difficulty at h21 = %s, want 220", td21)
	}

	tip, err := tree.CanonicalTip()
	if err != nil {
		t.Fatalf("canonical tip: %v", err)
	}
	if tip != h40.Hash() {
		t.Errorf("canonical tip = %s, want block 40 (%s)", tip.Hex(), h40.Hash().Hex())
	}
}

func TestBlockTreeUnknownParentIsNoPath(t *testing.T) {
	tree := NewBlockTree()
	genesis := headerWithParent(types.Hash{}, 0, 100, 1)
	if err := tree.AddBlock(genesis); err != nil {
		t.Fatalf("add genesis: %v", err)
	}

	orphan := headerWithParent(types.HexToHash("deadbeef"), 5, 100, 2)
	if err := tree.AddBlock(orphan); err != ErrNoPath {
		t.Errorf("got err %v, want %v", err, ErrNoPath)
	}
}

func TestBlockTreePath(t *testing.T) {
	tree := NewBlockTree()
	h10 := headerWithParent(types.Hash{}, 0, 100, 10)
	tree.AddBlock(h10)
	h20 := headerWithParent(h10.Hash(), 1, 110, 20)
	tree.AddBlock(h20)

	path, err := tree.Path(h20.Hash())
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if len(path) != 2 || path[0].Hash() != h10.Hash() || path[1].Hash() != h20.Hash() {
		t.Errorf("unexpected path: %+v", path)
	}
}
