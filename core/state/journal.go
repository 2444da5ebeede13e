package state

import (
	"math/big"

	"github.com/hayesgm/exthereum/core/types"
	"github.com/hayesgm/exthereum/rlp"
)

// journalEntry records enough information to undo one mutation made to the
// state, so a failed call frame can be rolled back to a prior snapshot
// without discarding changes made by sibling or parent frames.
type journalEntry interface {
	revert(s *StateDB) error
}

type balanceChange struct {
	addr types.Address
	prev *big.Int
}

func (c *balanceChange) revert(s *StateDB) error {
	acc, err := s.ensureAccount(c.addr)
	if err != nil {
		return err
	}
	acc.Balance = c.prev
	return s.putAccount(c.addr, acc)
}

type nonceChange struct {
	addr types.Address
	prev uint64
}

func (c *nonceChange) revert(s *StateDB) error {
	acc, err := s.ensureAccount(c.addr)
	if err != nil {
		return err
	}
	acc.Nonce = c.prev
	return s.putAccount(c.addr, acc)
}

type codeChange struct {
	addr types.Address
	prev []byte
}

func (c *codeChange) revert(s *StateDB) error {
	acc, err := s.ensureAccount(c.addr)
	if err != nil {
		return err
	}
	acc.CodeHash = c.prev
	return s.putAccount(c.addr, acc)
}

type refundChange struct {
	prev uint64
}

func (c *refundChange) revert(s *StateDB) error {
	s.refund = c.prev
	return nil
}

// logAppend undoes one AddLog call by dropping the most recently appended
// log record.
type logAppend struct{}

func (c *logAppend) revert(s *StateDB) error {
	s.logs = s.logs[:len(s.logs)-1]
	return nil
}

// createAccountChange undoes the creation of a fresh account by removing it
// from the trie entirely. It is always journaled before the change that
// first touched the account, so it reverts last and leaves no empty-account
// residue behind a rolled-back frame.
type createAccountChange struct {
	addr types.Address
}

func (c *createAccountChange) revert(s *StateDB) error {
	if err := s.trie.Delete(accountKey(c.addr)); err != nil {
		return err
	}
	delete(s.storageTries, c.addr)
	return nil
}

// suicideChange undoes a Suicide mark, restoring whatever mark state the
// address had before.
type suicideChange struct {
	addr types.Address
	prev bool
}

func (c *suicideChange) revert(s *StateDB) error {
	if c.prev {
		s.destructs[c.addr] = true
	} else {
		delete(s.destructs, c.addr)
	}
	return nil
}

type storageChange struct {
	addr types.Address
	slot types.Hash
	prev types.Hash
}

func (c *storageChange) revert(s *StateDB) error {
	// Re-apply the prior value directly, bypassing SetState's own
	// journaling (reverts must not themselves be journaled).
	t, err := s.storageTrieFor(c.addr)
	if err != nil {
		return err
	}
	key := storageKey(c.slot)
	if c.prev.IsZero() {
		if err := t.Delete(key); err != nil {
			return err
		}
	} else {
		enc, err := rlp.EncodeToBytes(trimZero(c.prev.Bytes()))
		if err != nil {
			return err
		}
		if err := t.Put(key, enc); err != nil {
			return err
		}
	}
	return s.commitStorageRoot(c.addr, t)
}
