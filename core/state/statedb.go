// Package state implements the account store layered over the global state
// trie: account lookup/update/deletion, per-account storage tries, and the
// journal of balance/nonce/code/storage changes needed to revert a call
// frame to a prior snapshot.
package state

import (
	"math/big"

	"github.com/hayesgm/exthereum/core/types"
	"github.com/hayesgm/exthereum/crypto"
	"github.com/hayesgm/exthereum/rlp"
	"github.com/hayesgm/exthereum/trie"
)

// StateDB is the account store: a global state trie keyed by
// Keccak256(address) whose values are RLP-encoded Account records, plus one
// storage trie per contract account keyed by Keccak256(32-byte-big-endian
// slot).
type StateDB struct {
	db   *trie.Database
	trie *trie.Trie

	storageTries map[types.Address]*trie.Trie
	code         map[types.Hash][]byte

	journal   []journalEntry
	destructs map[types.Address]bool
	logs      []*types.Log
	refund    uint64
}

// New creates a state view rooted at root (the empty root for a fresh
// world state), resolving nodes against db as they are touched.
func New(root types.Hash, db *trie.Database) (*StateDB, error) {
	t, err := trie.NewFromRoot(root, db)
	if err != nil {
		return nil, err
	}
	return &StateDB{
		db:           db,
		trie:         t,
		storageTries: make(map[types.Address]*trie.Trie),
		code:         make(map[types.Hash][]byte),
		destructs:    make(map[types.Address]bool),
	}, nil
}

func accountKey(addr types.Address) []byte {
	return crypto.Keccak256(addr.Bytes())
}

func storageKey(slot types.Hash) []byte {
	return crypto.Keccak256(slot.Bytes())
}

// GetAccount returns the account at addr, or nil if it does not exist.
func (s *StateDB) GetAccount(addr types.Address) (*types.Account, error) {
	enc, err := s.trie.Get(accountKey(addr))
	if err == trie.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var acc types.Account
	if err := rlp.DecodeBytes(enc, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// putAccount writes (or overwrites) the account at addr.
func (s *StateDB) putAccount(addr types.Address, acc *types.Account) error {
	enc, err := rlp.EncodeToBytes(acc)
	if err != nil {
		return err
	}
	return s.trie.Put(accountKey(addr), enc)
}

// ensureAccount returns the account at addr, creating (but not yet
// persisting) a fresh empty account if none exists. It does not journal;
// it is the accessor the journal's own revert paths use.
func (s *StateDB) ensureAccount(addr types.Address) (*types.Account, error) {
	acc, err := s.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		acc = types.NewAccount()
	}
	return acc, nil
}

// mutableAccount returns the account at addr for a journaled mutation,
// recording the account's creation first when it does not exist yet so a
// revert removes it from the trie instead of leaving an empty residue.
func (s *StateDB) mutableAccount(addr types.Address) (*types.Account, error) {
	acc, err := s.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		s.journal = append(s.journal, &createAccountChange{addr: addr})
		acc = types.NewAccount()
	}
	return acc, nil
}

// Exist reports whether an account is present in the trie at all.
func (s *StateDB) Exist(addr types.Address) (bool, error) {
	acc, err := s.GetAccount(addr)
	if err != nil {
		return false, err
	}
	return acc != nil, nil
}

// Empty reports whether the account is absent or matches the empty-account
// definition (zero nonce, zero balance, no code).
func (s *StateDB) Empty(addr types.Address) (bool, error) {
	acc, err := s.GetAccount(addr)
	if err != nil {
		return false, err
	}
	if acc == nil {
		return true, nil
	}
	return acc.IsEmpty(), nil
}

// GetBalance returns the wei balance of addr (zero if the account is absent).
func (s *StateDB) GetBalance(addr types.Address) (*big.Int, error) {
	acc, err := s.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return new(big.Int), nil
	}
	return new(big.Int).Set(acc.Balance), nil
}

// AddBalance credits amount wei to addr, creating the account if needed.
// Journals the prior balance for revert.
func (s *StateDB) AddBalance(addr types.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	acc, err := s.mutableAccount(addr)
	if err != nil {
		return err
	}
	s.journal = append(s.journal, &balanceChange{addr: addr, prev: new(big.Int).Set(acc.Balance)})
	acc.Balance = new(big.Int).Add(acc.Balance, amount)
	return s.putAccount(addr, acc)
}

// SubBalance debits amount wei from addr. Callers must check sufficient
// balance beforehand; this does not itself reject negative results.
func (s *StateDB) SubBalance(addr types.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	acc, err := s.mutableAccount(addr)
	if err != nil {
		return err
	}
	s.journal = append(s.journal, &balanceChange{addr: addr, prev: new(big.Int).Set(acc.Balance)})
	acc.Balance = new(big.Int).Sub(acc.Balance, amount)
	return s.putAccount(addr, acc)
}

// GetNonce returns the account's nonce (zero if absent).
func (s *StateDB) GetNonce(addr types.Address) (uint64, error) {
	acc, err := s.GetAccount(addr)
	if err != nil {
		return 0, err
	}
	if acc == nil {
		return 0, nil
	}
	return acc.Nonce, nil
}

// SetNonce sets the account's nonce, creating the account if needed.
func (s *StateDB) SetNonce(addr types.Address, nonce uint64) error {
	acc, err := s.mutableAccount(addr)
	if err != nil {
		return err
	}
	s.journal = append(s.journal, &nonceChange{addr: addr, prev: acc.Nonce})
	acc.Nonce = nonce
	return s.putAccount(addr, acc)
}

// GetCodeHash returns the account's code hash (EmptyCodeHash if absent or
// uncoded).
func (s *StateDB) GetCodeHash(addr types.Address) (types.Hash, error) {
	acc, err := s.GetAccount(addr)
	if err != nil {
		return types.Hash{}, err
	}
	if acc == nil {
		return types.EmptyCodeHash, nil
	}
	return types.HashFromCodeHash(acc.CodeHash), nil
}

// GetCode returns the contract code stored at addr (nil if the account has
// no code, or is absent).
func (s *StateDB) GetCode(addr types.Address) ([]byte, error) {
	h, err := s.GetCodeHash(addr)
	if err != nil {
		return nil, err
	}
	if h == types.EmptyCodeHash {
		return nil, nil
	}
	if code, ok := s.code[h]; ok {
		return code, nil
	}
	// Contract code is content-addressed by hash in the same backing
	// database as trie nodes; look it up directly. An account whose code
	// hash resolves nowhere means the backing store has lost data, the
	// same fatal fault as a missing trie node.
	if s.db == nil {
		return nil, trie.ErrMissingNode
	}
	blob, err := s.db.Node(h.Bytes())
	if err != nil {
		return nil, err
	}
	return blob, nil
}

// SetCode installs code at addr and records its hash on the account.
func (s *StateDB) SetCode(addr types.Address, code []byte) error {
	acc, err := s.mutableAccount(addr)
	if err != nil {
		return err
	}
	s.journal = append(s.journal, &codeChange{addr: addr, prev: acc.CodeHash})
	hash := crypto.Keccak256Hash(code)
	acc.CodeHash = hash.Bytes()
	s.code[hash] = code
	if s.db != nil && len(code) > 0 {
		// Persisted alongside trie nodes under the same content-addressed
		// scheme; a real deployment would route this through a dedicated
		// code store, but reusing the node database keeps one key schema.
		s.db.StoreRaw(hash.Bytes(), code)
	}
	return s.putAccount(addr, acc)
}

// storageTrieFor returns (creating if necessary) the per-account storage
// trie for addr, rooted at the account's current storage root.
func (s *StateDB) storageTrieFor(addr types.Address) (*trie.Trie, error) {
	if t, ok := s.storageTries[addr]; ok {
		return t, nil
	}
	acc, err := s.GetAccount(addr)
	if err != nil {
		return nil, err
	}
	root := types.EmptyRootHash
	if acc != nil {
		root = acc.Root
	}
	t, err := trie.NewFromRoot(root, s.db)
	if err != nil {
		return nil, err
	}
	s.storageTries[addr] = t
	return t, nil
}

// GetState returns the value stored at slot in addr's storage, the zero
// hash if unset.
func (s *StateDB) GetState(addr types.Address, slot types.Hash) (types.Hash, error) {
	t, err := s.storageTrieFor(addr)
	if err != nil {
		return types.Hash{}, err
	}
	enc, err := t.Get(storageKey(slot))
	if err == trie.ErrNotFound {
		return types.Hash{}, nil
	}
	if err != nil {
		return types.Hash{}, err
	}
	var raw []byte
	if err := rlp.DecodeBytes(enc, &raw); err != nil {
		return types.Hash{}, err
	}
	return types.BytesToHash(raw), nil
}

// SetState stores value at slot in addr's storage, deleting the slot if
// value is zero (the trie never stores zero words, matching Yellow Paper
// storage semantics).
func (s *StateDB) SetState(addr types.Address, slot, value types.Hash) error {
	prev, err := s.GetState(addr, slot)
	if err != nil {
		return err
	}
	if prev == value {
		return nil
	}
	s.journal = append(s.journal, &storageChange{addr: addr, slot: slot, prev: prev})

	t, err := s.storageTrieFor(addr)
	if err != nil {
		return err
	}
	key := storageKey(slot)
	if value.IsZero() {
		if err := t.Delete(key); err != nil {
			return err
		}
	} else {
		enc, err := rlp.EncodeToBytes(trimZero(value.Bytes()))
		if err != nil {
			return err
		}
		if err := t.Put(key, enc); err != nil {
			return err
		}
	}
	return s.commitStorageRoot(addr, t)
}

func (s *StateDB) commitStorageRoot(addr types.Address, t *trie.Trie) error {
	root, err := t.Commit()
	if err != nil {
		return err
	}
	acc, err := s.ensureAccount(addr)
	if err != nil {
		return err
	}
	acc.Root = root
	return s.putAccount(addr, acc)
}

func trimZero(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	return b[i:]
}

// CreateAccount installs a fresh, empty account at addr if one does not
// already exist, preserving any balance a prior CALL may have credited to
// addr before its code was deployed.
func (s *StateDB) CreateAccount(addr types.Address) error {
	acc, err := s.GetAccount(addr)
	if err != nil {
		return err
	}
	if acc != nil {
		return nil
	}
	s.journal = append(s.journal, &createAccountChange{addr: addr})
	return s.putAccount(addr, types.NewAccount())
}

// Suicide marks addr for removal at the end of the enclosing transaction
// (EVM SELFDESTRUCT / SUICIDE semantics: deletion is deferred, not
// immediate, so the account's balance and code remain visible to the rest
// of the executing transaction).
func (s *StateDB) Suicide(addr types.Address) {
	s.journal = append(s.journal, &suicideChange{addr: addr, prev: s.destructs[addr]})
	s.destructs[addr] = true
}

// HasSuicided reports whether addr has been marked for removal.
func (s *StateDB) HasSuicided(addr types.Address) bool {
	return s.destructs[addr]
}

// ReapSuicides permanently deletes every account marked via Suicide from
// the trie, called once at the end of transaction execution.
func (s *StateDB) ReapSuicides() error {
	for addr := range s.destructs {
		if err := s.trie.Delete(accountKey(addr)); err != nil {
			return err
		}
		delete(s.storageTries, addr)
	}
	s.destructs = make(map[types.Address]bool)
	return nil
}

// AddLog appends a log record emitted by a LOG0..LOG4 instruction. Journaled
// so a reverted call frame does not leave its logs behind.
func (s *StateDB) AddLog(log *types.Log) {
	s.logs = append(s.logs, log)
	s.journal = append(s.journal, &logAppend{})
}

// Logs returns every log recorded so far.
func (s *StateDB) Logs() []*types.Log {
	return s.logs
}

// AddRefund credits the gas refund counter, undone on revert like any other
// journaled change.
func (s *StateDB) AddRefund(gas uint64) {
	s.journal = append(s.journal, &refundChange{prev: s.refund})
	s.refund += gas
}

// SubRefund debits the gas refund counter.
func (s *StateDB) SubRefund(gas uint64) {
	s.journal = append(s.journal, &refundChange{prev: s.refund})
	s.refund -= gas
}

// GetRefund returns the current value of the gas refund counter.
func (s *StateDB) GetRefund() uint64 {
	return s.refund
}

// GetCodeSize returns the length of the contract code stored at addr.
func (s *StateDB) GetCodeSize(addr types.Address) (int, error) {
	code, err := s.GetCode(addr)
	if err != nil {
		return 0, err
	}
	return len(code), nil
}

// Snapshot returns a revert point: the current journal length.
func (s *StateDB) Snapshot() int { return len(s.journal) }

// RevertToSnapshot undoes every journaled change made since snapshot id.
func (s *StateDB) RevertToSnapshot(id int) error {
	for i := len(s.journal) - 1; i >= id; i-- {
		if err := s.journal[i].revert(s); err != nil {
			return err
		}
	}
	s.journal = s.journal[:id]
	return nil
}

// IntermediateRoot computes (without persisting to the database) the root
// hash of the world state in its current form.
func (s *StateDB) IntermediateRoot() types.Hash {
	return s.trie.Hash()
}

// Commit persists every touched node of the account trie to the attached
// database and returns the new state root. Storage tries are not walked
// here: commitStorageRoot has already committed each one to the same
// database on every SetState and storage revert.
func (s *StateDB) Commit() (types.Hash, error) {
	return s.trie.Commit()
}
