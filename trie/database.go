package trie

import (
	"errors"

	"github.com/hayesgm/exthereum/ethdb"
)

// ErrMissingNode is returned when a hash reference cannot be resolved
// against the backing database: the referenced node was neither pending in
// the dirty cache nor present on disk. This is treated as a fatal,
// unrecoverable fault rather than an ordinary error value by callers that
// walk the trie (see Design Notes on corrupted/missing state).
var ErrMissingNode = errors.New("trie: missing node in database")

// Database is the persistent backing store for trie nodes, keyed by their
// Keccak-256 hash. It layers an in-memory dirty cache (nodes hashed but not
// yet committed) over a disk-backed reader, so a trie can be hashed many
// times and only committed to disk once.
type Database struct {
	diskdb ethdb.Database
	dirty  map[string][]byte
}

// NewDatabase wraps a key-value backend as a trie node database. A nil
// diskdb yields a database that can still hold pending (uncommitted) nodes
// in memory but returns ErrMissingNode for anything never written this run.
func NewDatabase(diskdb ethdb.Database) *Database {
	return &Database{diskdb: diskdb, dirty: make(map[string][]byte)}
}

// Node resolves a node's RLP encoding by its hash.
func (db *Database) Node(hash []byte) ([]byte, error) {
	if db == nil {
		return nil, ErrMissingNode
	}
	if blob, ok := db.dirty[string(hash)]; ok {
		return blob, nil
	}
	if db.diskdb == nil {
		return nil, ErrMissingNode
	}
	blob, err := db.diskdb.Get(hash)
	if err != nil {
		return nil, ErrMissingNode
	}
	return blob, nil
}

// insertPending records a newly hashed node's encoding without writing it
// to disk yet.
func (db *Database) insertPending(hash []byte, blob []byte) {
	db.dirty[string(hash)] = blob
}

// StoreRaw stages an arbitrary content-addressed blob (contract code) under
// hash using the same dirty-cache/commit pipeline as trie nodes.
func (db *Database) StoreRaw(hash []byte, blob []byte) {
	cp := make([]byte, len(blob))
	copy(cp, blob)
	db.insertPending(hash, cp)
}

// Commit flushes every pending node to the underlying disk store in a
// single atomic batch and clears the dirty cache.
func (db *Database) Commit() error {
	if db.diskdb == nil {
		db.dirty = make(map[string][]byte)
		return nil
	}
	batch := db.diskdb.NewBatch()
	for k, v := range db.dirty {
		if err := batch.Put([]byte(k), v); err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return err
	}
	db.dirty = make(map[string][]byte)
	return nil
}
