package ethdb

import (
	"bytes"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB is a disk-backed, log-structured-merge key-value store used to
// persist trie nodes and the account/receipt indices between runs.
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens (creating if necessary) a LevelDB database at path.
func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Has(key []byte) (bool, error) {
	return l.db.Has(key, nil)
}

func (l *LevelDB) Get(key []byte) ([]byte, error) {
	v, err := l.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	return v, err
}

func (l *LevelDB) Put(key, value []byte) error {
	return l.db.Put(key, value, nil)
}

func (l *LevelDB) Delete(key []byte) error {
	return l.db.Delete(key, nil)
}

func (l *LevelDB) Close() error { return l.db.Close() }

func (l *LevelDB) NewBatch() Batch { return &levelBatch{db: l.db, b: new(leveldb.Batch)} }

func (l *LevelDB) NewIterator(prefix []byte) Iterator {
	return &levelIterator{iter: l.db.NewIterator(util.BytesPrefix(prefix), nil)}
}

type levelBatch struct {
	db   *leveldb.DB
	b    *leveldb.Batch
	size int
}

func (b *levelBatch) Put(key, value []byte) error {
	b.b.Put(key, value)
	b.size += len(key) + len(value)
	return nil
}

func (b *levelBatch) Delete(key []byte) error {
	b.b.Delete(key)
	b.size += len(key)
	return nil
}

func (b *levelBatch) ValueSize() int { return b.size }

func (b *levelBatch) Write() error { return b.db.Write(b.b, nil) }

func (b *levelBatch) Reset() {
	b.b.Reset()
	b.size = 0
}

type levelIterator struct {
	iter iterator
}

// iterator narrows goleveldb's iterator.Iterator to what we consume, so the
// field above stays easy to read without importing the package twice.
type iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Release()
}

func (it *levelIterator) Next() bool { return it.iter.Next() }
func (it *levelIterator) Key() []byte {
	return bytes.Clone(it.iter.Key())
}
func (it *levelIterator) Value() []byte {
	return bytes.Clone(it.iter.Value())
}
func (it *levelIterator) Release() { it.iter.Release() }
