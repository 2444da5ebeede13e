package vm

import "math/big"

// Memory is the EVM's byte-addressable linear memory. It only ever grows,
// in 32-byte-word steps, for the duration of one call frame.
type Memory struct {
	store []byte
}

// NewMemory returns a new, empty Memory.
func NewMemory() *Memory {
	return &Memory{}
}

// Set copies value into memory at the given offset. The region
// [offset, offset+size) must already have been grown via Resize.
func (m *Memory) Set(offset, size uint64, value []byte) {
	if size == 0 {
		return
	}
	if offset+size > uint64(len(m.store)) {
		panic("memory: out of bounds write")
	}
	copy(m.store[offset:offset+size], value)
}

// Set32 writes a 32-byte big-endian, zero-padded value at offset.
func (m *Memory) Set32(offset uint64, val *big.Int) {
	if offset+32 > uint64(len(m.store)) {
		panic("memory: out of bounds write")
	}
	copy(m.store[offset:offset+32], make([]byte, 32))
	b := val.Bytes()
	copy(m.store[offset+32-uint64(len(b)):offset+32], b)
}

// Resize grows memory to size bytes (a no-op if already that large or
// larger). Callers are expected to have already rounded size up to a
// 32-byte word boundary, per the quadratic memory-expansion gas rule.
func (m *Memory) Resize(size uint64) {
	if uint64(len(m.store)) < size {
		m.store = append(m.store, make([]byte, size-uint64(len(m.store)))...)
	}
}

// Get returns a copy of memory in [offset, offset+size).
func (m *Memory) Get(offset, size int64) []byte {
	if size == 0 {
		return nil
	}
	out := make([]byte, size)
	copy(out, m.store[offset:offset+size])
	return out
}

// Len returns the current size of memory in bytes.
func (m *Memory) Len() int {
	return len(m.store)
}

// Data returns the full backing slice.
func (m *Memory) Data() []byte {
	return m.store
}
