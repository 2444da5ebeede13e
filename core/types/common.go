// Package types defines the core data model of the state-transition engine:
// fixed-size hash/address types, accounts, logs, transactions, headers,
// blocks, and receipts.
package types

import (
	"encoding/hex"
	"math/big"
)

const (
	HashLength    = 32
	AddressLength = 20
	BloomLength   = 256
)

// Hash represents a 32-byte Keccak-256 hash.
type Hash [HashLength]byte

// BytesToHash sets the hash to the value of b, right-aligned (truncating
// from the left if b is longer than 32 bytes).
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// HexToHash sets the hash to the value of the hex string s.
func HexToHash(s string) Hash { return BytesToHash(fromHex(s)) }

func (h Hash) Bytes() []byte  { return h[:] }
func (h Hash) Hex() string    { return "0x" + hex.EncodeToString(h[:]) }
func (h Hash) String() string { return h.Hex() }
func (h *Hash) SetBytes(b []byte) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}
func (h Hash) IsZero() bool { return h == Hash{} }

// Address represents a 20-byte Ethereum account address.
type Address [AddressLength]byte

func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
	return a
}

func HexToAddress(s string) Address { return BytesToAddress(fromHex(s)) }

func (a Address) Bytes() []byte  { return a[:] }
func (a Address) Hex() string    { return "0x" + hex.EncodeToString(a[:]) }
func (a Address) String() string { return a.Hex() }
func (a Address) IsZero() bool   { return a == Address{} }

// Bloom represents a 2048-bit (256-byte) bloom filter.
type Bloom [BloomLength]byte

func BytesToBloom(b []byte) Bloom {
	var bl Bloom
	copy(bl[BloomLength-len(b):], b)
	return bl
}
func (b Bloom) Bytes() []byte { return b[:] }

// BlockNonce is an 8-byte proof-of-work nonce.
type BlockNonce [8]byte

func EncodeNonce(i uint64) BlockNonce {
	var n BlockNonce
	for idx := 0; idx < 8; idx++ {
		n[7-idx] = byte(i >> (8 * idx))
	}
	return n
}
func (n BlockNonce) Uint64() uint64 {
	var v uint64
	for idx := 0; idx < 8; idx++ {
		v = (v << 8) | uint64(n[idx])
	}
	return v
}

// Account is the consensus representation of an Ethereum account, stored
// RLP-encoded as the value of its entry in the global state trie.
type Account struct {
	Nonce    uint64
	Balance  *big.Int
	Root     Hash // storage trie root
	CodeHash []byte
}

// NewAccount returns an empty account with the canonical empty storage root
// and empty code hash.
func NewAccount() *Account {
	return &Account{
		Balance:  new(big.Int),
		Root:     EmptyRootHash,
		CodeHash: EmptyCodeHash.Bytes(),
	}
}

// IsEmpty reports whether the account matches the EIP-161 definition of an
// empty account: zero nonce, zero balance, and no code.
func (a *Account) IsEmpty() bool {
	return a.Nonce == 0 && (a.Balance == nil || a.Balance.Sign() == 0) && HashFromCodeHash(a.CodeHash) == EmptyCodeHash
}

func HashFromCodeHash(b []byte) Hash {
	if len(b) == 0 {
		return EmptyCodeHash
	}
	return BytesToHash(b)
}

// Log represents a single contract event emitted via the LOG0-LOG4 opcodes.
type Log struct {
	Address Address
	Topics  []Hash
	Data    []byte

	BlockNumber uint64
	TxHash      Hash
	TxIndex     uint
	BlockHash   Hash
	Index       uint
	Removed     bool
}

// EmptyRootHash is Keccak256(RLP("")) = Keccak256(0x80), the root hash of an
// empty Merkle Patricia Trie.
var EmptyRootHash = HexToHash("56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421")

// EmptyCodeHash is Keccak256(nil), the code hash of an account with no code.
var EmptyCodeHash = HexToHash("c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")

// EmptyUncleHash is the RLP hash of an empty uncle list.
var EmptyUncleHash = HexToHash("1dcc4de8dec75d7aab85b567b6ccd41ad312451b948a7413f0a142fd40d49347")

func fromHex(s string) []byte {
	if has0xPrefix(s) {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return b
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
