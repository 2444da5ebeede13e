package types

import (
	"math/big"
	"sync/atomic"

	"github.com/hayesgm/exthereum/rlp"
)

// Header represents a block header as defined by the Homestead rules: parent
// linkage, state/transaction/receipt trie roots, the proof-of-work fields
// (difficulty, mix digest, nonce), and gas accounting.
type Header struct {
	ParentHash  Hash
	UncleHash   Hash
	Coinbase    Address
	Root        Hash
	TxHash      Hash
	ReceiptHash Hash
	Bloom       Bloom
	Difficulty  *big.Int
	Number      *big.Int
	GasLimit    uint64
	GasUsed     uint64
	Time        uint64
	Extra       []byte
	MixDigest   Hash
	Nonce       BlockNonce

	hash atomic.Pointer[Hash]
}

// headerRLP mirrors Header's consensus-encoded field order. It exists
// separately so Header can carry non-encoded cache fields (hash) without
// reflection picking them up.
type headerRLP struct {
	ParentHash  Hash
	UncleHash   Hash
	Coinbase    Address
	Root        Hash
	TxHash      Hash
	ReceiptHash Hash
	Bloom       Bloom
	Difficulty  *big.Int
	Number      *big.Int
	GasLimit    uint64
	GasUsed     uint64
	Time        uint64
	Extra       []byte
	MixDigest   Hash
	Nonce       BlockNonce
}

func (h *Header) toRLP() *headerRLP {
	return &headerRLP{
		ParentHash:  h.ParentHash,
		UncleHash:   h.UncleHash,
		Coinbase:    h.Coinbase,
		Root:        h.Root,
		TxHash:      h.TxHash,
		ReceiptHash: h.ReceiptHash,
		Bloom:       h.Bloom,
		Difficulty:  h.Difficulty,
		Number:      h.Number,
		GasLimit:    h.GasLimit,
		GasUsed:     h.GasUsed,
		Time:        h.Time,
		Extra:       h.Extra,
		MixDigest:   h.MixDigest,
		Nonce:       h.Nonce,
	}
}

// EncodeRLP returns the canonical RLP encoding of the header.
func (h *Header) EncodeRLP() ([]byte, error) {
	return rlp.EncodeToBytes(h.toRLP())
}

// DecodeHeaderRLP decodes a header from its canonical RLP encoding.
func DecodeHeaderRLP(data []byte) (*Header, error) {
	var r headerRLP
	if err := rlp.DecodeBytes(data, &r); err != nil {
		return nil, err
	}
	return headerFromRLP(&r), nil
}

func headerFromRLP(r *headerRLP) *Header {
	return &Header{
		ParentHash:  r.ParentHash,
		UncleHash:   r.UncleHash,
		Coinbase:    r.Coinbase,
		Root:        r.Root,
		TxHash:      r.TxHash,
		ReceiptHash: r.ReceiptHash,
		Bloom:       r.Bloom,
		Difficulty:  r.Difficulty,
		Number:      r.Number,
		GasLimit:    r.GasLimit,
		GasUsed:     r.GasUsed,
		Time:        r.Time,
		Extra:       r.Extra,
		MixDigest:   r.MixDigest,
		Nonce:       r.Nonce,
	}
}

// Hash returns the Keccak-256 hash of the RLP-encoded header, caching the
// result since headers are treated as immutable once hashed.
func (h *Header) Hash() Hash {
	if cached := h.hash.Load(); cached != nil {
		return *cached
	}
	enc, err := h.EncodeRLP()
	if err != nil {
		panic("header: " + err.Error())
	}
	hash := keccak256Hash(enc)
	h.hash.Store(&hash)
	return hash
}

// copyHeader creates a deep copy of a header, omitting cache fields.
func copyHeader(h *Header) *Header {
	cpy := Header{
		ParentHash:  h.ParentHash,
		UncleHash:   h.UncleHash,
		Coinbase:    h.Coinbase,
		Root:        h.Root,
		TxHash:      h.TxHash,
		ReceiptHash: h.ReceiptHash,
		Bloom:       h.Bloom,
		GasLimit:    h.GasLimit,
		GasUsed:     h.GasUsed,
		Time:        h.Time,
		MixDigest:   h.MixDigest,
		Nonce:       h.Nonce,
	}
	if h.Difficulty != nil {
		cpy.Difficulty = new(big.Int).Set(h.Difficulty)
	}
	if h.Number != nil {
		cpy.Number = new(big.Int).Set(h.Number)
	}
	if len(h.Extra) > 0 {
		cpy.Extra = append([]byte(nil), h.Extra...)
	}
	return &cpy
}
