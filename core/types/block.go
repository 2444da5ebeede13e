package types

import (
	"math/big"
	"sync/atomic"

	"github.com/hayesgm/exthereum/rlp"
)

// Body contains the transactions and uncle headers of a block.
type Body struct {
	Transactions []*Transaction
	Uncles       []*Header
}

// Block pairs a header with its body. Headers and transactions are treated
// as immutable once placed in a Block; mutating accessors return copies.
type Block struct {
	header *Header
	body   Body

	hash atomic.Pointer[Hash]
}

// NewBlock creates a new block with the given header and body. A nil body
// is treated as an empty body. The header's UncleHash, TxHash, ReceiptHash,
// and Bloom are taken as given; callers are responsible for deriving them
// before construction (see core.AddTransactionsToBlock).
func NewBlock(header *Header, body *Body) *Block {
	b := &Block{header: copyHeader(header)}
	if body != nil {
		b.body.Transactions = append([]*Transaction(nil), body.Transactions...)
		b.body.Uncles = make([]*Header, len(body.Uncles))
		for i, uncle := range body.Uncles {
			b.body.Uncles[i] = copyHeader(uncle)
		}
	}
	return b
}

func (b *Block) Header() *Header              { return copyHeader(b.header) }
func (b *Block) Body() *Body                  { return &Body{Transactions: b.body.Transactions, Uncles: b.body.Uncles} }
func (b *Block) Transactions() []*Transaction { return b.body.Transactions }
func (b *Block) Uncles() []*Header            { return b.body.Uncles }

func (b *Block) Number() *big.Int {
	if b.header.Number == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(b.header.Number)
}
func (b *Block) NumberU64() uint64 {
	if b.header.Number == nil {
		return 0
	}
	return b.header.Number.Uint64()
}
func (b *Block) GasLimit() uint64 { return b.header.GasLimit }
func (b *Block) GasUsed() uint64  { return b.header.GasUsed }
func (b *Block) Time() uint64     { return b.header.Time }
func (b *Block) Difficulty() *big.Int {
	if b.header.Difficulty == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(b.header.Difficulty)
}
func (b *Block) ParentHash() Hash  { return b.header.ParentHash }
func (b *Block) TxHash() Hash      { return b.header.TxHash }
func (b *Block) ReceiptHash() Hash { return b.header.ReceiptHash }
func (b *Block) UncleHash() Hash   { return b.header.UncleHash }
func (b *Block) Root() Hash        { return b.header.Root }
func (b *Block) Coinbase() Address { return b.header.Coinbase }
func (b *Block) Bloom() Bloom      { return b.header.Bloom }
func (b *Block) MixDigest() Hash   { return b.header.MixDigest }
func (b *Block) Nonce() BlockNonce { return b.header.Nonce }
func (b *Block) Extra() []byte     { return b.header.Extra }

// Hash returns the Keccak-256 hash of the block's header.
func (b *Block) Hash() Hash {
	if cached := b.hash.Load(); cached != nil {
		return *cached
	}
	h := b.header.Hash()
	b.hash.Store(&h)
	return h
}

// blockRLP mirrors the wire form of a complete block:
// [header, [transactions], [uncle headers]].
type blockRLP struct {
	Header *headerRLP
	Txs    []*txRLP
	Uncles []*headerRLP
}

// EncodeRLP returns the canonical RLP encoding of the block.
func (b *Block) EncodeRLP() ([]byte, error) {
	enc := &blockRLP{
		Header: b.header.toRLP(),
		Txs:    make([]*txRLP, 0, len(b.body.Transactions)),
		Uncles: make([]*headerRLP, 0, len(b.body.Uncles)),
	}
	for _, tx := range b.body.Transactions {
		enc.Txs = append(enc.Txs, tx.toRLP())
	}
	for _, uncle := range b.body.Uncles {
		enc.Uncles = append(enc.Uncles, uncle.toRLP())
	}
	return rlp.EncodeToBytes(enc)
}

// DecodeBlockRLP decodes a block from its canonical RLP encoding.
func DecodeBlockRLP(data []byte) (*Block, error) {
	var dec blockRLP
	if err := rlp.DecodeBytes(data, &dec); err != nil {
		return nil, err
	}
	body := &Body{
		Transactions: make([]*Transaction, 0, len(dec.Txs)),
		Uncles:       make([]*Header, 0, len(dec.Uncles)),
	}
	for _, t := range dec.Txs {
		body.Transactions = append(body.Transactions, txFromRLP(t))
	}
	for _, u := range dec.Uncles {
		body.Uncles = append(body.Uncles, headerFromRLP(u))
	}
	return NewBlock(headerFromRLP(dec.Header), body), nil
}
