package types

import "github.com/hayesgm/exthereum/rlp"

// Receipt status values (post-Byzantium; Homestead itself used the
// intermediate state root in PostState instead, see Receipt.PostState).
const (
	ReceiptStatusFailed     = uint64(0)
	ReceiptStatusSuccessful = uint64(1)
)

// Receipt represents the outcome of executing a single transaction.
type Receipt struct {
	PostState         []byte // intermediate state root (Homestead consensus field)
	Status            uint64 // derived convenience field, not consensus-encoded pre-Byzantium
	CumulativeGasUsed uint64
	Bloom             Bloom
	Logs              []*Log

	TxHash          Hash
	ContractAddress Address
	GasUsed         uint64

	BlockHash        Hash
	BlockNumber      uint64
	TransactionIndex uint
}

// NewReceipt creates a new receipt carrying the post-transaction state root
// and cumulative gas used so far in the block.
func NewReceipt(postState []byte, failed bool, cumulativeGasUsed uint64) *Receipt {
	status := ReceiptStatusSuccessful
	if failed {
		status = ReceiptStatusFailed
	}
	return &Receipt{PostState: postState, Status: status, CumulativeGasUsed: cumulativeGasUsed}
}

// Succeeded reports whether the transaction completed without reverting.
func (r *Receipt) Succeeded() bool { return r.Status == ReceiptStatusSuccessful }

// receiptRLP mirrors the consensus-encoded receipt fields (Homestead form):
// [postStateRoot, cumulativeGasUsed, bloom, logs].
type receiptRLP struct {
	PostState         []byte
	CumulativeGasUsed uint64
	Bloom             Bloom
	Logs              []*logRLP
}

// logRLP mirrors a Log's consensus-encoded fields: [address, topics, data].
// The block/tx linkage fields on Log are derived after the fact and never
// touch the wire.
type logRLP struct {
	Address Address
	Topics  []Hash
	Data    []byte
}

func (l *Log) toRLP() *logRLP {
	return &logRLP{Address: l.Address, Topics: l.Topics, Data: l.Data}
}

// EncodeRLP returns the canonical RLP encoding of the log.
func (l *Log) EncodeRLP() ([]byte, error) {
	return rlp.EncodeToBytes(l.toRLP())
}

func (r *Receipt) toRLP() *receiptRLP {
	logs := make([]*logRLP, len(r.Logs))
	for i, l := range r.Logs {
		logs[i] = l.toRLP()
	}
	return &receiptRLP{
		PostState:         r.PostState,
		CumulativeGasUsed: r.CumulativeGasUsed,
		Bloom:             r.Bloom,
		Logs:              logs,
	}
}

// EncodeRLP returns the canonical RLP encoding of the receipt.
func (r *Receipt) EncodeRLP() ([]byte, error) {
	return rlp.EncodeToBytes(r.toRLP())
}

// DecodeReceiptRLP decodes a receipt from its canonical RLP encoding.
func DecodeReceiptRLP(data []byte) (*Receipt, error) {
	var r receiptRLP
	if err := rlp.DecodeBytes(data, &r); err != nil {
		return nil, err
	}
	logs := make([]*Log, len(r.Logs))
	for i, l := range r.Logs {
		logs[i] = &Log{Address: l.Address, Topics: l.Topics, Data: l.Data}
	}
	// The Homestead wire form carries the post-state root, not a status
	// flag; Status is a convenience field populated by the executor and
	// is not recoverable from the encoding alone.
	return &Receipt{
		PostState:         r.PostState,
		CumulativeGasUsed: r.CumulativeGasUsed,
		Bloom:             r.Bloom,
		Logs:              logs,
	}, nil
}

// DeriveReceiptFields populates the derived, non-consensus fields on a list
// of receipts after block processing: block linkage, transaction hash and
// index, and per-log indices. CumulativeGasUsed is left as it is.
func DeriveReceiptFields(receipts []*Receipt, blockHash Hash, blockNumber uint64, txs []*Transaction) {
	var logIndex uint
	for i, receipt := range receipts {
		receipt.BlockHash = blockHash
		receipt.BlockNumber = blockNumber
		receipt.TransactionIndex = uint(i)
		if i < len(txs) {
			receipt.TxHash = txs[i].Hash()
		}
		for _, log := range receipt.Logs {
			log.BlockHash = blockHash
			log.BlockNumber = blockNumber
			log.TxIndex = uint(i)
			log.Index = logIndex
			if i < len(txs) {
				log.TxHash = txs[i].Hash()
			}
			logIndex++
		}
	}
}
