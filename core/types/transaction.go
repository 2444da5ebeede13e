package types

import (
	"errors"
	"math/big"
	"sync/atomic"

	"github.com/hayesgm/exthereum/rlp"
)

var ErrInvalidSig = errors.New("transaction: invalid signature")

// Transaction represents a single (legacy-form, Homestead-era) Ethereum
// transaction: either a contract-creation transaction (To == nil, Data is
// treated as init code) or a message call (To != nil, Data is the call
// input).
type Transaction struct {
	Nonce    uint64
	GasPrice *big.Int
	Gas      uint64
	To       *Address // nil means contract creation
	Value    *big.Int
	Data     []byte
	V, R, S  *big.Int

	hash atomic.Pointer[Hash]
	from atomic.Pointer[Address]
}

// txRLP mirrors Transaction's wire field order (the signed/unsigned payload
// shares this layout; signing data simply zeroes V/R/S or, post-EIP-155,
// sets V to the chain id and R/S to zero).
type txRLP struct {
	Nonce    uint64
	GasPrice *big.Int
	Gas      uint64
	To       *Address
	Value    *big.Int
	Data     []byte
	V        *big.Int
	R        *big.Int
	S        *big.Int
}

// NewTransaction builds an unsigned message-call transaction.
func NewTransaction(nonce uint64, to Address, value *big.Int, gas uint64, gasPrice *big.Int, data []byte) *Transaction {
	return &Transaction{Nonce: nonce, To: &to, Value: value, Gas: gas, GasPrice: gasPrice, Data: data, V: new(big.Int), R: new(big.Int), S: new(big.Int)}
}

// NewContractCreation builds an unsigned contract-creation transaction.
func NewContractCreation(nonce uint64, value *big.Int, gas uint64, gasPrice *big.Int, data []byte) *Transaction {
	return &Transaction{Nonce: nonce, To: nil, Value: value, Gas: gas, GasPrice: gasPrice, Data: data, V: new(big.Int), R: new(big.Int), S: new(big.Int)}
}

func (tx *Transaction) toRLP() *txRLP {
	return &txRLP{
		Nonce: tx.Nonce, GasPrice: tx.GasPrice, Gas: tx.Gas, To: tx.To,
		Value: tx.Value, Data: tx.Data, V: tx.V, R: tx.R, S: tx.S,
	}
}

// EncodeRLP returns the canonical RLP encoding of the (signed) transaction.
func (tx *Transaction) EncodeRLP() ([]byte, error) {
	return rlp.EncodeToBytes(tx.toRLP())
}

// DecodeTransactionRLP decodes a transaction from its canonical RLP encoding.
func DecodeTransactionRLP(data []byte) (*Transaction, error) {
	var r txRLP
	if err := rlp.DecodeBytes(data, &r); err != nil {
		return nil, err
	}
	return txFromRLP(&r), nil
}

func txFromRLP(r *txRLP) *Transaction {
	return &Transaction{
		Nonce: r.Nonce, GasPrice: r.GasPrice, Gas: r.Gas, To: r.To,
		Value: r.Value, Data: r.Data, V: r.V, R: r.R, S: r.S,
	}
}

// Hash returns the Keccak-256 hash of the transaction's canonical RLP
// encoding (the signed form, as it appears in blocks).
func (tx *Transaction) Hash() Hash {
	if cached := tx.hash.Load(); cached != nil {
		return *cached
	}
	enc, err := tx.EncodeRLP()
	if err != nil {
		panic("transaction: " + err.Error())
	}
	h := keccak256Hash(enc)
	tx.hash.Store(&h)
	return h
}

// SigningHash returns the hash over which the signature is computed: the
// RLP encoding of the transaction with V/R/S replaced according to the
// signing scheme. chainID == nil selects the pre-EIP-155 scheme.
func (tx *Transaction) SigningHash(chainID *big.Int) Hash {
	var r txRLP
	if chainID == nil || chainID.Sign() == 0 {
		r = txRLP{
			Nonce: tx.Nonce, GasPrice: tx.GasPrice, Gas: tx.Gas, To: tx.To,
			Value: tx.Value, Data: tx.Data, V: big.NewInt(0), R: big.NewInt(0), S: big.NewInt(0),
		}
	} else {
		r = txRLP{
			Nonce: tx.Nonce, GasPrice: tx.GasPrice, Gas: tx.Gas, To: tx.To,
			Value: tx.Value, Data: tx.Data, V: new(big.Int).Set(chainID), R: big.NewInt(0), S: big.NewInt(0),
		}
	}
	enc, err := rlp.EncodeToBytes(&r)
	if err != nil {
		panic("transaction: " + err.Error())
	}
	return keccak256Hash(enc)
}

// ChainID extracts the chain id encoded in an EIP-155 V value, or nil if the
// transaction uses the pre-EIP-155 legacy scheme.
func (tx *Transaction) ChainID() *big.Int {
	if tx.V == nil {
		return nil
	}
	_, chainID := normalizeV(tx.V)
	if chainID.Sign() == 0 && tx.V.Cmp(big.NewInt(35)) < 0 {
		return nil
	}
	return chainID
}

// WithSignature fills in V/R/S from a 65-byte [R || S || V] signature over
// the transaction's signing hash (as produced by crypto.Sign), normalizing
// S to the lower half of the curve order and flipping the recovery bit to
// compensate. chainID nil selects the legacy (27/28) V encoding; non-nil
// selects EIP-155.
func (tx *Transaction) WithSignature(sig []byte, chainID *big.Int) error {
	if len(sig) != 65 {
		return ErrInvalidSig
	}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	recovery := sig[64]
	if s.Cmp(secp256k1halfN) > 0 {
		s = new(big.Int).Sub(secp256k1N, s)
		recovery ^= 1
	}
	tx.R, tx.S = r, s
	if chainID != nil && chainID.Sign() != 0 {
		tx.V = new(big.Int).Add(new(big.Int).Mul(chainID, big.NewInt(2)), big.NewInt(35+int64(recovery)))
	} else {
		tx.V = big.NewInt(int64(recovery) + 27)
	}
	return nil
}

// Sender recovers (and caches) the address that signed this transaction.
func (tx *Transaction) Sender() (Address, error) {
	if cached := tx.from.Load(); cached != nil {
		return *cached, nil
	}
	if tx.V == nil || tx.R == nil || tx.S == nil || tx.R.Sign() == 0 || tx.S.Sign() == 0 {
		return Address{}, ErrInvalidSig
	}
	chainID := tx.ChainID()
	sigHash := tx.SigningHash(chainID)
	recovery, _ := normalizeV(tx.V)
	addr, err := recoverPlain(sigHash, tx.R, tx.S, recovery)
	if err != nil {
		return Address{}, err
	}
	tx.from.Store(&addr)
	return addr, nil
}

// SetSender caches the sender address without performing recovery (used by
// callers that have already verified the signature).
func (tx *Transaction) SetSender(addr Address) {
	a := addr
	tx.from.Store(&a)
}

// Cost returns gas * gasPrice + value, the maximum amount debited from the
// sender's balance for this transaction.
func (tx *Transaction) Cost() *big.Int {
	total := new(big.Int).Mul(new(big.Int).SetUint64(tx.Gas), tx.GasPrice)
	total.Add(total, tx.Value)
	return total
}

// IsContractCreation reports whether this transaction creates a new contract.
func (tx *Transaction) IsContractCreation() bool { return tx.To == nil }
