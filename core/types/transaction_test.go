package types_test

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/hayesgm/exthereum/core/types"
	"github.com/hayesgm/exthereum/crypto"
)

func TestTransactionRLPRoundTrip(t *testing.T) {
	to := types.BytesToAddress([]byte{0xAA, 0xBB})
	tx := types.NewTransaction(7, to, big.NewInt(1000), 21000, big.NewInt(3), []byte{0x01, 0x02})

	enc, err := tx.EncodeRLP()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec, err := types.DecodeTransactionRLP(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if dec.Nonce != tx.Nonce || dec.Gas != tx.Gas {
		t.Errorf("nonce/gas mismatch: got (%d, %d), want (%d, %d)", dec.Nonce, dec.Gas, tx.Nonce, tx.Gas)
	}
	if dec.To == nil || *dec.To != to {
		t.Errorf("to = %v, want %s", dec.To, to.Hex())
	}
	if dec.Value.Cmp(tx.Value) != 0 || dec.GasPrice.Cmp(tx.GasPrice) != 0 {
		t.Error("value/gasPrice mismatch after round trip")
	}
	if !bytes.Equal(dec.Data, tx.Data) {
		t.Errorf("data = % x, want % x", dec.Data, tx.Data)
	}
}

func TestContractCreationRLPKeepsNilRecipient(t *testing.T) {
	tx := types.NewContractCreation(0, big.NewInt(5), 100_000, big.NewInt(1), []byte{0x00})

	enc, err := tx.EncodeRLP()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec, err := types.DecodeTransactionRLP(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dec.To != nil {
		t.Errorf("creation transaction decoded with non-nil recipient %s", dec.To.Hex())
	}
	if !dec.IsContractCreation() {
		t.Error("expected IsContractCreation after round trip")
	}
}

func TestTransactionSenderRecoveryLegacy(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	want := crypto.PubkeyToAddress(key.PublicKey)

	to := types.BytesToAddress([]byte{0x01})
	tx := types.NewTransaction(1, to, big.NewInt(10), 21000, big.NewInt(1), nil)

	sigHash := tx.SigningHash(nil)
	sig, err := crypto.Sign(sigHash.Bytes(), key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := tx.WithSignature(sig, nil); err != nil {
		t.Fatalf("with signature: %v", err)
	}
	if tx.V.Uint64() != 27 && tx.V.Uint64() != 28 {
		t.Errorf("legacy v = %s, want 27 or 28", tx.V)
	}

	got, err := tx.Sender()
	if err != nil {
		t.Fatalf("sender: %v", err)
	}
	if got != want {
		t.Errorf("sender = %s, want %s", got.Hex(), want.Hex())
	}
}

func TestTransactionSenderRecoveryEIP155(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	want := crypto.PubkeyToAddress(key.PublicKey)
	chainID := big.NewInt(61)

	tx := types.NewContractCreation(0, big.NewInt(0), 100_000, big.NewInt(2), []byte{0x60, 0x00})

	sigHash := tx.SigningHash(chainID)
	sig, err := crypto.Sign(sigHash.Bytes(), key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := tx.WithSignature(sig, chainID); err != nil {
		t.Fatalf("with signature: %v", err)
	}
	if got := tx.ChainID(); got == nil || got.Cmp(chainID) != 0 {
		t.Errorf("chain id = %v, want %s", got, chainID)
	}

	got, err := tx.Sender()
	if err != nil {
		t.Fatalf("sender: %v", err)
	}
	if got != want {
		t.Errorf("sender = %s, want %s", got.Hex(), want.Hex())
	}
}

func TestSenderRejectsUnsignedTransaction(t *testing.T) {
	tx := types.NewTransaction(0, types.Address{}, big.NewInt(0), 21000, big.NewInt(1), nil)
	if _, err := tx.Sender(); err == nil {
		t.Error("expected error recovering sender of unsigned transaction")
	}
}

func TestBlockRLPRoundTrip(t *testing.T) {
	header := &types.Header{
		ParentHash: types.HexToHash("01"),
		UncleHash:  types.EmptyUncleHash,
		Coinbase:   types.BytesToAddress([]byte{0x99}),
		Root:       types.HexToHash("02"),
		Difficulty: big.NewInt(131072),
		Number:     big.NewInt(5),
		GasLimit:   3_000_000,
		GasUsed:    21000,
		Time:       1_438_269_988,
		Extra:      []byte("extra"),
		Nonce:      types.EncodeNonce(42),
	}
	to := types.BytesToAddress([]byte{0x11})
	txs := []*types.Transaction{
		types.NewTransaction(0, to, big.NewInt(1), 21000, big.NewInt(1), nil),
		types.NewContractCreation(1, big.NewInt(0), 100_000, big.NewInt(1), []byte{0x00}),
	}
	uncle := &types.Header{Difficulty: big.NewInt(131072), Number: big.NewInt(4), GasLimit: 3_000_000}

	block := types.NewBlock(header, &types.Body{Transactions: txs, Uncles: []*types.Header{uncle}})

	enc, err := block.EncodeRLP()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec, err := types.DecodeBlockRLP(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if dec.Hash() != block.Hash() {
		t.Errorf("decoded block hash %s, want %s", dec.Hash().Hex(), block.Hash().Hex())
	}
	if len(dec.Transactions()) != 2 {
		t.Fatalf("got %d transactions, want 2", len(dec.Transactions()))
	}
	if dec.Transactions()[1].To != nil {
		t.Error("creation transaction in block decoded with non-nil recipient")
	}
	if len(dec.Uncles()) != 1 || dec.Uncles()[0].Hash() != uncle.Hash() {
		t.Error("uncle header mismatch after round trip")
	}
}

func TestHeaderRLPRoundTrip(t *testing.T) {
	header := &types.Header{
		ParentHash: types.HexToHash("aa"),
		Difficulty: big.NewInt(1_000_000),
		Number:     big.NewInt(1_150_000),
		GasLimit:   3_141_592,
		Time:       1_150_000_000,
		MixDigest:  types.HexToHash("bb"),
	}
	enc, err := header.EncodeRLP()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec, err := types.DecodeHeaderRLP(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dec.Hash() != header.Hash() {
		t.Errorf("decoded header hash %s, want %s", dec.Hash().Hex(), header.Hash().Hex())
	}
}
