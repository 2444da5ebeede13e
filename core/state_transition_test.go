package core

import (
	"math/big"
	"testing"

	"github.com/hayesgm/exthereum/core/state"
	"github.com/hayesgm/exthereum/core/types"
	"github.com/hayesgm/exthereum/core/vm"
	"github.com/hayesgm/exthereum/crypto"
	"github.com/hayesgm/exthereum/ethdb"
	"github.com/hayesgm/exthereum/rlp"
	"github.com/hayesgm/exthereum/trie"
)

func newTestState(t *testing.T) *state.StateDB {
	t.Helper()
	db := trie.NewDatabase(ethdb.NewMemoryDB())
	sdb, err := state.New(types.Hash{}, db)
	if err != nil {
		t.Fatalf("state.New: %v", err)
	}
	return sdb
}

func noopGetHash(uint64) types.Hash { return types.Hash{} }

// TestContractCreationScenario deploys a contract whose init code is a
// single STOP from a sender with balance 400000 and nonce 5, transferring
// value 5, and checks the full post-state: balances, nonces, derived
// address, and the (empty) installed code.
func TestContractCreationScenario(t *testing.T) {
	sdb := newTestState(t)

	sender := types.BytesToAddress([]byte{0x10})
	if err := sdb.CreateAccount(sender); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if err := sdb.AddBalance(sender, big.NewInt(400_000)); err != nil {
		t.Fatalf("add balance: %v", err)
	}
	if err := sdb.SetNonce(sender, 5); err != nil {
		t.Fatalf("set nonce: %v", err)
	}

	tx := types.NewContractCreation(5, big.NewInt(5), 100_000, big.NewInt(3), []byte{byte(vm.STOP)})
	tx.SetSender(sender)

	blockCtx := vm.BlockContext{GetHash: noopGetHash, GasLimit: 10_000_000, Difficulty: big.NewInt(1)}
	txCtx := vm.TxContext{Origin: sender, GasPrice: tx.GasPrice}
	evm := vm.NewEVM(blockCtx, txCtx, sdb)

	gp := new(GasPool).AddGas(10_000_000)
	receipt, err := ApplyTransaction(evm, sdb, tx, gp)
	if err != nil {
		t.Fatalf("apply transaction: %v", err)
	}

	// Base transaction cost, creation surcharge, and one zero init byte.
	wantGasUsed := uint64(21_000 + 32_000 + 4)
	if receipt.GasUsed != wantGasUsed {
		t.Errorf("gas used = %d, want %d", receipt.GasUsed, wantGasUsed)
	}

	senderBalance, err := sdb.GetBalance(sender)
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	wantSenderBalance := big.NewInt(400_000 - int64(wantGasUsed)*3 - 5)
	if senderBalance.Cmp(wantSenderBalance) != 0 {
		t.Errorf("sender balance = %s, want %s", senderBalance, wantSenderBalance)
	}

	senderNonce, err := sdb.GetNonce(sender)
	if err != nil {
		t.Fatalf("get nonce: %v", err)
	}
	if senderNonce != 6 {
		t.Errorf("sender nonce = %d, want 6", senderNonce)
	}

	enc, err := rlp.EncodeToBytes([]interface{}{sender.Bytes(), uint64(5)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	wantAddr := types.BytesToAddress(crypto.Keccak256(enc)[12:])
	if receipt.ContractAddress != wantAddr {
		t.Errorf("contract address = %s, want %s", receipt.ContractAddress.Hex(), wantAddr.Hex())
	}

	contractBalance, err := sdb.GetBalance(wantAddr)
	if err != nil {
		t.Fatalf("get contract balance: %v", err)
	}
	if contractBalance.Cmp(big.NewInt(5)) != 0 {
		t.Errorf("contract balance = %s, want 5", contractBalance)
	}

	contractNonce, err := sdb.GetNonce(wantAddr)
	if err != nil {
		t.Fatalf("get contract nonce: %v", err)
	}
	if contractNonce != 0 {
		t.Errorf("contract nonce = %d, want 0", contractNonce)
	}

	code, err := sdb.GetCode(wantAddr)
	if err != nil {
		t.Fatalf("get code: %v", err)
	}
	if len(code) != 0 {
		t.Errorf("expected empty code, got %d bytes", len(code))
	}
}

func TestIntrinsicGasRejectsShortfall(t *testing.T) {
	sdb := newTestState(t)
	sender := types.BytesToAddress([]byte{0x20})
	sdb.CreateAccount(sender)
	sdb.AddBalance(sender, big.NewInt(1_000_000))

	tx := types.NewContractCreation(0, big.NewInt(0), 1000, big.NewInt(1), nil)
	tx.SetSender(sender)

	blockCtx := vm.BlockContext{GetHash: noopGetHash, GasLimit: 10_000_000}
	txCtx := vm.TxContext{Origin: sender, GasPrice: tx.GasPrice}
	evm := vm.NewEVM(blockCtx, txCtx, sdb)
	gp := new(GasPool).AddGas(10_000_000)

	if _, err := ApplyTransaction(evm, sdb, tx, gp); err == nil {
		t.Fatal("expected intrinsic gas shortfall error")
	}
}
