package vm

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/hayesgm/exthereum/core/state"
	"github.com/hayesgm/exthereum/core/types"
	"github.com/hayesgm/exthereum/ethdb"
	"github.com/hayesgm/exthereum/trie"
)

func newTestEVM(t *testing.T) (*EVM, *state.StateDB) {
	t.Helper()
	db := trie.NewDatabase(ethdb.NewMemoryDB())
	sdb, err := state.New(types.Hash{}, db)
	if err != nil {
		t.Fatalf("state.New: %v", err)
	}
	evm := NewEVM(BlockContext{GasLimit: 10_000_000}, TxContext{GasPrice: big.NewInt(1)}, sdb)
	return evm, sdb
}

// TestSimpleArithmeticAndReturn adds 3 + 5, stores the sum to memory, and
// returns it as a 32-byte big-endian word.
func TestSimpleArithmeticAndReturn(t *testing.T) {
	evm, sdb := newTestEVM(t)

	code := []byte{
		byte(PUSH1), 3,
		byte(PUSH1), 5,
		byte(ADD),
		byte(PUSH1), 0,
		byte(MSTORE),
		byte(PUSH1), 0,
		byte(PUSH1), 32,
		byte(RETURN),
	}

	addr := types.BytesToAddress([]byte{0xAA})
	if err := sdb.CreateAccount(addr); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if err := sdb.SetCode(addr, code); err != nil {
		t.Fatalf("set code: %v", err)
	}

	caller := types.BytesToAddress([]byte{0xBB})
	ret, _, err := evm.Call(caller, addr, nil, 100_000, new(big.Int))
	if err != nil {
		t.Fatalf("call: %v", err)
	}

	want := make([]byte, 32)
	want[31] = 8
	if !bytes.Equal(ret, want) {
		t.Errorf("got % x, want % x", ret, want)
	}
}

// TestPersistentSSTORE checks that after SSTORE(5, 3) the contract's
// storage slot 5 holds 3.
func TestPersistentSSTORE(t *testing.T) {
	evm, sdb := newTestEVM(t)

	code := []byte{
		byte(PUSH1), 3,
		byte(PUSH1), 5,
		byte(SSTORE),
		byte(STOP),
	}

	addr := types.BytesToAddress([]byte{0xCC})
	sdb.CreateAccount(addr)
	sdb.SetCode(addr, code)

	caller := types.BytesToAddress([]byte{0xDD})
	if _, _, err := evm.Call(caller, addr, nil, 100_000, new(big.Int)); err != nil {
		t.Fatalf("call: %v", err)
	}

	var slot, val types.Hash
	val[31] = 3
	slot[31] = 5
	got, err := sdb.GetState(addr, slot)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if got != val {
		t.Errorf("storage[5] = %s, want %s", got.Hex(), val.Hex())
	}
}

func TestStackOverflowHalts(t *testing.T) {
	evm, sdb := newTestEVM(t)

	code := make([]byte, 0, 2*1025)
	for i := 0; i < 1025; i++ {
		code = append(code, byte(PUSH1), 1)
	}
	code = append(code, byte(STOP))

	addr := types.BytesToAddress([]byte{0xEE})
	sdb.CreateAccount(addr)
	sdb.SetCode(addr, code)

	caller := types.BytesToAddress([]byte{0xFF})
	_, _, err := evm.Call(caller, addr, nil, 10_000_000, new(big.Int))
	if err != ErrStackOverflow {
		t.Errorf("got err %v, want %v", err, ErrStackOverflow)
	}
}

func TestJumpToPushDataIsInvalid(t *testing.T) {
	evm, sdb := newTestEVM(t)

	// PUSH32 whose operand ends in JUMPDEST's opcode value, then a jump
	// straight at that byte: it reads as a JUMPDEST but sits inside push
	// data, so it must not be a valid destination.
	code := make([]byte, 0, 40)
	code = append(code, byte(PUSH32))
	operand := make([]byte, 32)
	operand[31] = byte(JUMPDEST)
	code = append(code, operand...)
	jumpDest := byte(len(code) - 1) // the JUMPDEST byte inside the operand
	code = append(code, byte(PUSH1), jumpDest, byte(JUMP))

	addr := types.BytesToAddress([]byte{0x01, 0x02})
	sdb.CreateAccount(addr)
	sdb.SetCode(addr, code)

	caller := types.BytesToAddress([]byte{0x03, 0x04})
	_, _, err := evm.Call(caller, addr, nil, 100_000, new(big.Int))
	if err != ErrInvalidJump {
		t.Errorf("got err %v, want %v", err, ErrInvalidJump)
	}
}
