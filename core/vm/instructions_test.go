package vm

import (
	"math/big"
	"testing"

	"github.com/hayesgm/exthereum/core/types"
)

// runBinaryOp executes a two-operand arithmetic handler with x on top of the
// stack and returns the result left behind.
func runBinaryOp(t *testing.T, op executionFunc, x, y *big.Int) *big.Int {
	t.Helper()
	stack := NewStack()
	stack.Push(new(big.Int).Set(y))
	stack.Push(new(big.Int).Set(x))
	pc := uint64(0)
	if _, err := op(&pc, nil, nil, nil, stack); err != nil {
		t.Fatalf("op: %v", err)
	}
	return stack.Pop()
}

func u256FromNeg(x *big.Int) *big.Int {
	return fromS256(new(big.Int).Set(x))
}

func TestAddWraps(t *testing.T) {
	got := runBinaryOp(t, opAdd, tt256m1, big.NewInt(2))
	if got.Cmp(big.NewInt(1)) != 0 {
		t.Errorf("(2^256-1)+2 = %s, want 1", got)
	}
}

func TestSubWraps(t *testing.T) {
	got := runBinaryOp(t, opSub, big.NewInt(0), big.NewInt(1))
	if got.Cmp(tt256m1) != 0 {
		t.Errorf("0-1 = %s, want 2^256-1", got)
	}
}

func TestDivTruncatesUnsigned(t *testing.T) {
	if got := runBinaryOp(t, opDiv, big.NewInt(7), big.NewInt(2)); got.Cmp(big.NewInt(3)) != 0 {
		t.Errorf("7/2 = %s, want 3", got)
	}
	if got := runBinaryOp(t, opDiv, big.NewInt(7), big.NewInt(0)); got.Sign() != 0 {
		t.Errorf("7/0 = %s, want 0", got)
	}
}

func TestSdivRoundsTowardZero(t *testing.T) {
	minusSeven := u256FromNeg(big.NewInt(-7))
	got := runBinaryOp(t, opSdiv, minusSeven, big.NewInt(2))
	want := u256FromNeg(big.NewInt(-3))
	if got.Cmp(want) != 0 {
		t.Errorf("-7 sdiv 2 = %s, want %s", got, want)
	}
}

func TestSdivMostNegativeByMinusOne(t *testing.T) {
	// -2^255 sdiv -1 overflows back to -2^255.
	got := runBinaryOp(t, opSdiv, tt255, tt256m1)
	if got.Cmp(tt255) != 0 {
		t.Errorf("-2^255 sdiv -1 = %s, want 2^255 (the wrapped value)", got)
	}
}

func TestSmodTakesDividendSign(t *testing.T) {
	minusSeven := u256FromNeg(big.NewInt(-7))
	got := runBinaryOp(t, opSmod, minusSeven, big.NewInt(3))
	want := u256FromNeg(big.NewInt(-1))
	if got.Cmp(want) != 0 {
		t.Errorf("-7 smod 3 = %s, want %s", got, want)
	}
}

func TestModByZeroIsZero(t *testing.T) {
	if got := runBinaryOp(t, opMod, big.NewInt(7), big.NewInt(0)); got.Sign() != 0 {
		t.Errorf("7%%0 = %s, want 0", got)
	}
}

func TestAddmodMulmodZeroModulus(t *testing.T) {
	stack := NewStack()
	stack.Push(big.NewInt(0)) // n
	stack.Push(big.NewInt(2))
	stack.Push(big.NewInt(3))
	pc := uint64(0)
	if _, err := opAddmod(&pc, nil, nil, nil, stack); err != nil {
		t.Fatalf("addmod: %v", err)
	}
	if got := stack.Pop(); got.Sign() != 0 {
		t.Errorf("addmod(3,2,0) = %s, want 0", got)
	}

	stack = NewStack()
	stack.Push(big.NewInt(0)) // n
	stack.Push(big.NewInt(2))
	stack.Push(big.NewInt(3))
	if _, err := opMulmod(&pc, nil, nil, nil, stack); err != nil {
		t.Fatalf("mulmod: %v", err)
	}
	if got := stack.Pop(); got.Sign() != 0 {
		t.Errorf("mulmod(3,2,0) = %s, want 0", got)
	}
}

func TestMulmodUnboundedIntermediate(t *testing.T) {
	// (2^256-1)*(2^256-1) mod (2^256-2) needs the full product, not a
	// wrapped one: the answer is 1.
	stack := NewStack()
	stack.Push(new(big.Int).Sub(tt256m1, big.NewInt(1))) // n
	stack.Push(new(big.Int).Set(tt256m1))
	stack.Push(new(big.Int).Set(tt256m1))
	pc := uint64(0)
	if _, err := opMulmod(&pc, nil, nil, nil, stack); err != nil {
		t.Fatalf("mulmod: %v", err)
	}
	if got := stack.Pop(); got.Cmp(big.NewInt(1)) != 0 {
		t.Errorf("mulmod = %s, want 1", got)
	}
}

func TestExpWraps(t *testing.T) {
	got := runBinaryOp(t, opExp, big.NewInt(2), big.NewInt(256))
	if got.Sign() != 0 {
		t.Errorf("2^256 = %s, want 0 (wrapped)", got)
	}
	got = runBinaryOp(t, opExp, big.NewInt(3), big.NewInt(5))
	if got.Cmp(big.NewInt(243)) != 0 {
		t.Errorf("3^5 = %s, want 243", got)
	}
}

func TestSignExtend(t *testing.T) {
	got := runBinaryOp(t, opSignExtend, big.NewInt(0), big.NewInt(0xff))
	if got.Cmp(tt256m1) != 0 {
		t.Errorf("signextend(0, 0xff) = %s, want 2^256-1", got)
	}
	got = runBinaryOp(t, opSignExtend, big.NewInt(0), big.NewInt(0x7f))
	if got.Cmp(big.NewInt(0x7f)) != 0 {
		t.Errorf("signextend(0, 0x7f) = %s, want 0x7f", got)
	}
}

func TestSignedComparisons(t *testing.T) {
	minusOne := u256FromNeg(big.NewInt(-1))
	if got := runBinaryOp(t, opSlt, minusOne, big.NewInt(1)); got.Cmp(big.NewInt(1)) != 0 {
		t.Error("-1 slt 1 should be 1")
	}
	if got := runBinaryOp(t, opLt, minusOne, big.NewInt(1)); got.Sign() != 0 {
		t.Error("2^256-1 lt 1 should be 0 (unsigned)")
	}
	if got := runBinaryOp(t, opSgt, big.NewInt(1), minusOne); got.Cmp(big.NewInt(1)) != 0 {
		t.Error("1 sgt -1 should be 1")
	}
}

func TestByteSelectsBigEndian(t *testing.T) {
	val := new(big.Int).SetUint64(0x0102)
	if got := runBinaryOp(t, opByte, big.NewInt(31), val); got.Cmp(big.NewInt(0x02)) != 0 {
		t.Errorf("byte(31) = %s, want 2", got)
	}
	if got := runBinaryOp(t, opByte, big.NewInt(30), val); got.Cmp(big.NewInt(0x01)) != 0 {
		t.Errorf("byte(30) = %s, want 1", got)
	}
	if got := runBinaryOp(t, opByte, big.NewInt(32), val); got.Sign() != 0 {
		t.Errorf("byte(32) = %s, want 0", got)
	}
}

func TestPushPastEndZeroExtends(t *testing.T) {
	contract := NewContract(types.Address{}, types.Address{}, nil, 0)
	contract.Code = []byte{byte(PUSH2), 0x7f} // one operand byte short

	stack := NewStack()
	pc := uint64(0)
	if _, err := makePush(2)(&pc, nil, contract, nil, stack); err != nil {
		t.Fatalf("push: %v", err)
	}
	if got := stack.Pop(); got.Cmp(big.NewInt(0x7f00)) != 0 {
		t.Errorf("truncated PUSH2 = %s, want 0x7f00", got)
	}
	if pc != 2 {
		t.Errorf("pc advanced to %d, want 2", pc)
	}
}

func TestMstoreOffsetWordAccounting(t *testing.T) {
	cases := []struct {
		offset    uint64
		wantWords uint64
	}{
		{0, 1},
		{1, 2},
		{32, 2},
		{33, 3},
	}
	for _, c := range cases {
		stack := NewStack()
		stack.Push(big.NewInt(0x42))
		stack.Push(new(big.Int).SetUint64(c.offset))
		size := memoryMstore(stack)
		words := (size + 31) / 32
		if words != c.wantWords {
			t.Errorf("MSTORE at %d touches %d words, want %d", c.offset, words, c.wantWords)
		}
	}
}

func TestMemoryExpansionChargesOnlyIncrease(t *testing.T) {
	mem := NewMemory()

	cost, err := gasMemExpansion(nil, nil, nil, mem, 32)
	if err != nil || cost != GasMemory {
		t.Errorf("first word costs %d (err %v), want %d", cost, err, GasMemory)
	}
	mem.Resize(32)

	cost, err = gasMemExpansion(nil, nil, nil, mem, 64)
	if err != nil || cost != GasMemory {
		t.Errorf("second word costs %d (err %v), want %d", cost, err, GasMemory)
	}
	mem.Resize(64)

	cost, err = gasMemExpansion(nil, nil, nil, mem, 32)
	if err != nil || cost != 0 {
		t.Errorf("shrinking reference costs %d (err %v), want 0", cost, err)
	}
}

func TestSstoreGasTransitions(t *testing.T) {
	evm, sdb := newTestEVM(t)
	addr := types.BytesToAddress([]byte{0x77})
	if err := sdb.CreateAccount(addr); err != nil {
		t.Fatalf("create account: %v", err)
	}
	contract := NewContract(types.Address{}, addr, nil, 0)

	slot := big.NewInt(1)
	sstoreCost := func(val int64) uint64 {
		stack := NewStack()
		stack.Push(big.NewInt(val))
		stack.Push(new(big.Int).Set(slot))
		cost, err := gasSstore(evm, contract, stack, nil, 0)
		if err != nil {
			t.Fatalf("gasSstore: %v", err)
		}
		return cost
	}

	// Zero over zero: reset price, no refund.
	if cost := sstoreCost(0); cost != GasSstoreReset {
		t.Errorf("0 over 0 costs %d, want %d", cost, GasSstoreReset)
	}
	if refund := sdb.GetRefund(); refund != 0 {
		t.Errorf("0 over 0 granted refund %d, want 0", refund)
	}

	// Zero to non-zero: set price.
	if cost := sstoreCost(3); cost != GasSstoreSet {
		t.Errorf("0 -> 3 costs %d, want %d", cost, GasSstoreSet)
	}
	if err := sdb.SetState(addr, bigToHash(slot), bigToHash(big.NewInt(3))); err != nil {
		t.Fatalf("set state: %v", err)
	}

	// Non-zero to zero: reset price plus a refund.
	if cost := sstoreCost(0); cost != GasSstoreReset {
		t.Errorf("3 -> 0 costs %d, want %d", cost, GasSstoreReset)
	}
	if refund := sdb.GetRefund(); refund != GasSstoreRefund {
		t.Errorf("3 -> 0 granted refund %d, want %d", refund, GasSstoreRefund)
	}
}
