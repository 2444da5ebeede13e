package vm

import (
	"math/big"

	"github.com/hayesgm/exthereum/core/types"
	"github.com/hayesgm/exthereum/crypto"
)

// executionFunc is the signature every opcode handler implements.
type executionFunc func(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error)

var (
	tt256   = new(big.Int).Lsh(big.NewInt(1), 256)
	tt256m1 = new(big.Int).Sub(tt256, big.NewInt(1))
	tt255   = new(big.Int).Lsh(big.NewInt(1), 255)
)

func toU256(val *big.Int) *big.Int { return val.And(val, tt256m1) }

func toS256(val *big.Int) *big.Int {
	if val.Cmp(tt255) < 0 {
		return val
	}
	return new(big.Int).Sub(val, tt256)
}

func fromS256(val *big.Int) *big.Int {
	if val.Sign() >= 0 {
		return val
	}
	return new(big.Int).Add(val, tt256)
}

func bigToHash(b *big.Int) types.Hash { return types.BytesToHash(b.Bytes()) }

func bigToAddress(b *big.Int) types.Address { return types.BytesToAddress(b.Bytes()) }

func opAdd(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	toU256(y.Add(x, y))
	return nil, nil
}

func opSub(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	toU256(y.Sub(x, y))
	return nil, nil
}

func opMul(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	toU256(y.Mul(x, y))
	return nil, nil
}

func opDiv(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	if y.Sign() != 0 {
		y.Div(x, y)
	} else {
		y.SetUint64(0)
	}
	return nil, nil
}

func opSdiv(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	sx, sy := toS256(new(big.Int).Set(x)), toS256(new(big.Int).Set(y))
	if sy.Sign() == 0 {
		y.SetUint64(0)
		return nil, nil
	}
	result := new(big.Int).Div(new(big.Int).Abs(sx), new(big.Int).Abs(sy))
	if sx.Sign() != sy.Sign() {
		result.Neg(result)
	}
	toU256(y.Set(fromS256(result)))
	return nil, nil
}

func opMod(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	if y.Sign() != 0 {
		y.Mod(x, y)
	} else {
		y.SetUint64(0)
	}
	return nil, nil
}

func opSmod(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	sx, sy := toS256(new(big.Int).Set(x)), toS256(new(big.Int).Set(y))
	if sy.Sign() == 0 {
		y.SetUint64(0)
		return nil, nil
	}
	result := new(big.Int).Mod(new(big.Int).Abs(sx), new(big.Int).Abs(sy))
	if sx.Sign() < 0 {
		result.Neg(result)
	}
	toU256(y.Set(fromS256(result)))
	return nil, nil
}

func opAddmod(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y, z := stack.Pop(), stack.Pop(), stack.Peek()
	if z.Sign() != 0 {
		toU256(z.Mod(new(big.Int).Add(x, y), z))
	} else {
		z.SetUint64(0)
	}
	return nil, nil
}

func opMulmod(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y, z := stack.Pop(), stack.Pop(), stack.Peek()
	if z.Sign() != 0 {
		toU256(z.Mod(new(big.Int).Mul(x, y), z))
	} else {
		z.SetUint64(0)
	}
	return nil, nil
}

func opExp(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	base, exponent := stack.Pop(), stack.Peek()
	exponent.Exp(base, exponent, tt256)
	return nil, nil
}

func opSignExtend(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	back, num := stack.Pop(), stack.Peek()
	if back.Cmp(big.NewInt(31)) < 0 {
		bit := uint(back.Uint64()*8 + 7)
		mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), bit), big.NewInt(1))
		if num.Bit(int(bit)) > 0 {
			num.Or(num, new(big.Int).Not(mask))
		} else {
			num.And(num, mask)
		}
		toU256(num)
	}
	return nil, nil
}

func cmpPush(cond bool, y *big.Int) {
	if cond {
		y.SetUint64(1)
	} else {
		y.SetUint64(0)
	}
}

func opLt(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	cmpPush(x.Cmp(y) < 0, y)
	return nil, nil
}

func opGt(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	cmpPush(x.Cmp(y) > 0, y)
	return nil, nil
}

func opSlt(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	cmpPush(toS256(new(big.Int).Set(x)).Cmp(toS256(new(big.Int).Set(y))) < 0, y)
	return nil, nil
}

func opSgt(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	cmpPush(toS256(new(big.Int).Set(x)).Cmp(toS256(new(big.Int).Set(y))) > 0, y)
	return nil, nil
}

func opEq(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	cmpPush(x.Cmp(y) == 0, y)
	return nil, nil
}

func opIsZero(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x := stack.Peek()
	cmpPush(x.Sign() == 0, x)
	return nil, nil
}

func opAnd(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	y.And(x, y)
	return nil, nil
}

func opOr(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	y.Or(x, y)
	return nil, nil
}

func opXor(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x, y := stack.Pop(), stack.Peek()
	y.Xor(x, y)
	return nil, nil
}

func opNot(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x := stack.Peek()
	toU256(x.Not(x))
	return nil, nil
}

func opByte(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	th, val := stack.Pop(), stack.Peek()
	if th.Cmp(big.NewInt(32)) < 0 {
		b := val.Bytes()
		padded := make([]byte, 32)
		copy(padded[32-len(b):], b)
		val.SetUint64(uint64(padded[th.Uint64()]))
	} else {
		val.SetUint64(0)
	}
	return nil, nil
}

func opCalldataLoad(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	x := stack.Peek()
	data := make([]byte, 32)
	if x.IsUint64() {
		if offset := x.Uint64(); offset < uint64(len(contract.Input)) {
			copy(data, contract.Input[offset:])
		}
	}
	x.SetBytes(data)
	return nil, nil
}

func opCalldataSize(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	return nil, stack.Push(new(big.Int).SetUint64(uint64(len(contract.Input))))
}

func opCalldataCopy(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	memOffset, dataOffset, length := stack.Pop(), stack.Pop(), stack.Pop()
	l := length.Uint64()
	if l == 0 {
		return nil, nil
	}
	data := make([]byte, l)
	if dataOffset.IsUint64() {
		if dOff := dataOffset.Uint64(); dOff < uint64(len(contract.Input)) {
			copy(data, contract.Input[dOff:])
		}
	}
	memory.Set(memOffset.Uint64(), l, data)
	return nil, nil
}

func opCodeSize(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	return nil, stack.Push(new(big.Int).SetUint64(uint64(len(contract.Code))))
}

func opCodeCopy(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	memOffset, codeOffset, length := stack.Pop(), stack.Pop(), stack.Pop()
	l := length.Uint64()
	if l == 0 {
		return nil, nil
	}
	data := make([]byte, l)
	if codeOffset.IsUint64() {
		if cOff := codeOffset.Uint64(); cOff < uint64(len(contract.Code)) {
			copy(data, contract.Code[cOff:])
		}
	}
	memory.Set(memOffset.Uint64(), l, data)
	return nil, nil
}

func opAddress(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	return nil, stack.Push(new(big.Int).SetBytes(contract.Address[:]))
}

func opOrigin(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	return nil, stack.Push(new(big.Int).SetBytes(evm.TxContext.Origin[:]))
}

func opCaller(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	return nil, stack.Push(new(big.Int).SetBytes(contract.CallerAddress[:]))
}

func opCallValue(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	v := new(big.Int)
	if contract.Value != nil {
		v.Set(contract.Value)
	}
	return nil, stack.Push(v)
}

func opGasPrice(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	v := new(big.Int)
	if evm.TxContext.GasPrice != nil {
		v.Set(evm.TxContext.GasPrice)
	}
	return nil, stack.Push(v)
}

func opCoinbase(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	return nil, stack.Push(new(big.Int).SetBytes(evm.Context.Coinbase[:]))
}

func opTimestamp(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	return nil, stack.Push(new(big.Int).SetUint64(evm.Context.Time))
}

func opNumber(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	v := new(big.Int)
	if evm.Context.BlockNumber != nil {
		v.Set(evm.Context.BlockNumber)
	}
	return nil, stack.Push(v)
}

func opDifficulty(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	v := new(big.Int)
	if evm.Context.Difficulty != nil {
		v.Set(evm.Context.Difficulty)
	}
	return nil, stack.Push(v)
}

func opGasLimit(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	return nil, stack.Push(new(big.Int).SetUint64(evm.Context.GasLimit))
}

func opPop(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	stack.Pop()
	return nil, nil
}

func opMload(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	offset := stack.Peek()
	offset.SetBytes(memory.Get(int64(offset.Uint64()), 32))
	return nil, nil
}

func opMstore(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	offset, val := stack.Pop(), stack.Pop()
	memory.Set32(offset.Uint64(), val)
	return nil, nil
}

func opMstore8(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	offset, val := stack.Pop(), stack.Pop()
	memory.Set(offset.Uint64(), 1, []byte{byte(val.Uint64())})
	return nil, nil
}

func opJump(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	pos := stack.Pop()
	if !contract.validJumpdest(pos) {
		return nil, ErrInvalidJump
	}
	*pc = pos.Uint64()
	return nil, nil
}

func opJumpi(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	pos, cond := stack.Pop(), stack.Pop()
	if cond.Sign() != 0 {
		if !contract.validJumpdest(pos) {
			return nil, ErrInvalidJump
		}
		*pc = pos.Uint64()
	} else {
		*pc++
	}
	return nil, nil
}

func opJumpdest(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	return nil, nil
}

func opPc(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	return nil, stack.Push(new(big.Int).SetUint64(*pc))
}

func opMsize(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	return nil, stack.Push(new(big.Int).SetUint64(uint64(memory.Len())))
}

func opGas(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	return nil, stack.Push(new(big.Int).SetUint64(contract.Gas))
}

func opPush1(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	var b uint64
	if *pc+1 < uint64(len(contract.Code)) {
		b = uint64(contract.Code[*pc+1])
	}
	if err := stack.Push(new(big.Int).SetUint64(b)); err != nil {
		return nil, err
	}
	*pc++
	return nil, nil
}

// makePush returns a handler that pushes the next size bytes of code as a
// big-endian integer, zero-padded past the end of the code.
func makePush(size uint64) executionFunc {
	return func(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
		start := *pc + 1
		end := start + size
		codeLen := uint64(len(contract.Code))

		var data []byte
		switch {
		case start >= codeLen:
			data = make([]byte, size)
		case end > codeLen:
			data = make([]byte, size)
			copy(data, contract.Code[start:codeLen])
		default:
			data = contract.Code[start:end]
		}

		if err := stack.Push(new(big.Int).SetBytes(data)); err != nil {
			return nil, err
		}
		*pc += size
		return nil, nil
	}
}

func makeDup(n int) executionFunc {
	return func(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
		stack.Dup(n)
		return nil, nil
	}
}

func makeSwap(n int) executionFunc {
	return func(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
		stack.Swap(n)
		return nil, nil
	}
}

func opStop(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	return nil, nil
}

func opReturn(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	offset, size := stack.Pop(), stack.Pop()
	return memory.Get(int64(offset.Uint64()), int64(size.Uint64())), nil
}

func opInvalid(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	return nil, ErrInvalidOpCode
}

func opKeccak256(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	offset, size := stack.Pop(), stack.Peek()
	data := memory.Get(int64(offset.Uint64()), int64(size.Uint64()))
	size.SetBytes(crypto.Keccak256(data))
	return nil, nil
}

func opSload(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	loc := stack.Peek()
	val, err := evm.StateDB.GetState(contract.Address, bigToHash(loc))
	if err != nil {
		return nil, err
	}
	loc.SetBytes(val[:])
	return nil, nil
}

func opSstore(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	loc, val := stack.Pop(), stack.Pop()
	if err := evm.StateDB.SetState(contract.Address, bigToHash(loc), bigToHash(val)); err != nil {
		return nil, err
	}
	return nil, nil
}

func opBalance(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	slot := stack.Peek()
	balance, err := evm.StateDB.GetBalance(bigToAddress(slot))
	if err != nil {
		return nil, err
	}
	slot.Set(balance)
	return nil, nil
}

// makeLog returns a handler for LOG0..LOG4.
func makeLog(n int) executionFunc {
	return func(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
		offset, size := stack.Pop(), stack.Pop()
		topics := make([]types.Hash, n)
		for i := 0; i < n; i++ {
			topics[i] = bigToHash(stack.Pop())
		}
		data := memory.Get(int64(offset.Uint64()), int64(size.Uint64()))
		evm.StateDB.AddLog(&types.Log{Address: contract.Address, Topics: topics, Data: data})
		return nil, nil
	}
}

// opCall implements CALL.
// Stack: gas, addr, value, argsOffset, argsLength, retOffset, retLength.
func opCall(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	gasVal := stack.Pop()
	addr := bigToAddress(stack.Pop())
	value := stack.Pop()
	inOffset, inSize := stack.Pop(), stack.Pop()
	retOffset, retSize := stack.Pop(), stack.Pop()

	args := memory.Get(int64(inOffset.Uint64()), int64(inSize.Uint64()))

	callGas := gasVal.Uint64()
	if callGas > contract.Gas {
		callGas = contract.Gas
	}
	contract.Gas -= callGas
	if value.Sign() != 0 {
		// The stipend rides for free on top of the requested gas; the
		// parent already paid for it via the value-transfer surcharge.
		callGas += GasCallStipend
	}

	ret, returnGas, err := evm.Call(contract.Address, addr, args, callGas, value)
	if err != nil && !IsVMError(err) {
		return nil, err
	}
	contract.Gas += returnGas
	evm.returnData = ret
	copyCallResult(memory, retOffset.Uint64(), retSize.Uint64(), ret)
	return nil, stack.Push(successFlag(err))
}

// opCallCode implements CALLCODE: runs the callee's code against the
// caller's own storage and address.
func opCallCode(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	gasVal := stack.Pop()
	addr := bigToAddress(stack.Pop())
	value := stack.Pop()
	inOffset, inSize := stack.Pop(), stack.Pop()
	retOffset, retSize := stack.Pop(), stack.Pop()

	args := memory.Get(int64(inOffset.Uint64()), int64(inSize.Uint64()))

	callGas := gasVal.Uint64()
	if callGas > contract.Gas {
		callGas = contract.Gas
	}
	contract.Gas -= callGas
	if value.Sign() != 0 {
		callGas += GasCallStipend
	}

	ret, returnGas, err := evm.CallCode(contract.Address, addr, args, callGas, value)
	if err != nil && !IsVMError(err) {
		return nil, err
	}
	contract.Gas += returnGas
	evm.returnData = ret
	copyCallResult(memory, retOffset.Uint64(), retSize.Uint64(), ret)
	return nil, stack.Push(successFlag(err))
}

// opDelegateCall implements DELEGATECALL (Homestead): like CALLCODE but
// preserves the original caller and call value.
func opDelegateCall(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	gasVal := stack.Pop()
	addr := bigToAddress(stack.Pop())
	inOffset, inSize := stack.Pop(), stack.Pop()
	retOffset, retSize := stack.Pop(), stack.Pop()

	args := memory.Get(int64(inOffset.Uint64()), int64(inSize.Uint64()))

	callGas := gasVal.Uint64()
	if callGas > contract.Gas {
		callGas = contract.Gas
	}
	contract.Gas -= callGas

	ret, returnGas, err := evm.DelegateCall(contract.CallerAddress, contract.Value, addr, args, callGas)
	if err != nil && !IsVMError(err) {
		return nil, err
	}
	contract.Gas += returnGas
	evm.returnData = ret
	copyCallResult(memory, retOffset.Uint64(), retSize.Uint64(), ret)
	return nil, stack.Push(successFlag(err))
}

func copyCallResult(memory *Memory, retOffset, retSize uint64, ret []byte) {
	if retSize == 0 || len(ret) == 0 {
		return
	}
	n := retSize
	if uint64(len(ret)) < n {
		n = uint64(len(ret))
	}
	memory.Set(retOffset, n, ret[:n])
}

func successFlag(err error) *big.Int {
	if err != nil {
		return new(big.Int)
	}
	return big.NewInt(1)
}

// opCreate implements CREATE.
// Stack: value, offset, length. Pushes the new contract address, or 0 on
// failure.
func opCreate(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	value := stack.Pop()
	offset, size := stack.Pop(), stack.Pop()
	initCode := memory.Get(int64(offset.Uint64()), int64(size.Uint64()))

	// Pre-EIP-150 semantics: the init frame gets everything the creator
	// has left.
	callGas := contract.Gas
	contract.Gas -= callGas

	ret, addr, returnGas, err := evm.Create(contract.Address, initCode, callGas, value)
	if err != nil && !IsVMError(err) {
		return nil, err
	}
	contract.Gas += returnGas
	evm.returnData = ret

	if err != nil {
		return nil, stack.Push(new(big.Int))
	}
	return nil, stack.Push(new(big.Int).SetBytes(addr[:]))
}

func opExtcodesize(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	slot := stack.Peek()
	size, err := evm.StateDB.GetCodeSize(bigToAddress(slot))
	if err != nil {
		return nil, err
	}
	slot.SetUint64(uint64(size))
	return nil, nil
}

func opExtcodecopy(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	addrVal := stack.Pop()
	memOffset, codeOffset, length := stack.Pop(), stack.Pop(), stack.Pop()
	l := length.Uint64()
	if l == 0 {
		return nil, nil
	}
	code, err := evm.StateDB.GetCode(bigToAddress(addrVal))
	if err != nil {
		return nil, err
	}
	data := make([]byte, l)
	if codeOffset.IsUint64() {
		if cOff := codeOffset.Uint64(); cOff < uint64(len(code)) {
			copy(data, code[cOff:])
		}
	}
	memory.Set(memOffset.Uint64(), l, data)
	return nil, nil
}

func opBlockhash(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	num := stack.Peek()
	num64 := num.Uint64()

	var upper uint64
	if evm.Context.BlockNumber != nil {
		upper = evm.Context.BlockNumber.Uint64()
	}
	var lower uint64
	if upper > 256 {
		lower = upper - 256
	}
	if num64 >= lower && num64 < upper && evm.Context.GetHash != nil {
		hash := evm.Context.GetHash(num64)
		num.SetBytes(hash[:])
	} else {
		num.SetUint64(0)
	}
	return nil, nil
}

// opSelfdestruct implements SELFDESTRUCT: transfers the account's full
// balance to the beneficiary and marks the account for deferred deletion at
// the end of the enclosing transaction.
func opSelfdestruct(pc *uint64, evm *EVM, contract *Contract, memory *Memory, stack *Stack) ([]byte, error) {
	beneficiary := bigToAddress(stack.Pop())

	balance, err := evm.StateDB.GetBalance(contract.Address)
	if err != nil {
		return nil, err
	}
	if balance.Sign() > 0 {
		if err := evm.StateDB.AddBalance(beneficiary, balance); err != nil {
			return nil, err
		}
		if err := evm.StateDB.SubBalance(contract.Address, balance); err != nil {
			return nil, err
		}
	}
	evm.StateDB.Suicide(contract.Address)
	return nil, nil
}
