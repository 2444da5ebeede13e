package vm

import (
	"errors"
	"math/big"

	"github.com/hayesgm/exthereum/core/types"
	"github.com/hayesgm/exthereum/crypto"
	"github.com/hayesgm/exthereum/rlp"
)

var (
	ErrOutOfGas             = errors.New("vm: out of gas")
	ErrStackOverflow        = errors.New("vm: stack overflow")
	ErrStackUnderflow       = errors.New("vm: stack underflow")
	ErrInvalidJump          = errors.New("vm: invalid jump destination")
	ErrInvalidOpCode        = errors.New("vm: invalid opcode")
	ErrMaxCallDepthExceeded = errors.New("vm: max call depth exceeded")
	ErrInsufficientBalance  = errors.New("vm: insufficient balance for transfer")
	ErrContractCodeTooLarge = errors.New("vm: contract creation code storage out of gas")
	ErrAddressCollision     = errors.New("vm: contract address collision")
)

// IsVMError reports whether err belongs to the interpreter's own halt
// taxonomy: exceptional halts and call failures that a parent frame absorbs
// (as a 0 pushed on its stack, or a failed receipt at the top level).
// Anything else that surfaces from a frame is a fault of the backing state
// store and must propagate to the executor's caller untranslated.
func IsVMError(err error) bool {
	switch err {
	case ErrOutOfGas, ErrStackOverflow, ErrStackUnderflow, ErrInvalidJump,
		ErrInvalidOpCode, ErrMaxCallDepthExceeded, ErrInsufficientBalance,
		ErrContractCodeTooLarge, ErrAddressCollision:
		return true
	}
	return false
}

// maxCallDepth is the 1024-call-frame recursion limit shared by CALL,
// CALLCODE, DELEGATECALL and CREATE.
const maxCallDepth = 1024

// maxCodeSize bounds the size of code that CREATE is allowed to deploy
// (introduced alongside Homestead's CREATE out-of-gas-on-failure rule).
const maxCodeSize = 24576

// maxMemorySize caps a single frame's memory so the quadratic term of the
// expansion cost never overflows 64-bit gas arithmetic; any expansion this
// large could not be paid for anyway.
const maxMemorySize = 0x1FFFFFFFE0

// GetHashFunc returns the hash of the ancestor block at the given number,
// or the zero hash if it isn't available (farther back than 256 blocks).
type GetHashFunc func(number uint64) types.Hash

// BlockContext carries block-level values that don't change across the
// message calls executed within one block.
type BlockContext struct {
	GetHash     GetHashFunc
	Coinbase    types.Address
	BlockNumber *big.Int
	Time        uint64
	Difficulty  *big.Int
	GasLimit    uint64
}

// TxContext carries values specific to the currently executing transaction.
type TxContext struct {
	Origin   types.Address
	GasPrice *big.Int
}

// StateDB is the set of state accessors the interpreter needs. Unlike a
// purely in-memory implementation, every accessor here can fail (the
// backing trie may need to fetch nodes it doesn't have cached), so each
// method returns an error that the interpreter must propagate as a halt.
type StateDB interface {
	CreateAccount(addr types.Address) error
	Exist(addr types.Address) (bool, error)
	Empty(addr types.Address) (bool, error)

	GetBalance(addr types.Address) (*big.Int, error)
	AddBalance(addr types.Address, amount *big.Int) error
	SubBalance(addr types.Address, amount *big.Int) error

	GetNonce(addr types.Address) (uint64, error)
	SetNonce(addr types.Address, nonce uint64) error

	GetCodeHash(addr types.Address) (types.Hash, error)
	GetCode(addr types.Address) ([]byte, error)
	GetCodeSize(addr types.Address) (int, error)
	SetCode(addr types.Address, code []byte) error

	GetState(addr types.Address, slot types.Hash) (types.Hash, error)
	SetState(addr types.Address, slot, value types.Hash) error

	Suicide(addr types.Address)
	HasSuicided(addr types.Address) bool

	AddLog(log *types.Log)
	Logs() []*types.Log

	AddRefund(gas uint64)
	SubRefund(gas uint64)
	GetRefund() uint64

	Snapshot() int
	RevertToSnapshot(id int) error
}

// Config holds interpreter-wide toggles.
type Config struct {
	JumpTable JumpTable
}

// EVM executes a single transaction's worth of message calls against a
// StateDB, tracking call depth and the most recent call's return data.
type EVM struct {
	Context   BlockContext
	TxContext TxContext
	StateDB   StateDB
	Config    Config

	depth      int
	returnData []byte
	abort      bool
}

// NewEVM returns an EVM ready to execute calls within blockCtx/txCtx against
// statedb.
func NewEVM(blockCtx BlockContext, txCtx TxContext, statedb StateDB) *EVM {
	return &EVM{
		Context:   blockCtx,
		TxContext: txCtx,
		StateDB:   statedb,
		Config:    Config{JumpTable: NewHomesteadJumpTable()},
	}
}

// Cancel aborts any in-flight interpreter loop at its next instruction
// boundary.
func (evm *EVM) Cancel() { evm.abort = true }

// run executes contract's code starting at pc 0 with the given input,
// returning the returned data (for RETURN) or an error (including, notably,
// nil for normal STOP/out-of-code termination).
func (evm *EVM) run(contract *Contract, input []byte) ([]byte, error) {
	contract.Input = input

	var (
		pc     = uint64(0)
		stack  = NewStack()
		memory = NewMemory()
		table  = evm.Config.JumpTable
	)

	for {
		if evm.abort {
			return nil, ErrExecutionAborted
		}

		op := contract.GetOp(pc)
		operation := table[op]
		if operation == nil {
			return nil, ErrInvalidOpCode
		}

		if stack.Len() < operation.minStack {
			return nil, ErrStackUnderflow
		}
		if stack.Len() > operation.maxStack {
			return nil, ErrStackOverflow
		}

		var memorySize uint64
		if operation.memorySize != nil {
			size := operation.memorySize(stack)
			if size > maxMemorySize {
				return nil, ErrOutOfGas
			}
			words := (size + 31) / 32
			memorySize = words * 32
			if size > 0 && memorySize < size {
				return nil, ErrOutOfGas
			}
		}

		cost := operation.constantGas
		if !contract.UseGas(cost) {
			return nil, ErrOutOfGas
		}

		if operation.dynamicGas != nil {
			dynCost, err := operation.dynamicGas(evm, contract, stack, memory, memorySize)
			if err != nil {
				return nil, err
			}
			if !contract.UseGas(dynCost) {
				return nil, ErrOutOfGas
			}
		}

		if memorySize > uint64(memory.Len()) {
			memory.Resize(memorySize)
		}

		ret, err := operation.execute(&pc, evm, contract, memory, stack)
		if err != nil {
			return nil, err
		}

		if operation.halts {
			return ret, nil
		}
		if !operation.jumps {
			pc++
		}
	}
}

// ErrExecutionAborted is returned when Cancel has been called mid-run.
var ErrExecutionAborted = errors.New("vm: execution aborted")

// Call executes a message call from caller to addr, optionally transferring
// value, with args as calldata. It is the entry point for both top-level
// transaction execution and the CALL opcode.
func (evm *EVM) Call(caller, addr types.Address, input []byte, gas uint64, value *big.Int) ([]byte, uint64, error) {
	if evm.depth > maxCallDepth {
		return nil, gas, ErrMaxCallDepthExceeded
	}
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() != 0 {
		balance, err := evm.StateDB.GetBalance(caller)
		if err != nil {
			return nil, gas, err
		}
		if balance.Cmp(value) < 0 {
			return nil, gas, ErrInsufficientBalance
		}
	}

	snapshot := evm.StateDB.Snapshot()

	exists, err := evm.StateDB.Exist(addr)
	if err != nil {
		return nil, gas, err
	}
	if !exists {
		if err := evm.StateDB.CreateAccount(addr); err != nil {
			return nil, gas, err
		}
	}

	if err := evm.transfer(caller, addr, value); err != nil {
		return nil, gas, err
	}

	if IsPrecompile(addr) {
		ret, remainingGas, err := runPrecompile(addr, input, gas)
		if err != nil {
			if revertErr := evm.StateDB.RevertToSnapshot(snapshot); revertErr != nil {
				return nil, remainingGas, revertErr
			}
			return nil, remainingGas, err
		}
		return ret, remainingGas, nil
	}

	code, err := evm.StateDB.GetCode(addr)
	if err != nil {
		return nil, gas, err
	}
	codeHash, err := evm.StateDB.GetCodeHash(addr)
	if err != nil {
		return nil, gas, err
	}

	contract := NewContract(caller, addr, value, gas)
	contract.Code = code
	contract.CodeHash = codeHash

	evm.depth++
	ret, err := evm.run(contract, input)
	evm.depth--

	if err != nil {
		if revertErr := evm.StateDB.RevertToSnapshot(snapshot); revertErr != nil {
			return nil, 0, revertErr
		}
		// An exceptional halt forfeits everything the frame had left.
		return nil, 0, err
	}
	return ret, contract.Gas, nil
}

// CallCode runs addr's code in the context of caller's own storage and
// address: only the code is borrowed, everything else about the call
// frame belongs to caller.
func (evm *EVM) CallCode(caller, addr types.Address, input []byte, gas uint64, value *big.Int) ([]byte, uint64, error) {
	if evm.depth > maxCallDepth {
		return nil, gas, ErrMaxCallDepthExceeded
	}
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() != 0 {
		balance, err := evm.StateDB.GetBalance(caller)
		if err != nil {
			return nil, gas, err
		}
		if balance.Cmp(value) < 0 {
			return nil, gas, ErrInsufficientBalance
		}
	}

	snapshot := evm.StateDB.Snapshot()

	if IsPrecompile(addr) {
		ret, remainingGas, err := runPrecompile(addr, input, gas)
		if err != nil {
			if revertErr := evm.StateDB.RevertToSnapshot(snapshot); revertErr != nil {
				return nil, remainingGas, revertErr
			}
			return nil, remainingGas, err
		}
		return ret, remainingGas, nil
	}

	code, err := evm.StateDB.GetCode(addr)
	if err != nil {
		return nil, gas, err
	}
	codeHash, err := evm.StateDB.GetCodeHash(addr)
	if err != nil {
		return nil, gas, err
	}

	contract := NewContract(caller, caller, value, gas)
	contract.Code = code
	contract.CodeHash = codeHash

	evm.depth++
	ret, err := evm.run(contract, input)
	evm.depth--

	if err != nil {
		if revertErr := evm.StateDB.RevertToSnapshot(snapshot); revertErr != nil {
			return nil, 0, revertErr
		}
		return nil, 0, err
	}
	return ret, contract.Gas, nil
}

// DelegateCall runs addr's code in the context of the ORIGINAL caller
// and call value (the frame two levels up), preserving msg.sender and
// msg.value across the delegation. This is Homestead's one addition to
// the Frontier call family.
func (evm *EVM) DelegateCall(originalCaller types.Address, originalValue *big.Int, addr types.Address, input []byte, gas uint64) ([]byte, uint64, error) {
	if evm.depth > maxCallDepth {
		return nil, gas, ErrMaxCallDepthExceeded
	}

	snapshot := evm.StateDB.Snapshot()

	if IsPrecompile(addr) {
		ret, remainingGas, err := runPrecompile(addr, input, gas)
		if err != nil {
			if revertErr := evm.StateDB.RevertToSnapshot(snapshot); revertErr != nil {
				return nil, remainingGas, revertErr
			}
			return nil, remainingGas, err
		}
		return ret, remainingGas, nil
	}

	code, err := evm.StateDB.GetCode(addr)
	if err != nil {
		return nil, gas, err
	}
	codeHash, err := evm.StateDB.GetCodeHash(addr)
	if err != nil {
		return nil, gas, err
	}

	contract := NewContract(originalCaller, originalCaller, originalValue, gas)
	contract.Code = code
	contract.CodeHash = codeHash

	evm.depth++
	ret, err := evm.run(contract, input)
	evm.depth--

	if err != nil {
		if revertErr := evm.StateDB.RevertToSnapshot(snapshot); revertErr != nil {
			return nil, 0, revertErr
		}
		return nil, 0, err
	}
	return ret, contract.Gas, nil
}

// Create executes a CREATE: it derives the new contract's address from the
// creator's address and nonce, runs initCode as its constructor, and
// stores whatever it returns as the deployed code.
func (evm *EVM) Create(caller types.Address, initCode []byte, gas uint64, value *big.Int) ([]byte, types.Address, uint64, error) {
	nonce, err := evm.StateDB.GetNonce(caller)
	if err != nil {
		return nil, types.Address{}, gas, err
	}
	if err := evm.StateDB.SetNonce(caller, nonce+1); err != nil {
		return nil, types.Address{}, gas, err
	}

	addr := createAddress(caller, nonce)
	return evm.create(caller, initCode, gas, value, addr)
}

func (evm *EVM) create(caller types.Address, initCode []byte, gas uint64, value *big.Int, addr types.Address) ([]byte, types.Address, uint64, error) {
	if evm.depth > maxCallDepth {
		return nil, addr, gas, ErrMaxCallDepthExceeded
	}
	if value == nil {
		value = new(big.Int)
	}
	if value.Sign() != 0 {
		balance, err := evm.StateDB.GetBalance(caller)
		if err != nil {
			return nil, addr, gas, err
		}
		if balance.Cmp(value) < 0 {
			return nil, addr, gas, ErrInsufficientBalance
		}
	}

	exists, err := evm.StateDB.Exist(addr)
	if err != nil {
		return nil, addr, gas, err
	}
	if exists {
		existingCode, err := evm.StateDB.GetCode(addr)
		if err != nil {
			return nil, addr, gas, err
		}
		existingNonce, err := evm.StateDB.GetNonce(addr)
		if err != nil {
			return nil, addr, gas, err
		}
		if len(existingCode) > 0 || existingNonce > 0 {
			return nil, addr, gas, ErrAddressCollision
		}
	}

	snapshot := evm.StateDB.Snapshot()

	if err := evm.StateDB.CreateAccount(addr); err != nil {
		return nil, addr, gas, err
	}
	if err := evm.transfer(caller, addr, value); err != nil {
		return nil, addr, gas, err
	}

	contract := NewContract(caller, addr, value, gas)
	contract.Code = initCode

	evm.depth++
	ret, err := evm.run(contract, nil)
	evm.depth--

	if err != nil {
		if revertErr := evm.StateDB.RevertToSnapshot(snapshot); revertErr != nil {
			return nil, addr, 0, revertErr
		}
		return nil, addr, 0, err
	}

	if len(ret) > maxCodeSize {
		if revertErr := evm.StateDB.RevertToSnapshot(snapshot); revertErr != nil {
			return nil, addr, 0, revertErr
		}
		return nil, addr, 0, ErrContractCodeTooLarge
	}

	storeCost := uint64(len(ret)) * GasCodeDeposit
	if !contract.UseGas(storeCost) {
		if revertErr := evm.StateDB.RevertToSnapshot(snapshot); revertErr != nil {
			return nil, addr, 0, revertErr
		}
		return nil, addr, 0, ErrOutOfGas
	}

	if err := evm.StateDB.SetCode(addr, ret); err != nil {
		return nil, addr, contract.Gas, err
	}

	return ret, addr, contract.Gas, nil
}

// transfer moves value from sender to recipient, a no-op when value is
// zero (so it never needs to touch a non-existent zero-value recipient).
func (evm *EVM) transfer(sender, recipient types.Address, value *big.Int) error {
	if value.Sign() == 0 {
		return nil
	}
	if err := evm.StateDB.SubBalance(sender, value); err != nil {
		return err
	}
	return evm.StateDB.AddBalance(recipient, value)
}

// createAddress derives a CREATE address as keccak256(rlp([sender, nonce]))[12:],
// the Yellow Paper's address-derivation function.
func createAddress(sender types.Address, nonce uint64) types.Address {
	enc, err := rlp.EncodeToBytes([]interface{}{sender.Bytes(), nonce})
	if err != nil {
		panic(err)
	}
	hash := crypto.Keccak256(enc)
	return types.BytesToAddress(hash[12:])
}
