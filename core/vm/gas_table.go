package vm

// gasExp charges GasExpByte per significant byte of the exponent, on top of
// EXP's constant Ghigh cost.
func gasExp(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	exponent := stack.Back(1)
	byteLen := (exponent.BitLen() + 7) / 8
	return uint64(byteLen) * GasExpByte, nil
}

// gasCopyWords charges GasCopy per 32-byte word copied, on top of memory
// expansion.
func gasCopyWords(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	memCost, err := gasMemExpansion(evm, contract, stack, mem, memorySize)
	if err != nil {
		return 0, err
	}
	length := stack.Back(2).Uint64()
	words := (length + 31) / 32
	return memCost + words*GasCopy, nil
}

// gasExtCodeCopy is gasCopyWords shifted down one slot for EXTCODECOPY's
// leading address argument.
func gasExtCodeCopy(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	memCost, err := gasMemExpansion(evm, contract, stack, mem, memorySize)
	if err != nil {
		return 0, err
	}
	length := stack.Back(3).Uint64()
	words := (length + 31) / 32
	return memCost + words*GasCopy, nil
}

// gasKeccak256 charges GasKeccak256Word per word hashed, on top of memory
// expansion.
func gasKeccak256(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	memCost, err := gasMemExpansion(evm, contract, stack, mem, memorySize)
	if err != nil {
		return 0, err
	}
	length := stack.Back(1).Uint64()
	words := (length + 31) / 32
	return memCost + words*GasKeccak256Word, nil
}

// gasLog returns a dynamicGasFunc for LOGn: n*GasLogTopic plus GasLogData
// per byte logged, plus memory expansion.
func gasLog(n int) dynamicGasFunc {
	return func(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
		memCost, err := gasMemExpansion(evm, contract, stack, mem, memorySize)
		if err != nil {
			return 0, err
		}
		length := stack.Back(1).Uint64()
		return memCost + uint64(n)*GasLogTopic + length*GasLogData, nil
	}
}

// gasSstore implements the Homestead SSTORE rule: writing a zero slot to a
// non-zero value costs GasSstoreSet; any other write costs GasSstoreReset;
// clearing a non-zero slot to zero additionally grants a refund.
func gasSstore(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	loc := stack.Back(0)
	val := stack.Back(1)

	current, err := evm.StateDB.GetState(contract.Address, bigToHash(loc))
	if err != nil {
		return 0, err
	}
	isCurrentZero := current.IsZero()
	isNewZero := val.Sign() == 0

	if isCurrentZero && !isNewZero {
		return GasSstoreSet, nil
	}
	if !isCurrentZero && isNewZero {
		evm.StateDB.AddRefund(GasSstoreRefund)
	}
	return GasSstoreReset, nil
}

// gasCallLike charges the value-transfer and new-account surcharges for CALL
// (gasCall) and CALLCODE (gasCallCode) on top of memory expansion. The
// new-account surcharge applies only to a value-bearing CALL whose target
// does not exist; CALLCODE never pays it (it never creates anything), which
// isCallCode selects below.
func gasCallLike(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64, isCallCode bool) (uint64, error) {
	memCost, err := gasMemExpansion(evm, contract, stack, mem, memorySize)
	if err != nil {
		return 0, err
	}
	value := stack.Back(2)
	var cost uint64 = memCost
	if value.Sign() != 0 {
		cost += GasCallValue
	}
	if !isCallCode && value.Sign() != 0 {
		addr := bigToAddress(stack.Back(1))
		exists, err := evm.StateDB.Exist(addr)
		if err != nil {
			return 0, err
		}
		if !exists {
			cost += GasNewAccount
		}
	}
	return cost, nil
}

func gasCall(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return gasCallLike(evm, contract, stack, mem, memorySize, false)
}

func gasCallCode(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return gasCallLike(evm, contract, stack, mem, memorySize, true)
}

// gasSelfdestruct grants the Homestead-era refund for destroying an account
// (removed by later forks, but present through Homestead).
func gasSelfdestruct(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	if !evm.StateDB.HasSuicided(contract.Address) {
		evm.StateDB.AddRefund(GasSelfdestructRefund)
	}
	return 0, nil
}
