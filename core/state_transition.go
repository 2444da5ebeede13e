package core

import (
	"fmt"
	"math/big"

	"github.com/hayesgm/exthereum/core/state"
	"github.com/hayesgm/exthereum/core/types"
	"github.com/hayesgm/exthereum/core/vm"
)

// ApplyTransaction runs a single transaction's worth of state transition
// against statedb through evm, drawing its gas limit from gp. It implements
// the Yellow Paper's Υ function: pre-debit, dispatch to creation or
// message-call, refund computation, beneficiary payout, and suicide
// reaping. Transaction-level failures (bad nonce, insufficient balance,
// intrinsic-gas shortfall, block-gas-limit exceeded) are returned without
// mutating statedb; once pre-debit happens, the transaction always produces
// a receipt, successful or not.
func ApplyTransaction(evm *vm.EVM, statedb *state.StateDB, tx *types.Transaction, gp *GasPool) (*types.Receipt, error) {
	from, err := tx.Sender()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSender, err)
	}

	stateNonce, err := statedb.GetNonce(from)
	if err != nil {
		return nil, err
	}
	if tx.Nonce < stateNonce {
		return nil, fmt.Errorf("%w: tx %d, state %d", ErrNonceTooLow, tx.Nonce, stateNonce)
	}
	if tx.Nonce > stateNonce {
		return nil, fmt.Errorf("%w: tx %d, state %d", ErrNonceTooHigh, tx.Nonce, stateNonce)
	}

	if err := gp.SubGas(tx.Gas); err != nil {
		return nil, err
	}

	isCreate := tx.IsContractCreation()
	igas := IntrinsicGas(tx.Data, isCreate)
	if tx.Gas < igas {
		gp.AddGas(tx.Gas)
		return nil, fmt.Errorf("%w: have %d, want %d", ErrIntrinsicGasTooLow, tx.Gas, igas)
	}

	cost := tx.Cost()
	balance, err := statedb.GetBalance(from)
	if err != nil {
		return nil, err
	}
	if balance.Cmp(cost) < 0 {
		gp.AddGas(tx.Gas)
		return nil, fmt.Errorf("%w: have %s, want %s", ErrInsufficientBalance, balance, cost)
	}

	// Pre-debit: the sender pays for the whole gas limit up front.
	prepay := new(big.Int).Mul(new(big.Int).SetUint64(tx.Gas), tx.GasPrice)
	if err := statedb.SubBalance(from, prepay); err != nil {
		return nil, err
	}

	logsBefore := len(statedb.Logs())
	gasForExecution := tx.Gas - igas

	var (
		remainingGas    uint64
		contractAddress types.Address
		execErr         error
	)
	if isCreate {
		// evm.Create derives the new address from the sender's nonce and
		// bumps it by one itself (the same bump a nested CREATE opcode
		// would apply to its caller) — incrementing it here first would
		// both double-count it and derive the address from the wrong
		// nonce.
		_, contractAddress, remainingGas, execErr = evm.Create(from, tx.Data, gasForExecution, tx.Value)
	} else {
		if err := statedb.SetNonce(from, tx.Nonce+1); err != nil {
			return nil, err
		}
		_, remainingGas, execErr = evm.Call(from, *tx.To, tx.Data, gasForExecution, tx.Value)
	}

	if execErr != nil && !vm.IsVMError(execErr) {
		// Not part of the VM's halt taxonomy: the backing store is corrupt
		// or has lost nodes. Propagate untranslated rather than folding it
		// into a failed receipt.
		return nil, execErr
	}

	failed := execErr != nil
	if failed {
		// The frame already rolled back every state change it made; per
		// the Yellow Paper, an exceptional top-level halt also forfeits
		// whatever gas it had left.
		remainingGas = 0
	}

	refundCounter, err := safeGetRefund(statedb)
	if err != nil {
		return nil, err
	}
	maxRefund := (tx.Gas - remainingGas) / 2
	refund := refundCounter
	if refund > maxRefund {
		refund = maxRefund
	}
	refund += remainingGas

	gasUsed := tx.Gas - refund

	senderRefund := new(big.Int).Mul(new(big.Int).SetUint64(refund), tx.GasPrice)
	if err := statedb.AddBalance(from, senderRefund); err != nil {
		return nil, err
	}
	beneficiaryFee := new(big.Int).Mul(new(big.Int).SetUint64(gasUsed), tx.GasPrice)
	if err := statedb.AddBalance(evm.Context.Coinbase, beneficiaryFee); err != nil {
		return nil, err
	}

	if err := statedb.ReapSuicides(); err != nil {
		return nil, err
	}

	root := statedb.IntermediateRoot()
	receipt := types.NewReceipt(root.Bytes(), failed, gasUsed)
	receipt.GasUsed = gasUsed
	receipt.TxHash = tx.Hash()
	if isCreate && !failed {
		receipt.ContractAddress = contractAddress
	}
	allLogs := statedb.Logs()
	if logsBefore <= len(allLogs) {
		receipt.Logs = allLogs[logsBefore:]
	}
	receipt.Bloom = types.LogsBloom(receipt.Logs)

	return receipt, nil
}

// safeGetRefund reads the refund counter; split out so a future StateDB
// implementation backed by a fallible store has one place to start
// returning an error from this accessor.
func safeGetRefund(statedb *state.StateDB) (uint64, error) {
	return statedb.GetRefund(), nil
}
