package core

import (
	"math/big"

	"github.com/hayesgm/exthereum/core/state"
	"github.com/hayesgm/exthereum/core/types"
	"github.com/hayesgm/exthereum/core/vm"
)

// GenesisDifficulty is D0, the difficulty floor used both for the literal
// genesis block and as the lower clamp on every subsequent block's
// derived difficulty.
var GenesisDifficulty = big.NewInt(131072)

// HomesteadBlock is the block number at which the Homestead difficulty
// and CREATE/DELEGATECALL rules take effect.
var HomesteadBlock = big.NewInt(1150000)

var (
	big1          = big.NewInt(1)
	big2          = big.NewInt(2)
	big10         = big.NewInt(10)
	big2048       = big.NewInt(2048)
	bigMinus99    = big.NewInt(-99)
	expDiffPeriod = big.NewInt(100000)
)

// CalcDifficulty derives the difficulty of a block built on top of parent,
// given the candidate block's number and timestamp. Pre-Homestead blocks
// use the simple +1/-1 rule keyed on a 13-second target; Homestead
// refines it to scale with how far the timestamp drifted, clamped to -99.
// Both add an exponential "ice age" term and clamp the result to never
// fall below GenesisDifficulty.
func CalcDifficulty(number *big.Int, time, parentTime uint64, parentDifficulty *big.Int) *big.Int {
	if number.Sign() == 0 {
		return new(big.Int).Set(GenesisDifficulty)
	}

	x := new(big.Int).Div(parentDifficulty, big2048)

	var sign *big.Int
	if number.Cmp(HomesteadBlock) < 0 {
		if time < parentTime+13 {
			sign = big1
		} else {
			sign = big.NewInt(-1)
		}
	} else {
		elapsed := new(big.Int).SetUint64(time - parentTime)
		sign = new(big.Int).Sub(big1, new(big.Int).Div(elapsed, big10))
		if sign.Cmp(bigMinus99) < 0 {
			sign = bigMinus99
		}
	}
	x.Mul(x, sign)

	diff := new(big.Int).Add(parentDifficulty, x)

	periodCount := new(big.Int).Div(number, expDiffPeriod)
	if periodCount.Cmp(big2) > 0 {
		exp := new(big.Int).Sub(periodCount, big2)
		ice := new(big.Int).Exp(big2, exp, nil)
		diff.Add(diff, ice)
	}

	if diff.Cmp(GenesisDifficulty) < 0 {
		diff = new(big.Int).Set(GenesisDifficulty)
	}
	return diff
}

// minGasLimit is the protocol-wide floor below which a gas limit may never
// drop, regardless of the +-1/1024 adjustment window.
const minGasLimit = 125000

// CalcGasLimit derives a child gas limit within +-1/1024 of the parent's,
// clamped so it never drops below minGasLimit. desired expresses which way
// the caller (e.g. a miner) wants to move the limit; it is clamped to the
// legal window rather than rejected.
func CalcGasLimit(parentGasLimit, desired uint64) uint64 {
	delta := parentGasLimit/1024 + 1
	limit := desired
	if limit > parentGasLimit+delta-1 {
		limit = parentGasLimit + delta - 1
	}
	if limit < parentGasLimit-delta+1 {
		limit = parentGasLimit - delta + 1
	}
	if limit < minGasLimit {
		limit = minGasLimit
	}
	return limit
}

// ValidateGasLimit reports whether limit is a legal child of parentGasLimit:
// within the +-1/1024 window and above the protocol floor.
func ValidateGasLimit(parentGasLimit, limit uint64) error {
	delta := parentGasLimit / 1024
	if limit > parentGasLimit+delta || (parentGasLimit > delta && limit < parentGasLimit-delta) {
		return ErrInvalidGasLimit
	}
	if limit <= minGasLimit {
		return ErrInvalidGasLimit
	}
	return nil
}

// AddTransactionsToBlock applies txs sequentially against statedb, threading
// the resulting state through each one, then assembles a header/body pair
// whose TxHash/ReceiptHash/Root/Bloom/GasUsed reflect the outcome. It is the
// top-level entry point of block production: the header passed in supplies
// every field the executor itself can't derive (parent linkage, difficulty,
// gas limit, coinbase, timestamp).
func AddTransactionsToBlock(header *types.Header, txs []*types.Transaction, uncles []*types.Header, statedb *state.StateDB, getHash vm.GetHashFunc) (*types.Block, []*types.Receipt, error) {
	gp := new(GasPool).AddGas(header.GasLimit)

	blockCtx := vm.BlockContext{
		GetHash:     getHash,
		Coinbase:    header.Coinbase,
		BlockNumber: new(big.Int).Set(header.Number),
		Time:        header.Time,
		Difficulty:  new(big.Int).Set(header.Difficulty),
		GasLimit:    header.GasLimit,
	}

	receipts := make([]*types.Receipt, 0, len(txs))
	var cumulativeGasUsed uint64
	var allLogs []*types.Log

	for _, tx := range txs {
		sender, err := tx.Sender()
		if err != nil {
			return nil, nil, err
		}
		txCtx := vm.TxContext{Origin: sender, GasPrice: tx.GasPrice}
		evm := vm.NewEVM(blockCtx, txCtx, statedb)

		receipt, err := ApplyTransaction(evm, statedb, tx, gp)
		if err != nil {
			return nil, nil, err
		}
		cumulativeGasUsed += receipt.GasUsed
		receipt.CumulativeGasUsed = cumulativeGasUsed
		receipts = append(receipts, receipt)
		allLogs = append(allLogs, receipt.Logs...)
	}

	stateRoot, err := statedb.Commit()
	if err != nil {
		return nil, nil, err
	}

	txRoot, err := DeriveListRoot(txs)
	if err != nil {
		return nil, nil, err
	}
	receiptRoot, err := DeriveListRoot(receipts)
	if err != nil {
		return nil, nil, err
	}
	uncleRoot, err := DeriveListRoot(uncles)
	if err != nil {
		return nil, nil, err
	}

	header.Root = stateRoot
	header.TxHash = txRoot
	header.ReceiptHash = receiptRoot
	header.UncleHash = uncleRoot
	header.GasUsed = cumulativeGasUsed
	header.Bloom = types.LogsBloom(allLogs)

	block := types.NewBlock(header, &types.Body{Transactions: txs, Uncles: uncles})

	blockHash := block.Hash()
	types.DeriveReceiptFields(receipts, blockHash, header.Number.Uint64(), txs)

	return block, receipts, nil
}
