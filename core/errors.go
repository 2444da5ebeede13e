// Package core glues together the trie-backed account store and the VM into
// a transaction executor, and assembles blocks out of the results: the
// state-transition function the rest of the engine is built to support.
package core

import "errors"

// Transaction-level failures are rejected before the EVM ever runs; no
// state beyond the gas pool is touched.
var (
	ErrNonceTooLow          = errors.New("core: nonce too low")
	ErrNonceTooHigh         = errors.New("core: nonce too high")
	ErrInsufficientBalance  = errors.New("core: insufficient balance for gas * price + value")
	ErrIntrinsicGasTooLow   = errors.New("core: intrinsic gas too low")
	ErrGasLimitExceeded     = errors.New("core: transaction gas limit exceeds block gas limit")
	ErrBlockGasLimitReached = errors.New("core: block gas limit reached")
	ErrInvalidSender        = errors.New("core: invalid transaction signature")
)

// Block-level faults surface from header validation and block-tree
// maintenance.
var (
	ErrInvalidGasLimit   = errors.New("core: gas limit out of the parent's +-1/1024 bound")
	ErrInvalidDifficulty = errors.New("core: difficulty does not match the derived value")
	ErrInvalidStateRoot  = errors.New("core: post-state root does not match header")
	ErrNoPath            = errors.New("core: block's parent is not known to the tree")
)
