package core

import "fmt"

// GasPool tracks the gas still available in the block being assembled.
// Each transaction draws down the pool by its gas limit before execution.
// A transaction rejected before execution (intrinsic gas or balance check)
// gives its gas back; once a transaction executes nothing is returned to the
// pool: unused gas is refunded to the sender in wei, not handed back to the
// next transaction.
type GasPool uint64

// AddGas makes gas available, returning the pool for chaining.
func (gp *GasPool) AddGas(gas uint64) *GasPool {
	*gp += GasPool(gas)
	return gp
}

// SubGas deducts gas from the pool, failing if it would go negative.
func (gp *GasPool) SubGas(gas uint64) error {
	if uint64(*gp) < gas {
		return fmt.Errorf("%w: have %d, want %d", ErrBlockGasLimitReached, uint64(*gp), gas)
	}
	*gp -= GasPool(gas)
	return nil
}

// Gas returns the amount of gas remaining in the pool.
func (gp *GasPool) Gas() uint64 { return uint64(*gp) }
