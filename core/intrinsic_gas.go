package core

import "github.com/hayesgm/exthereum/core/vm"

// IntrinsicGas computes the gas a transaction must pay before the EVM runs
// a single instruction: the flat per-transaction base cost, a per-byte
// calldata/init-code cost (zero bytes are cheaper than non-zero ones), and
// a surcharge for contract-creation transactions.
func IntrinsicGas(data []byte, isCreate bool) uint64 {
	gas := vm.GasTxBase
	if isCreate {
		gas += vm.GasTxCreate
	}
	for _, b := range data {
		if b == 0 {
			gas += vm.GasTxDataZero
		} else {
			gas += vm.GasTxDataNonZero
		}
	}
	return gas
}
