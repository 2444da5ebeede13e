package vm

import (
	"crypto/sha256"

	"golang.org/x/crypto/ripemd160"

	"github.com/hayesgm/exthereum/core/types"
	"github.com/hayesgm/exthereum/crypto"
)

// PrecompiledContract is the native implementation backing a reserved
// low-address account: it computes its own gas requirement from the input
// and never touches the StateDB or substate directly.
type PrecompiledContract interface {
	RequiredGas(input []byte) uint64
	Run(input []byte) ([]byte, error)
}

// PrecompiledContracts is the Frontier/Homestead-era precompile set:
// addresses 0x01-0x04. Later forks add bigModExp (0x05) and the bn256
// curve operations; those are out of scope here.
var PrecompiledContracts = map[types.Address]PrecompiledContract{
	types.BytesToAddress([]byte{1}): &ecrecoverContract{},
	types.BytesToAddress([]byte{2}): &sha256Contract{},
	types.BytesToAddress([]byte{3}): &ripemd160Contract{},
	types.BytesToAddress([]byte{4}): &identityContract{},
}

// IsPrecompile reports whether addr names one of the reserved precompile
// addresses.
func IsPrecompile(addr types.Address) bool {
	_, ok := PrecompiledContracts[addr]
	return ok
}

// wordCount returns the number of 32-byte words needed to hold n bytes.
func wordCount(n int) uint64 {
	return (uint64(n) + 31) / 32
}

// runPrecompile dispatches to the precompile at addr, charging its required
// gas against the gas supplied to the call. A malformed input never returns
// an error: per the Yellow Paper, precompiles that can't make sense of
// their input return empty output rather than failing the call.
func runPrecompile(addr types.Address, input []byte, gas uint64) ([]byte, uint64, error) {
	p := PrecompiledContracts[addr]
	cost := p.RequiredGas(input)
	if gas < cost {
		return nil, 0, ErrOutOfGas
	}
	ret, err := p.Run(input)
	if err != nil {
		return nil, 0, err
	}
	return ret, gas - cost, nil
}

// --- ECRECOVER (0x01) ---

type ecrecoverContract struct{}

func (c *ecrecoverContract) RequiredGas(input []byte) uint64 { return 3000 }

func (c *ecrecoverContract) Run(input []byte) ([]byte, error) {
	return crypto.EcRecoverPrecompile(input), nil
}

// --- SHA256 (0x02) ---

type sha256Contract struct{}

func (c *sha256Contract) RequiredGas(input []byte) uint64 {
	return 60 + 12*wordCount(len(input))
}

func (c *sha256Contract) Run(input []byte) ([]byte, error) {
	h := sha256.Sum256(input)
	return h[:], nil
}

// --- RIPEMD160 (0x03) ---

type ripemd160Contract struct{}

func (c *ripemd160Contract) RequiredGas(input []byte) uint64 {
	return 600 + 120*wordCount(len(input))
}

func (c *ripemd160Contract) Run(input []byte) ([]byte, error) {
	h := ripemd160.New()
	h.Write(input)
	digest := h.Sum(nil)
	out := make([]byte, 32)
	copy(out[12:], digest)
	return out, nil
}

// --- IDENTITY (0x04) ---

type identityContract struct{}

func (c *identityContract) RequiredGas(input []byte) uint64 {
	return 15 + 3*wordCount(len(input))
}

func (c *identityContract) Run(input []byte) ([]byte, error) {
	out := make([]byte, len(input))
	copy(out, input)
	return out, nil
}
