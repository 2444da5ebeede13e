// ECDSA signature recovery utilities for Ethereum transaction signing.
//
// Provides compact signature representation (65 bytes: R || S || V), public
// key recovery from signatures, Ethereum address derivation, and EIP-155
// chain-aware recovery.
//
// V value encoding:
//   - 0 or 1: raw recovery ID
//   - 27 or 28: Ethereum legacy (pre-EIP-155)
//   - 35 + 2*chainID or 36 + 2*chainID: EIP-155 replay-protected
//
// Signature malleability: s is normalized to the lower half of the curve
// order per EIP-2 (Homestead), preventing transaction hash malleability.
package crypto

import (
	"crypto/ecdsa"
	"errors"
	"math/big"

	"github.com/hayesgm/exthereum/core/types"
)

// CompactSignature is a 65-byte ECDSA signature: R (32) || S (32) || V (1).
type CompactSignature struct {
	R [32]byte
	S [32]byte
	V byte
}

var (
	ErrSigRecoverInvalidLength = errors.New("sig_recover: signature must be 65 bytes")
	ErrSigRecoverInvalidV      = errors.New("sig_recover: invalid V value")
	ErrSigRecoverInvalidR      = errors.New("sig_recover: R must be in [1, n-1]")
	ErrSigRecoverInvalidS      = errors.New("sig_recover: S must be in [1, n-1]")
	ErrSigRecoverMalleable     = errors.New("sig_recover: S is in upper half (malleable)")
	ErrSigRecoverHashLength    = errors.New("sig_recover: message hash must be 32 bytes")
	ErrSigRecoverFailed        = errors.New("sig_recover: public key recovery failed")
)

// ParseCompactSignature parses a 65-byte signature into a CompactSignature.
func ParseCompactSignature(sig []byte) (*CompactSignature, error) {
	if len(sig) != 65 {
		return nil, ErrSigRecoverInvalidLength
	}
	cs := &CompactSignature{V: sig[64]}
	copy(cs.R[:], sig[:32])
	copy(cs.S[:], sig[32:64])
	return cs, nil
}

// Bytes encodes the compact signature as 65 bytes: R || S || V.
func (cs *CompactSignature) Bytes() []byte {
	buf := make([]byte, 65)
	copy(buf[:32], cs.R[:])
	copy(buf[32:64], cs.S[:])
	buf[64] = cs.V
	return buf
}

func (cs *CompactSignature) RBigInt() *big.Int { return new(big.Int).SetBytes(cs.R[:]) }
func (cs *CompactSignature) SBigInt() *big.Int { return new(big.Int).SetBytes(cs.S[:]) }

// NormalizeV converts V from any Ethereum encoding to raw 0/1, returning the
// raw recovery bit and the chain ID encoded in V (zero if not EIP-155).
func NormalizeV(v *big.Int) (byte, *big.Int) {
	if v.IsInt64() {
		vUint := v.Uint64()
		if vUint == 0 || vUint == 1 {
			return byte(vUint), new(big.Int)
		}
		if vUint == 27 || vUint == 28 {
			return byte(vUint - 27), new(big.Int)
		}
	}
	// EIP-155: v = 35 + 2*chainID + recoveryBit.
	if v.Cmp(big.NewInt(35)) >= 0 {
		diff := new(big.Int).Sub(v, big.NewInt(35))
		recoveryBit := byte(new(big.Int).Mod(diff, big.NewInt(2)).Uint64())
		chainID := new(big.Int).Div(diff, big.NewInt(2))
		return recoveryBit, chainID
	}
	return 0, new(big.Int)
}

// EncodeVLegacy encodes a raw recovery bit as legacy Ethereum V (27/28).
func EncodeVLegacy(recoveryBit byte) *big.Int {
	return big.NewInt(int64(recoveryBit) + 27)
}

// EncodeVEIP155 encodes a raw recovery bit and chain ID as an EIP-155 V value.
func EncodeVEIP155(recoveryBit byte, chainID *big.Int) *big.Int {
	v := new(big.Int).Mul(chainID, big.NewInt(2))
	v.Add(v, big.NewInt(35+int64(recoveryBit)))
	return v
}

// NormalizeS reduces s to the lower half of the curve order if it is
// malleable, returning the normalized value and whether the recovery id
// must be flipped to compensate (per EIP-2 / Homestead signing rules).
func NormalizeS(s *big.Int) (*big.Int, bool) {
	if s.Cmp(secp256k1halfN) > 0 {
		return new(big.Int).Sub(secp256k1N, s), true
	}
	return new(big.Int).Set(s), false
}

// Validate checks the signature components for basic validity: nonzero R/S
// within [1, N-1], and (if homestead is true) S in the lower half of N.
func (cs *CompactSignature) Validate(homestead bool) error {
	r, s := cs.RBigInt(), cs.SBigInt()
	if r.Sign() <= 0 || r.Cmp(secp256k1N) >= 0 {
		return ErrSigRecoverInvalidR
	}
	if s.Sign() <= 0 || s.Cmp(secp256k1N) >= 0 {
		return ErrSigRecoverInvalidS
	}
	if homestead && s.Cmp(secp256k1halfN) > 0 {
		return ErrSigRecoverMalleable
	}
	return nil
}

// RecoverPublicKey recovers the uncompressed public key from a message hash
// and a compact signature whose V is already a raw 0/1 recovery id.
func RecoverPublicKey(hash []byte, cs *CompactSignature) (*ecdsa.PublicKey, error) {
	if len(hash) != 32 {
		return nil, ErrSigRecoverHashLength
	}
	if cs.V > 1 {
		return nil, ErrSigRecoverInvalidV
	}
	pub, err := SigToPub(hash, cs.Bytes())
	if err != nil {
		return nil, ErrSigRecoverFailed
	}
	return pub, nil
}

// SignatureToAddress recovers the Ethereum address of the signer of hash.
func SignatureToAddress(hash []byte, cs *CompactSignature) (types.Address, error) {
	pub, err := RecoverPublicKey(hash, cs)
	if err != nil {
		return types.Address{}, err
	}
	return PubkeyToAddress(*pub), nil
}

// RecoverEIP155Sender recovers the sender address of a legacy/EIP-155 signed
// transaction hash, given the raw V/R/S signature fields as they appear on
// the wire. It normalizes V to a raw recovery bit before recovery.
func RecoverEIP155Sender(hash []byte, v, r, s *big.Int) (types.Address, error) {
	recoveryBit, _ := NormalizeV(v)
	cs := &CompactSignature{V: recoveryBit}
	rb, sb := r.Bytes(), s.Bytes()
	copy(cs.R[32-len(rb):], rb)
	copy(cs.S[32-len(sb):], sb)
	if err := cs.Validate(true); err != nil {
		return types.Address{}, err
	}
	return SignatureToAddress(hash, cs)
}

// EcRecoverPrecompile implements the behavior of the 0x01 ECRECOVER
// precompiled contract: given 32-byte hash, 32-byte v, 32-byte r, 32-byte s,
// it returns the 32-byte left-padded recovered address, or empty on failure.
func EcRecoverPrecompile(input []byte) []byte {
	if len(input) < 128 {
		padded := make([]byte, 128)
		copy(padded, input)
		input = padded
	}
	hash := input[0:32]
	v := new(big.Int).SetBytes(input[32:64])
	r := new(big.Int).SetBytes(input[64:96])
	s := new(big.Int).SetBytes(input[96:128])

	if !v.IsInt64() {
		return nil
	}
	vUint := v.Uint64()
	if vUint != 27 && vUint != 28 {
		return nil
	}
	if !ValidateSignatureValues(byte(vUint-27), r, s, false) {
		return nil
	}
	// Unlike transaction sender recovery, the precompile accepts upper-half
	// S values: the low-S rule binds transaction signatures only.
	cs := &CompactSignature{V: byte(vUint - 27)}
	rb, sb := r.Bytes(), s.Bytes()
	copy(cs.R[32-len(rb):], rb)
	copy(cs.S[32-len(sb):], sb)
	addr, err := SignatureToAddress(hash, cs)
	if err != nil {
		return nil
	}
	out := make([]byte, 32)
	copy(out[12:], addr.Bytes())
	return out
}
