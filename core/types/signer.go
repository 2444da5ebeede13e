package types

import (
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	dcrecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"
)

// Sender recovery lives in this package (rather than delegating to the
// crypto package) because crypto itself depends on these types; the curve
// library is imported directly here to keep the dependency one-way.

var (
	secp256k1N     = secp256k1.S256().N
	secp256k1halfN = new(big.Int).Rsh(secp256k1N, 1)
)

// keccak256Hash hashes data with Keccak-256 and returns it as a Hash.
func keccak256Hash(data []byte) Hash {
	d := sha3.NewLegacyKeccak256()
	d.Write(data)
	var h Hash
	copy(h[:], d.Sum(nil))
	return h
}

// normalizeV converts V from any of its wire encodings (0/1 raw, 27/28
// legacy, 35+2*chainID EIP-155) to a raw recovery bit, also returning the
// chain ID encoded in V (zero when not EIP-155).
func normalizeV(v *big.Int) (byte, *big.Int) {
	if v.IsInt64() {
		vUint := v.Uint64()
		if vUint == 0 || vUint == 1 {
			return byte(vUint), new(big.Int)
		}
		if vUint == 27 || vUint == 28 {
			return byte(vUint - 27), new(big.Int)
		}
	}
	if v.Cmp(big.NewInt(35)) >= 0 {
		diff := new(big.Int).Sub(v, big.NewInt(35))
		recovery := byte(new(big.Int).Mod(diff, big.NewInt(2)).Uint64())
		chainID := new(big.Int).Div(diff, big.NewInt(2))
		return recovery, chainID
	}
	return 0, new(big.Int)
}

// recoverPlain recovers the signer address from a 32-byte signing hash and
// the r/s signature values plus a raw 0/1 recovery bit, enforcing the
// low-S rule of EIP-2.
func recoverPlain(sighash Hash, r, s *big.Int, recovery byte) (Address, error) {
	if recovery > 1 {
		return Address{}, ErrInvalidSig
	}
	if r.Sign() <= 0 || s.Sign() <= 0 {
		return Address{}, ErrInvalidSig
	}
	if r.Cmp(secp256k1N) >= 0 || s.Cmp(secp256k1N) >= 0 {
		return Address{}, ErrInvalidSig
	}
	if s.Cmp(secp256k1halfN) > 0 {
		return Address{}, ErrInvalidSig
	}

	// RecoverCompact wants [recovery+27, R(32), S(32)].
	var compact [65]byte
	compact[0] = recovery + 27
	rb, sb := r.Bytes(), s.Bytes()
	copy(compact[33-len(rb):33], rb)
	copy(compact[65-len(sb):65], sb)

	pub, _, err := dcrecdsa.RecoverCompact(compact[:], sighash[:])
	if err != nil {
		return Address{}, ErrInvalidSig
	}

	// Address = Keccak256(pubkey[1:])[12:] over the 65-byte uncompressed key.
	unc := pub.SerializeUncompressed()
	d := sha3.NewLegacyKeccak256()
	d.Write(unc[1:])
	hash := d.Sum(nil)
	return BytesToAddress(hash[12:]), nil
}
