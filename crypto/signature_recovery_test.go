package crypto

import (
	"bytes"
	"math/big"
	"testing"
)

func TestSignAndRecoverRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	hash := Keccak256([]byte("a message to sign"))

	sig, err := Sign(hash, key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if len(sig) != 65 {
		t.Fatalf("signature length = %d, want 65", len(sig))
	}

	pub, err := SigToPub(hash, sig)
	if err != nil {
		t.Fatalf("recover: %v", err)
	}
	want := PubkeyToAddress(key.PublicKey)
	got := PubkeyToAddress(*pub)
	if got != want {
		t.Errorf("recovered address %s, want %s", got.Hex(), want.Hex())
	}
}

func TestEcRecoverPrecompile(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	hash := Keccak256([]byte("precompile input"))
	sig, err := Sign(hash, key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	input := make([]byte, 128)
	copy(input[0:32], hash)
	input[63] = sig[64] + 27 // v, 32-byte big-endian
	copy(input[64:96], sig[0:32])
	copy(input[96:128], sig[32:64])

	out := EcRecoverPrecompile(input)
	if len(out) != 32 {
		t.Fatalf("output length = %d, want 32", len(out))
	}
	want := PubkeyToAddress(key.PublicKey)
	if !bytes.Equal(out[12:], want.Bytes()) {
		t.Errorf("recovered % x, want % x", out[12:], want.Bytes())
	}
	if !bytes.Equal(out[:12], make([]byte, 12)) {
		t.Errorf("expected 12 zero padding bytes, got % x", out[:12])
	}
}

func TestEcRecoverPrecompileRejectsBadV(t *testing.T) {
	input := make([]byte, 128)
	input[63] = 29 // v must be 27 or 28
	input[95] = 1
	input[127] = 1
	if out := EcRecoverPrecompile(input); out != nil {
		t.Errorf("expected nil for invalid v, got % x", out)
	}
}

func TestEcRecoverPrecompileShortInputIsPadded(t *testing.T) {
	// A truncated input is zero-padded; all-zero r/s can never recover.
	if out := EcRecoverPrecompile([]byte{0x01, 0x02}); out != nil {
		t.Errorf("expected nil for unrecoverable input, got % x", out)
	}
}

func TestValidateSignatureValues(t *testing.T) {
	one := big.NewInt(1)
	if !ValidateSignatureValues(0, one, one, true) {
		t.Error("minimal valid signature rejected")
	}
	if ValidateSignatureValues(2, one, one, true) {
		t.Error("v > 1 accepted")
	}
	if ValidateSignatureValues(0, new(big.Int), one, true) {
		t.Error("zero r accepted")
	}
	if ValidateSignatureValues(0, one, secp256k1N, true) {
		t.Error("s = N accepted")
	}
	upperS := new(big.Int).Add(secp256k1halfN, one)
	if ValidateSignatureValues(0, one, upperS, true) {
		t.Error("upper-half s accepted under homestead rules")
	}
	if !ValidateSignatureValues(0, one, upperS, false) {
		t.Error("upper-half s rejected under frontier rules")
	}
}

func TestNormalizeV(t *testing.T) {
	cases := []struct {
		v        int64
		recovery byte
		chainID  int64
	}{
		{0, 0, 0},
		{1, 1, 0},
		{27, 0, 0},
		{28, 1, 0},
		{37, 0, 1}, // EIP-155, chain id 1
		{38, 1, 1},
	}
	for _, c := range cases {
		recovery, chainID := NormalizeV(big.NewInt(c.v))
		if recovery != c.recovery || chainID.Int64() != c.chainID {
			t.Errorf("NormalizeV(%d) = (%d, %d), want (%d, %d)",
				c.v, recovery, chainID.Int64(), c.recovery, c.chainID)
		}
	}
}
