package trie

import (
	"bytes"
	"testing"
)

func TestHexPrefixRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		hex  []byte
	}{
		{"empty leaf", []byte{terminatorByte}},
		{"empty extension", []byte{}},
		{"odd leaf", []byte{1, 2, 3, terminatorByte}},
		{"even leaf", []byte{1, 2, 3, 4, terminatorByte}},
		{"odd extension", []byte{5, 0xa, 0xf}},
		{"even extension", []byte{5, 0xa, 0xf, 0x1}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			compact := hexToCompact(c.hex)
			back := compactToHex(compact)
			if !bytes.Equal(back, c.hex) {
				t.Errorf("hexToCompact/compactToHex round trip: got % x, want % x", back, c.hex)
			}
		})
	}
}

func TestHexPrefixLeafExtensionFlagDisambiguation(t *testing.T) {
	leaf := hexToCompact([]byte{1, 2, 3, 4, terminatorByte})
	ext := hexToCompact([]byte{1, 2, 3, 4})
	if leaf[0]&0x20 == 0 {
		t.Error("expected leaf flag bit set")
	}
	if ext[0]&0x20 != 0 {
		t.Error("expected leaf flag bit clear for extension")
	}
}

func TestKeybytesToHexRoundTrip(t *testing.T) {
	key := []byte{0xde, 0xad, 0xbe, 0xef}
	hex := keybytesToHex(key)
	back := hexToKeybytes(hex)
	if !bytes.Equal(back, key) {
		t.Errorf("got % x, want % x", back, key)
	}
}
