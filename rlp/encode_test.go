package rlp

import (
	"bytes"
	"testing"
)

func TestEncodeStringCornerCases(t *testing.T) {
	cases := []struct {
		name string
		val  interface{}
		want []byte
	}{
		{"empty string", []byte(""), []byte{0x80}},
		{"two bytes", []byte{0x04, 0x00}, []byte{0x82, 0x04, 0x00}},
		{"single low byte", []byte{0x00}, []byte{0x00}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := EncodeToBytes(c.val)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if !bytes.Equal(got, c.want) {
				t.Errorf("got % x, want % x", got, c.want)
			}
		})
	}
}

func TestEncodeLongString(t *testing.T) {
	data := bytes.Repeat([]byte{'A'}, 60)
	got, err := EncodeToBytes(data)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := append([]byte{0xb8, 0x3c}, data...)
	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestEncodeNestedEmptyLists(t *testing.T) {
	// [ [], [[]], [[], [[]]] ]
	val := []interface{}{
		[]interface{}{},
		[]interface{}{[]interface{}{}},
		[]interface{}{[]interface{}{}, []interface{}{[]interface{}{}}},
	}
	got, err := EncodeToBytes(val)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := []byte{0xc7, 0xc0, 0xc1, 0xc0, 0xc3, 0xc0, 0xc1, 0xc0}
	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}

func TestEncodeUint(t *testing.T) {
	cases := []struct {
		val  uint64
		want []byte
	}{
		{0, []byte{0x80}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x81, 0x80}},
		{1024, []byte{0x82, 0x04, 0x00}},
	}
	for _, c := range cases {
		got, err := EncodeToBytes(c.val)
		if err != nil {
			t.Fatalf("encode(%d): %v", c.val, err)
		}
		if !bytes.Equal(got, c.want) {
			t.Errorf("encode(%d) = % x, want % x", c.val, got, c.want)
		}
	}
}

func TestRoundTripByteStrings(t *testing.T) {
	inputs := [][]byte{
		{},
		{0x00},
		{0x7f},
		{0x80},
		bytes.Repeat([]byte{0xab}, 54),
		bytes.Repeat([]byte{0xcd}, 55),
		bytes.Repeat([]byte{0xef}, 56),
		bytes.Repeat([]byte{0x11}, 1024),
	}
	for _, in := range inputs {
		enc, err := EncodeToBytes(in)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		var out []byte
		if err := DecodeBytes(enc, &out); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !bytes.Equal(out, in) && !(len(out) == 0 && len(in) == 0) {
			t.Errorf("round trip mismatch: got % x, want % x", out, in)
		}
	}
}

func TestRoundTripStruct(t *testing.T) {
	type pair struct {
		A uint64
		B []byte
	}
	in := pair{A: 9001, B: []byte("hello")}
	enc, err := EncodeToBytes(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var out pair
	if err := DecodeBytes(enc, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.A != in.A || !bytes.Equal(out.B, in.B) {
		t.Errorf("got %+v, want %+v", out, in)
	}
}
