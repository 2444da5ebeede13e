// Package rlp implements the Recursive Length Prefix encoding used throughout
// the Ethereum wire and storage formats.
package rlp

import "errors"

var (
	// ErrExpectedString is returned when a list is encountered where a string was expected.
	ErrExpectedString = errors.New("rlp: expected string")

	// ErrExpectedList is returned when a string is encountered where a list was expected.
	ErrExpectedList = errors.New("rlp: expected list")

	// ErrCanonSize is returned when an RLP string uses a non-canonical size encoding.
	ErrCanonSize = errors.New("rlp: non-canonical size information")

	// ErrEOL is returned when the end of the current list has not yet been reached
	// but the caller tried to close it, or vice versa.
	ErrEOL = errors.New("rlp: end of list")

	// ErrCanonInt is returned when an integer uses non-canonical encoding (leading zeros).
	ErrCanonInt = errors.New("rlp: non-canonical integer encoding")

	// ErrNonCanonicalSize is returned when a size prefix is not in canonical form
	// (e.g. a long-form length that could have been expressed in short form).
	ErrNonCanonicalSize = errors.New("rlp: non-canonical size")

	// ErrUint64Range is returned when a decoded integer is too long for its
	// target: more than 8 bytes for Uint64, more than 32 bytes for Uint256.
	ErrUint64Range = errors.New("rlp: uint64 overflow")

	// ErrValueTooLarge is returned when a value is too large to encode.
	ErrValueTooLarge = errors.New("rlp: value too large")

	// ErrElemTooLarge is returned when a list/string byte length exceeds the
	// maximum this implementation can allocate for decoding.
	ErrElemTooLarge = errors.New("rlp: element too large")
)
