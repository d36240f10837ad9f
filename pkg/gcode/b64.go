package gcode

import (
	"encoding/base64"
)

// PadChar pads the last group of an encoded payload.
const PadChar = '='

// PixelGroupSize is the number of base64 symbols carrying one pixel triple.
const PixelGroupSize = 4

// EncodedLen returns the length of the base64 encoding of n bytes,
// which is ceil(n/3)*4.
func EncodedLen(n int) int {
	return (n + 2) / 3 * 4
}

// DecodedLen returns the number of bytes src decodes to,
// which is floor(6*len(src)/8) less the trailing padding symbols.
func DecodedLen(src []byte) int {
	pad := 0
	for i := len(src) - 1; i >= 0 && src[i] == PadChar; i-- {
		pad++
	}
	return 6*len(src)/8 - pad
}

// Encode writes the padded base64 encoding of src into dst and returns
// the number of bytes written. dst must hold EncodedLen(len(src)) bytes.
func Encode(dst, src []byte) int {
	base64.StdEncoding.Encode(dst, src)
	return EncodedLen(len(src))
}

// AppendEncode appends the padded base64 encoding of src to dst.
func AppendEncode(dst, src []byte) []byte {
	n, m := len(dst), EncodedLen(len(src))
	if cap(dst)-n < m {
		grown := make([]byte, n, n+m)
		copy(grown, dst)
		dst = grown
	}
	dst = dst[:n+m]
	Encode(dst[n:], src)
	return dst
}

// Decode decodes src into dst and returns the number of bytes written.
// Decoding stops at the first pad symbol. A trailing partial group of
// i symbols yields i-1 bytes, a lone trailing symbol yields nothing.
// Symbols outside the alphabet produce ErrInvalidPayload.
func Decode(dst, src []byte) (int, error) {
	for i, c := range src {
		if c == PadChar {
			src = src[:i]
			break
		}
	}
	if len(src)%PixelGroupSize == 1 {
		src = src[:len(src)-1]
	}
	if len(dst) < base64.RawStdEncoding.DecodedLen(len(src)) {
		return 0, ErrShortBuffer
	}
	n, err := base64.RawStdEncoding.Decode(dst, src)
	if err != nil {
		return n, ErrInvalidPayload
	}
	return n, nil
}

// DecodeTriple decodes one 4-symbol group into a pixel triple.
func DecodeTriple(group []byte) (triple [3]byte, err error) {
	if len(group) != PixelGroupSize {
		return triple, ErrInvalidPayload
	}
	n, err := Decode(triple[:], group)
	if err == nil && n != len(triple) {
		err = ErrInvalidPayload
	}
	return
}

// AppendTriples appends the base64 encoding of pixel triples,
// one 4-symbol group per triple.
func AppendTriples(dst []byte, triples ...[3]byte) []byte {
	for _, t := range triples {
		dst = AppendEncode(dst, t[:])
	}
	return dst
}
