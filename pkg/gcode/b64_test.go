package gcode

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBase64RoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for n := 0; n < 64; n++ {
		src := make([]byte, n)
		rnd.Read(src)
		enc := make([]byte, EncodedLen(n))
		require.Equal(t, len(enc), Encode(enc, src))
		require.Equal(t, (n+2)/3*4, len(enc))
		require.Equal(t, n, DecodedLen(enc))
		dec := make([]byte, DecodedLen(enc))
		l, err := Decode(dec, enc)
		require.NoError(t, err)
		require.Equal(t, src, dec[:l])
	}
}

func TestBase64Lengths(t *testing.T) {
	testCases := []struct {
		in     string
		decLen int
		out    []byte
	}{
		{in: "/wAA", decLen: 3, out: []byte{255, 0, 0}},
		{in: "/wA=", decLen: 2, out: []byte{255, 0}},
		{in: "/w==", decLen: 1, out: []byte{255}},
		{in: "/wAAAP8A", decLen: 6, out: []byte{255, 0, 0, 0, 255, 0}},
		{in: "", decLen: 0, out: []byte{}},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			require.Equal(t, tc.decLen, DecodedLen([]byte(tc.in)))
			dst := make([]byte, 8)
			n, err := Decode(dst, []byte(tc.in))
			require.NoError(t, err)
			require.Equal(t, tc.out, dst[:n])
		})
	}
}

func TestBase64DecodeStopsAtPad(t *testing.T) {
	dst := make([]byte, 8)
	n, err := Decode(dst, []byte("/w==AAAA"))
	require.NoError(t, err)
	require.Equal(t, []byte{255}, dst[:n])
}

func TestBase64DecodePartialGroup(t *testing.T) {
	dst := make([]byte, 8)
	n, err := Decode(dst, []byte("/wAAAP8"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, []byte{255, 0, 0, 0, 255}, dst[:n])

	n, err = Decode(dst, []byte("/wAAA"))
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestBase64DecodeInvalid(t *testing.T) {
	dst := make([]byte, 8)
	_, err := Decode(dst, []byte("/w#A"))
	require.Equal(t, ErrInvalidPayload, err)
	_, err = Decode(dst[:2], []byte("/wAA"))
	require.Equal(t, ErrShortBuffer, err)
}

func TestDecodeTriple(t *testing.T) {
	triple, err := DecodeTriple([]byte("AP8A"))
	require.NoError(t, err)
	require.Equal(t, [3]byte{0, 255, 0}, triple)
	_, err = DecodeTriple([]byte("AP8"))
	require.Equal(t, ErrInvalidPayload, err)
	_, err = DecodeTriple([]byte("AP=="))
	require.Equal(t, ErrInvalidPayload, err)
}

func TestAppendTriples(t *testing.T) {
	out := AppendTriples([]byte("V"), [3]byte{255, 0, 0}, [3]byte{0, 255, 0})
	require.Equal(t, "V/wAAAP8A", string(out))
}
