package gcode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func frameAll(f *Framer, in string) (lines []string, overflows int) {
	for i := 0; i < len(in); i++ {
		fr := f.Parse(in[i])
		if fr.Line != nil {
			lines = append(lines, string(fr.Line))
		}
		if fr.Overflow {
			overflows++
		}
	}
	return
}

func TestFramer(t *testing.T) {
	testCases := []struct {
		name      string
		in        string
		lines     []string
		overflows int
	}{
		{name: "lf", in: "M2610\nM2611\n", lines: []string{"M2610", "M2611"}},
		{name: "crlf", in: "M2610\r\nM2611\r\n", lines: []string{"M2610", "M2611"}},
		{name: "partial", in: "M2610\nM26", lines: []string{"M2610"}},
		{name: "comment", in: "; hello\nM2610 ; show\n", lines: []string{"M2610"}},
		{name: "nul", in: "M26\x0010\n", lines: []string{"M2610"}},
		{name: "trailing spaces", in: "M2610  \t\n  \n", lines: []string{"M2610"}},
		{name: "overflow", in: "M2600 Q1 S0 V/wAA\nM2610\n", lines: []string{"M2610"}, overflows: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			lines, overflows := frameAll(NewFramer(12), tc.in)
			require.Equal(t, tc.lines, lines)
			require.Equal(t, tc.overflows, overflows)
		})
	}
}

func TestFramerReset(t *testing.T) {
	f := NewFramer(16)
	lines, _ := frameAll(f, "M26")
	require.Empty(t, lines)
	f.Reset()
	lines, _ = frameAll(f, "M2611\n")
	require.Equal(t, []string{"M2611"}, lines)
}
