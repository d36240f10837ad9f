package panel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/telecortex.go/pkg/gcode"
)

func TestParseColor(t *testing.T) {
	triple, hsv, err := ParseColor("#ff8000")
	require.NoError(t, err)
	require.False(t, hsv)
	require.Equal(t, [3]byte{255, 128, 0}, triple)

	triple, hsv, err = ParseColor("00ff00")
	require.NoError(t, err)
	require.False(t, hsv)
	require.Equal(t, [3]byte{0, 255, 0}, triple)

	triple, hsv, err = ParseColor("10, 255,128")
	require.NoError(t, err)
	require.True(t, hsv)
	require.Equal(t, [3]byte{10, 255, 128}, triple)

	triple, _, err = ParseColor("#FFa0C0")
	require.NoError(t, err)
	require.Equal(t, [3]byte{255, 160, 192}, triple)

	for _, s := range []string{"red", "#12345", "ff0000zz", "#ff00001234", "#fff", "1,2", "1,2,300"} {
		_, _, err = ParseColor(s)
		require.Error(t, err, s)
	}
	_, _, err = parseColors([]string{"ff0000", "0,255,255"})
	require.Error(t, err)
}

func TestPixelCommands(t *testing.T) {
	triples := make([][3]byte, MaxPixelsPerLine+2)
	triples[MaxPixelsPerLine] = [3]byte{255, 0, 0}
	cmds := PixelCommands(1, 10, false, triples)
	require.Len(t, cmds, 2)

	cmd := gcode.Parse(cmds[1])
	require.True(t, cmd.Is('M', 2600))
	require.EqualValues(t, 1, cmd.LongVal('Q', -1))
	require.EqualValues(t, 10+MaxPixelsPerLine, cmd.LongVal('S', -1))
	require.True(t, cmd.SeenVal('V'))
	require.Equal(t, "/wAAAAAA", string(cmd.Bytes()))

	cmd = gcode.Parse(PixelCommands(0, 0, true, triples[:1])[0])
	require.True(t, cmd.Is('M', 2601))

	require.Equal(t, "M2603 Q2 S4 VAAAA", string(FillCommand(2, 4, true, [3]byte{})))
}

func TestRainbow(t *testing.T) {
	triples := Rainbow(6, 0)
	require.Len(t, triples, 6)
	require.Equal(t, [3]byte{255, 0, 0}, triples[0])
	require.Equal(t, [3]byte{0, 255, 255}, triples[3])
}
