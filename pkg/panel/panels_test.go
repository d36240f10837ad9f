package panel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testLayout(lengths ...int) *Layout {
	l := &Layout{}
	for _, n := range lengths {
		l.Panels = append(l.Panels, PanelConfig{Length: n})
	}
	return l
}

func TestPanelsSetPixel(t *testing.T) {
	p := New(testLayout(4, 8), nil)
	require.Equal(t, 2, p.PanelCount())
	require.Equal(t, 8, p.PanelLength(1))
	require.Equal(t, 0, p.PanelLength(2))

	require.NoError(t, p.SetPixel(1, 3, Color{1, 2, 3}, RGB))
	c, ok := p.Pixel(1, 3)
	require.True(t, ok)
	require.Equal(t, Color{1, 2, 3}, c)
	require.Equal(t, uint64(1), p.PixelsSet())

	require.Equal(t, ErrNoPanel, p.SetPixel(2, 0, Color{}, RGB))
	require.Equal(t, ErrOutOfRange, p.SetPixel(0, 4, Color{}, RGB))
	require.Equal(t, ErrOutOfRange, p.SetPixel(0, -1, Color{}, RGB))
}

func TestPanelsFill(t *testing.T) {
	p := New(testLayout(6), nil)
	require.NoError(t, p.Fill(0, Color{255, 0, 0}, RGB, 2))
	for i := 0; i < 6; i++ {
		c, _ := p.Pixel(0, i)
		if i < 2 {
			require.Equal(t, Color{}, c)
		} else {
			require.Equal(t, Color{255, 0, 0}, c)
		}
	}
	require.Equal(t, uint64(4), p.PixelsSet())
	require.Equal(t, ErrOutOfRange, p.Fill(0, Color{}, RGB, 6))
	p.Clear()
	require.Equal(t, uint64(0), p.PixelsSet())
	c, _ := p.Pixel(0, 5)
	require.Equal(t, Color{}, c)
}

func TestPanelsShow(t *testing.T) {
	var frames []*Frame
	p := New(testLayout(2), OutputFunc(func(f *Frame) error {
		frames = append(frames, f)
		return nil
	}))
	require.NoError(t, p.SetPixel(0, 0, Color{255, 128, 0}, RGB))
	require.NoError(t, p.Show())
	p.SetBrightness(127)
	require.NoError(t, p.Show())
	require.Len(t, frames, 2)
	require.Equal(t, uint64(1), frames[0].Seq)
	require.Equal(t, Color{255, 128, 0}, frames[0].Panels[0][0])
	require.Equal(t, Color{127, 64, 0}, frames[1].Panels[0][0])
	require.Equal(t, uint64(2), p.Frames())
	require.Equal(t, byte(127), p.Brightness())
}

func TestHSVToRGB(t *testing.T) {
	require.Equal(t, Color{255, 0, 0}, HSVToRGB(Color{0, 255, 255}))
	require.Equal(t, Color{0, 0, 0}, HSVToRGB(Color{100, 255, 0}))
	require.Equal(t, Color{255, 255, 255}, HSVToRGB(Color{42, 0, 255}))
	require.Equal(t, Color{1, 2, 3}, ToRGB(Color{1, 2, 3}, RGB))
}

func TestRainbow(t *testing.T) {
	p := New(testLayout(3, 3), nil)
	require.NoError(t, Rainbow(p, 0, 16))
	c, _ := p.Pixel(0, 0)
	require.Equal(t, Color{255, 0, 0}, c)
	require.Equal(t, uint64(6), p.PixelsSet())
}

func TestLayout(t *testing.T) {
	l := DefaultLayout()
	require.Len(t, l.Panels, 4)
	require.Equal(t, 333+260+333+333, l.PixelCount())

	data, err := l.Marshal()
	require.NoError(t, err)
	parsed, err := ParseLayout(data)
	require.NoError(t, err)
	require.Equal(t, l, parsed)

	parsed, err = ParseLayout([]byte("panels:\n  - length: 10\n  - name: strip\n    length: 20\n"))
	require.NoError(t, err)
	require.Equal(t, 30, parsed.PixelCount())
	require.Equal(t, "strip", parsed.Panels[1].Name)

	_, err = ParseLayout([]byte("panels: []\n"))
	require.Error(t, err)
	_, err = ParseLayout([]byte("panels:\n  - length: 0\n"))
	require.Error(t, err)
}
