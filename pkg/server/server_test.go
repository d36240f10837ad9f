package server

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/telecortex.go/pkg/framework"
	"github.com/robotalks/telecortex.go/pkg/gcode"
	"github.com/robotalks/telecortex.go/pkg/panel"
	"github.com/robotalks/telecortex.go/pkg/settings"
	"github.com/robotalks/telecortex.go/pkg/transport"
)

type testServer struct {
	*Server
	out  *bytes.Buffer
	loop *fx.Loop
}

func testLayout() *panel.Layout {
	return &panel.Layout{Panels: []panel.PanelConfig{{Name: "a", Length: 8}, {Name: "b", Length: 8}}}
}

func newTestServer(t *testing.T, conf *Config) *testServer {
	if conf == nil {
		conf = NewConfig()
		conf.RainbowsUntilGCode = false
	}
	panels := panel.New(testLayout(), nil)
	store := settings.NewStore(settings.NewMemEEPROM(settings.DefaultSize), settings.Settings{ControllerID: "test", Brightness: 255})
	out := &bytes.Buffer{}
	s := New(conf, out, panels, store)
	s.Sleep = func(time.Duration) {}
	loop := fx.NewLoop()
	s.AddToLoop(loop)
	return &testServer{Server: s, out: out, loop: loop}
}

func (s *testServer) run(t *testing.T, line string) string {
	s.out.Reset()
	require.True(t, s.Queue.Enqueue([]byte(line)))
	s.loop.RunOnce(context.Background())
	return s.out.String()
}

func (s *testServer) pixels(n int) []panel.Color {
	var pixels []panel.Color
	for i := 0; i < s.Panels.PanelLength(n); i++ {
		c, ok := s.Panels.Pixel(n, i)
		if !ok {
			break
		}
		pixels = append(pixels, c)
	}
	return pixels
}

func TestFillPanelToEnd(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, "N1: OK\n", s.run(t, "N1 M2602 Q1 S2 V/wAA"))
	pixels := s.pixels(1)
	for i, c := range pixels {
		if i < 2 {
			assert.Equal(t, panel.Color{}, c, "pixel %d", i)
		} else {
			assert.Equal(t, panel.Color{255, 0, 0}, c, "pixel %d", i)
		}
	}
	for _, c := range s.pixels(0) {
		assert.Equal(t, panel.Color{}, c)
	}
}

func TestSetPixelsTriples(t *testing.T) {
	s := newTestServer(t, nil)
	triples := [][3]byte{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	line := gcode.AppendPixelCommand(nil, CodeSetPixelsRGB, 0, 3, triples...)
	require.Equal(t, "OK\n", s.run(t, string(line)))
	pixels := s.pixels(0)
	for i, c := range pixels {
		switch {
		case i >= 3 && i < 6:
			assert.Equal(t, panel.Color(triples[i-3]), c, "pixel %d", i)
		default:
			assert.Equal(t, panel.Color{}, c, "pixel %d", i)
		}
	}
	require.EqualValues(t, 3, s.Stats().PixelsSet)
}

func TestSetPixelsHSV(t *testing.T) {
	s := newTestServer(t, nil)
	line := gcode.AppendPixelCommand(nil, CodeSetPixelsHSV, 1, 0, [3]byte{0, 255, 255})
	require.Equal(t, "OK\n", s.run(t, string(line)))
	c, ok := s.Panels.Pixel(1, 0)
	require.True(t, ok)
	require.Equal(t, panel.Color{255, 0, 0}, c)
}

func TestUnknownCommand(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, "OK\n", s.run(t, "M2602 Q0 V/wAA"))
	before := s.pixels(0)
	require.Equal(t, "N7 E011: Unknown Command: M9999 Q0 (M 9999)\n", s.run(t, "N7 M9999 Q0"))
	require.Equal(t, "E011: Unknown Command: G1 X10 (G 1)\n", s.run(t, "G1 X10"))
	require.Equal(t, before, s.pixels(0))
	st := s.Stats()
	require.EqualValues(t, 3, st.CommandsProcessed)
	require.EqualValues(t, 2, st.Errors)
	require.EqualValues(t, 7, st.LastLineNum)
}

func TestMalformedIgnored(t *testing.T) {
	s := newTestServer(t, nil)
	require.Empty(t, s.run(t, "X12 Y3"))
	require.Empty(t, s.run(t, "M"))
	require.Zero(t, s.Queue.Len())
}

func TestPayloadErrors(t *testing.T) {
	s := newTestServer(t, nil)
	cases := map[string]string{
		"M2600 Q2 V/wAA":        "E012: Invalid panel: 2\n",
		"M2600 Q0 S8 V/wAA":     "E012: Invalid pixel offset: 8\n",
		"M2600 Q0 S-1 V/wAA":    "E012: Invalid pixel offset: -1\n",
		"M2600 Q0":              "E012: Missing payload\n",
		"M2600 Q0 V/wA":         "E013: Payload length 3 is not a multiple of 4\n",
		"M2600 Q0 S7 V/wAA/wAA": "E013: Payload of 2 pixels exceeds panel 0 from offset 7\n",
		"M2600 Q0 V/wAA/w=A":    "E013: Invalid payload at pixel 1\n",
		"M2602 Q1 V==AA":        "E013: Invalid payload\n",
		"N3 M2602 Q0 V!!!!":     "N3 E013: Invalid payload\n",
		"M2600 Q0 V!!!!!!!!":    "E013: Invalid payload at pixel 0\n",
		"M2600 Q0 V!!":          "E013: Payload length 2 is not a multiple of 4\n",
		"M2600 Q0 V":            "E012: Missing payload\n",
	}
	for line, expected := range cases {
		t.Run(line, func(t *testing.T) {
			assert.Equal(t, expected, s.run(t, line))
		})
	}
	for n := 0; n < 2; n++ {
		for _, c := range s.pixels(n) {
			assert.Equal(t, panel.Color{}, c)
		}
	}
	require.Zero(t, s.Stats().PixelsSet)
}

func TestShowAndNoOp(t *testing.T) {
	s := newTestServer(t, nil)
	var frames []*panel.Frame
	s.Panels.Output = panel.OutputFunc(func(f *panel.Frame) error {
		frames = append(frames, f)
		return nil
	})
	require.Equal(t, "OK\n", s.run(t, "M2602 Q0 V/wAA"))
	require.Equal(t, "N2: OK\n", s.run(t, "N2 M2610"))
	require.Equal(t, "OK\n", s.run(t, "M2611"))
	require.Len(t, frames, 1)
	require.Equal(t, panel.Color{255, 0, 0}, frames[0].Panels[0][0])
	require.Equal(t, panel.Color{}, frames[0].Panels[1][0])
}

func TestShowFailure(t *testing.T) {
	s := newTestServer(t, nil)
	s.Panels.Output = panel.OutputFunc(func(*panel.Frame) error {
		return errors.New("device gone")
	})
	require.Equal(t, "N4 E015: Show failed: device gone\n", s.run(t, "N4 M2610"))
	require.EqualValues(t, 1, s.Stats().Errors)
}

func TestIdleNotice(t *testing.T) {
	s := newTestServer(t, nil)
	s.loop.RunOnce(context.Background())
	require.Empty(t, s.out.String(), "no notice before any command")
	require.True(t, s.Stats().Idle)

	require.Equal(t, "OK\n", s.run(t, "M2611"))
	require.False(t, s.Stats().Idle)
	s.out.Reset()
	s.loop.RunOnce(context.Background())
	require.Equal(t, ";IDLE\n", s.out.String())
	require.True(t, s.Stats().Idle)
	s.out.Reset()
	s.loop.RunOnce(context.Background())
	require.Empty(t, s.out.String())
}

func TestSettingsCommands(t *testing.T) {
	s := newTestServer(t, nil)
	s.Settings.Apply = func(cur settings.Settings) { s.Panels.SetBrightness(cur.Brightness) }
	require.Equal(t, "OK\n", s.run(t, "M500"))
	s.Settings.Update(func(cur *settings.Settings) { cur.Brightness = 10 })
	require.Equal(t, ";SET: Controller ID: test\n;SET: Brightness: 10\nOK\n", s.run(t, "M503"))
	require.Equal(t, "OK\n", s.run(t, "M501"))
	require.EqualValues(t, 255, s.Settings.Current().Brightness)
	s.Settings.Update(func(cur *settings.Settings) { cur.Brightness = 10 })
	require.Equal(t, "OK\n", s.run(t, "M502"))
	require.EqualValues(t, 255, s.Panels.Brightness())
}

func TestSettingsDisabled(t *testing.T) {
	conf := NewConfig()
	conf.RainbowsUntilGCode = false
	out := &bytes.Buffer{}
	s := New(conf, out, panel.New(testLayout(), nil), nil)
	loop := fx.NewLoop()
	s.AddToLoop(loop)
	require.True(t, s.Queue.Enqueue([]byte("N3 M500")))
	loop.RunOnce(context.Background())
	require.Equal(t, "N3 E003: Writing to Disabled EEPROM\n", out.String())
}

func TestFailWait(t *testing.T) {
	conf := NewConfig()
	conf.RainbowsUntilGCode = false
	conf.FailWait = time.Second
	s := newTestServer(t, conf)
	var waited []time.Duration
	s.Sleep = func(d time.Duration) { waited = append(waited, d) }
	s.run(t, "M2611")
	require.Empty(t, waited)
	s.run(t, "M42")
	require.Equal(t, []time.Duration{time.Second}, waited)
}

func TestLinkEvents(t *testing.T) {
	s := newTestServer(t, nil)
	s.loop.PostEvent(LineRejected{Err: gcode.NewError(gcode.CodeLineNumber, "Line Number is not Last Line Number+1, Last Line: %d", 4).WithLineNum(6)})
	s.loop.PostEvent(LineOverflow{})
	s.loop.RunOnce(context.Background())
	require.Equal(t, "N6 E014: Line Number is not Last Line Number+1, Last Line: 4\n;Line too long, max 2048 bytes\n", s.out.String())
	require.EqualValues(t, 1, s.Stats().Errors)
}

func TestRainbowsUntilCommand(t *testing.T) {
	conf := NewConfig()
	conf.RainbowsUntilGCode = true
	s := newTestServer(t, conf)
	s.loop.RunOnce(context.Background())
	require.EqualValues(t, 1, s.Panels.Frames())
	c, _ := s.Panels.Pixel(0, 0)
	require.NotEqual(t, panel.Color{}, c)

	require.Equal(t, "OK\n", s.run(t, "M2611"))
	c, _ = s.Panels.Pixel(0, 0)
	require.Equal(t, panel.Color{}, c)
	frames := s.Panels.Frames()
	s.loop.RunOnce(context.Background())
	require.Equal(t, frames, s.Panels.Frames())
}

func TestServeOverPipe(t *testing.T) {
	conf := NewConfig()
	conf.RainbowsUntilGCode = false
	conf.RequireChecksum = true
	conf.RequireLineNumbers = true
	ctl, host := transport.Pipe()
	s := New(conf, ctl, panel.New(testLayout(), nil), nil)
	s.Sleep = func(time.Duration) {}
	loop := fx.NewLoop()
	loop.Interval = 10 * time.Millisecond
	s.AddToLoop(loop)

	ctx, cancel := context.WithCancel(context.Background())
	doneCh := make(chan error, 1)
	go func() { doneCh <- loop.Run(ctx) }()

	resp := bufio.NewReader(host)
	w := gcode.NewLineWriter(host)
	readLine := func() string {
		for {
			line, err := resp.ReadString('\n')
			require.NoError(t, err)
			if line[0] != gcode.CommentMarker {
				return line
			}
		}
	}

	require.NoError(t, w.ResetLineNum(0))
	require.Equal(t, "N0: OK\n", readLine())
	_, err := w.WriteCommand(gcode.AppendPixelCommand(nil, CodeFillPanelRGB, 0, 0, [3]byte{0, 255, 0}))
	require.NoError(t, err)
	require.Equal(t, "N1: OK\n", readLine())

	_, err = host.Write([]byte("N5 M2610*20\n"))
	require.NoError(t, err)
	line := readLine()
	require.Contains(t, line, "E0")
	c, _ := s.Panels.Pixel(0, 7)
	require.Equal(t, panel.Color{0, 255, 0}, c)

	cancel()
	host.Close()
	select {
	case <-doneCh:
	case <-time.After(5 * time.Second):
		t.Fatal("loop not stopped")
	}
}
