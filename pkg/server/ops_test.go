package server

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/telecortex.go/pkg/gcode"
	"github.com/robotalks/telecortex.go/pkg/panel"
)

func translate(line string) Op {
	cmd := gcode.Parse([]byte(line))
	return Translate(&cmd)
}

func TestTranslate(t *testing.T) {
	op := translate("M2602 Q1 V/wAA")
	require.Equal(t, FillPanel{Space: panel.RGB, Panel: 1, Offset: 0, Payload: []byte("/wAA")}, op)

	op = translate("M2601 Q3 S10 VAAAA")
	require.Equal(t, SetPixels{Space: panel.HSV, Panel: 3, Offset: 10, Payload: []byte("AAAA")}, op)

	op = translate("M2600 Q0")
	px, ok := op.(SetPixels)
	require.True(t, ok)
	require.Nil(t, px.Payload)

	assert.Equal(t, FillPanel{Space: panel.HSV, Panel: 2, Offset: 5, Payload: []byte("AAAA")}, translate("M2603 Q2 S5 VAAAA"))
	assert.Equal(t, Show{}, translate("M2610"))
	assert.Equal(t, NoOp{}, translate("M2611"))
	assert.Equal(t, SaveSettings{}, translate("M500"))
	assert.Equal(t, LoadSettings{}, translate("M501"))
	assert.Equal(t, ResetSettings{}, translate("M502"))
	assert.Equal(t, ReportSettings{}, translate("M503"))
	assert.Equal(t, SetLineNumber{LineNum: 9}, translate("N9 M110"))
	assert.Equal(t, Unknown{Letter: 'M', Code: 2604, Text: []byte("M2604")}, translate("M2604"))
	assert.Equal(t, Unknown{Letter: 'G', Code: 2600, Text: []byte("G2600 Q1")}, translate("G2600 Q1"))
	assert.Equal(t, Malformed{Text: []byte("X1")}, translate("X1"))
}

type recordingSettings struct {
	calls []string
}

func (s *recordingSettings) Save() error {
	s.calls = append(s.calls, "save")
	return nil
}

func (s *recordingSettings) Load() error {
	s.calls = append(s.calls, "load")
	return nil
}

func (s *recordingSettings) Reset() {
	s.calls = append(s.calls, "reset")
}

func (s *recordingSettings) Report(w io.Writer) error {
	s.calls = append(s.calls, "report")
	_, err := w.Write([]byte(";SET: x\n"))
	return err
}

func TestDispatchSettings(t *testing.T) {
	rec := &recordingSettings{}
	d := &Dispatcher{Panels: panel.New(testLayout(), nil), Settings: rec}
	var out bytes.Buffer
	for _, op := range []Op{SaveSettings{}, LoadSettings{}, ResetSettings{}, ReportSettings{}, NoOp{}, SetLineNumber{}} {
		require.NoError(t, d.Dispatch(op, &out))
	}
	require.Equal(t, []string{"save", "load", "reset", "report"}, rec.calls)
	require.Equal(t, ";SET: x\n", out.String())
}

func TestDispatchUnknown(t *testing.T) {
	d := &Dispatcher{Panels: panel.New(testLayout(), nil)}
	err := d.Dispatch(Unknown{Letter: 'T', Code: 3, Text: []byte("T3")}, nil)
	require.Error(t, err)
	perr := gcode.AsError(err, 0)
	require.Equal(t, gcode.CodeUnknownCommand, perr.Code)
	require.Equal(t, "Unknown Command: T3 (T 3)", perr.Message)

	err = d.Dispatch(LoadSettings{}, nil)
	require.Equal(t, gcode.CodeStorage, gcode.AsError(err, 0).Code)
}
