package server

import (
	"io"

	"github.com/robotalks/telecortex.go/pkg/gcode"
	"github.com/robotalks/telecortex.go/pkg/panel"
)

// SettingsStore is the settings collaborator of the Dispatcher.
type SettingsStore interface {
	Save() error
	Load() error
	Reset()
	Report(io.Writer) error
}

// Dispatcher executes operations against the panel driver.
type Dispatcher struct {
	Panels   panel.Driver
	Settings SettingsStore

	colors []panel.Color
}

// Dispatch executes an operation. Informational output goes to out
// as comment lines. A failed operation returns a *gcode.Error and
// leaves the panels untouched.
func (d *Dispatcher) Dispatch(op Op, out io.Writer) error {
	switch op := op.(type) {
	case SetPixels:
		return d.setPixels(op)
	case FillPanel:
		return d.fillPanel(op)
	case Show:
		if err := d.Panels.Show(); err != nil {
			return gcode.NewError(gcode.CodeOutput, "Show failed: %v", err)
		}
	case NoOp, SetLineNumber, Malformed:
	case SaveSettings:
		return d.settings().Save()
	case LoadSettings:
		return d.settings().Load()
	case ResetSettings:
		d.settings().Reset()
	case ReportSettings:
		return d.settings().Report(out)
	case Unknown:
		return gcode.NewError(gcode.CodeUnknownCommand, "Unknown Command: %s (%c %d)", op.Text, op.Letter, op.Code)
	default:
		return gcode.NewError(gcode.CodeUnknownCommand, "Unsupported operation: %s", op.opName())
	}
	return nil
}

func (d *Dispatcher) settings() SettingsStore {
	if d.Settings == nil {
		return disabledSettings{}
	}
	return d.Settings
}

func (d *Dispatcher) setPixels(op SetPixels) error {
	pixels, err := d.checkPixelArgs(op.Panel, op.Offset, op.Payload)
	if err != nil {
		return err
	}
	if room := d.Panels.PanelLength(op.Panel) - op.Offset; pixels > room {
		return gcode.NewError(gcode.CodeMalformedPayload,
			"Payload of %d pixels exceeds panel %d from offset %d", pixels, op.Panel, op.Offset)
	}
	colors := d.colors[:0]
	for i := 0; i < pixels; i++ {
		triple, err := gcode.DecodeTriple(op.Payload[i*gcode.PixelGroupSize : (i+1)*gcode.PixelGroupSize])
		if err != nil {
			return gcode.NewError(gcode.CodeMalformedPayload, "Invalid payload at pixel %d", i)
		}
		colors = append(colors, panel.Color(triple))
	}
	d.colors = colors
	for i, c := range colors {
		if err := d.Panels.SetPixel(op.Panel, op.Offset+i, c, op.Space); err != nil {
			return gcode.NewError(gcode.CodeInvalidParameter, "Set pixel %d: %v", op.Offset+i, err)
		}
	}
	return nil
}

func (d *Dispatcher) fillPanel(op FillPanel) error {
	if _, err := d.checkPixelArgs(op.Panel, op.Offset, op.Payload); err != nil {
		return err
	}
	triple, err := gcode.DecodeTriple(op.Payload[:gcode.PixelGroupSize])
	if err != nil {
		return gcode.NewError(gcode.CodeMalformedPayload, "Invalid payload")
	}
	if err := d.Panels.Fill(op.Panel, panel.Color(triple), op.Space, op.Offset); err != nil {
		return gcode.NewError(gcode.CodeInvalidParameter, "Fill panel %d: %v", op.Panel, err)
	}
	return nil
}

// checkPixelArgs validates the panel, the offset and the payload
// length, returning the number of pixels in the payload.
func (d *Dispatcher) checkPixelArgs(panelNum, offset int, payload []byte) (int, error) {
	if panelNum < 0 || panelNum >= d.Panels.PanelCount() {
		return 0, gcode.NewError(gcode.CodeInvalidParameter, "Invalid panel: %d", panelNum)
	}
	if offset < 0 || offset >= d.Panels.PanelLength(panelNum) {
		return 0, gcode.NewError(gcode.CodeInvalidParameter, "Invalid pixel offset: %d", offset)
	}
	if len(payload) == 0 {
		return 0, gcode.NewError(gcode.CodeInvalidParameter, "Missing payload")
	}
	if len(payload)%gcode.PixelGroupSize != 0 {
		return 0, gcode.NewError(gcode.CodeMalformedPayload,
			"Payload length %d is not a multiple of %d", len(payload), gcode.PixelGroupSize)
	}
	return len(payload) / gcode.PixelGroupSize, nil
}

type disabledSettings struct{}

func (disabledSettings) Save() error {
	return gcode.NewError(gcode.CodeStorage, "Writing to Disabled EEPROM")
}

func (disabledSettings) Load() error {
	return gcode.NewError(gcode.CodeStorage, "Reading from Disabled EEPROM")
}

func (disabledSettings) Reset() {}

func (disabledSettings) Report(io.Writer) error { return nil }
