package server

import (
	"github.com/robotalks/telecortex.go/pkg/gcode"
	"github.com/robotalks/telecortex.go/pkg/panel"
)

// Op is an operation translated from a parsed command.
type Op interface {
	opName() string
}

// SetPixels writes consecutive pixels from a payload of triples.
type SetPixels struct {
	Space   panel.ColorSpace
	Panel   int
	Offset  int
	Payload []byte
}

// FillPanel writes the first triple of the payload from Offset to
// the end of the panel.
type FillPanel struct {
	Space   panel.ColorSpace
	Panel   int
	Offset  int
	Payload []byte
}

// Show pushes the staged pixels to the output.
type Show struct{}

// NoOp is accepted and does nothing.
type NoOp struct{}

// SaveSettings persists the settings.
type SaveSettings struct{}

// LoadSettings restores persisted settings.
type LoadSettings struct{}

// ResetSettings restores default settings.
type ResetSettings struct{}

// ReportSettings prints the settings as comments.
type ReportSettings struct{}

// SetLineNumber is accepted, the line number is handled on receiving.
type SetLineNumber struct {
	LineNum int64
}

// Unknown is a valid command without an operation.
type Unknown struct {
	Letter byte
	Code   int
	Text   []byte
}

// Malformed is a line without a command letter or code.
type Malformed struct {
	Text []byte
}

func (SetPixels) opName() string      { return "SetPixels" }
func (FillPanel) opName() string      { return "FillPanel" }
func (Show) opName() string           { return "Show" }
func (NoOp) opName() string           { return "NoOp" }
func (SaveSettings) opName() string   { return "SaveSettings" }
func (LoadSettings) opName() string   { return "LoadSettings" }
func (ResetSettings) opName() string  { return "ResetSettings" }
func (ReportSettings) opName() string { return "ReportSettings" }
func (SetLineNumber) opName() string  { return "SetLineNumber" }
func (Unknown) opName() string        { return "Unknown" }
func (Malformed) opName() string      { return "Malformed" }

// Codes of the supported M commands.
const (
	CodeSetPixelsRGB   = 2600
	CodeSetPixelsHSV   = 2601
	CodeFillPanelRGB   = 2602
	CodeFillPanelHSV   = 2603
	CodeShow           = 2610
	CodeNoOp           = 2611
	CodeSaveSettings   = 500
	CodeLoadSettings   = 501
	CodeResetSettings  = 502
	CodeReportSettings = 503
	CodeSetLineNumber  = 110
)

// Translate turns a parsed command into an operation. Payloads are
// borrowed from the command.
func Translate(cmd *gcode.Command) Op {
	if !cmd.Valid() {
		return Malformed{Text: cmd.Text()}
	}
	if cmd.Letter == 'M' {
		switch cmd.Code {
		case CodeSetPixelsRGB, CodeSetPixelsHSV:
			op := SetPixels{Space: panel.RGB}
			if cmd.Code == CodeSetPixelsHSV {
				op.Space = panel.HSV
			}
			op.Panel, op.Offset, op.Payload = pixelArgs(cmd)
			return op
		case CodeFillPanelRGB, CodeFillPanelHSV:
			op := FillPanel{Space: panel.RGB}
			if cmd.Code == CodeFillPanelHSV {
				op.Space = panel.HSV
			}
			op.Panel, op.Offset, op.Payload = pixelArgs(cmd)
			return op
		case CodeShow:
			return Show{}
		case CodeNoOp:
			return NoOp{}
		case CodeSaveSettings:
			return SaveSettings{}
		case CodeLoadSettings:
			return LoadSettings{}
		case CodeResetSettings:
			return ResetSettings{}
		case CodeReportSettings:
			return ReportSettings{}
		case CodeSetLineNumber:
			return SetLineNumber{LineNum: cmd.LineNum}
		}
	}
	return Unknown{Letter: cmd.Letter, Code: cmd.Code, Text: cmd.Text()}
}

func pixelArgs(cmd *gcode.Command) (panelNum, offset int, payload []byte) {
	panelNum = int(cmd.LongVal('Q', 0))
	offset = int(cmd.LongVal('S', 0))
	if cmd.Seen('V') {
		if payload = cmd.Bytes(); !cmd.HasValue() {
			payload = cmd.Raw()
		}
	}
	return
}
