// Package panel holds the pixel buffers of the LED panels driven by
// the controller.
package panel

import "errors"

// ColorSpace tells how the three components of a Color are interpreted.
type ColorSpace int

// Supported color spaces.
const (
	RGB ColorSpace = iota
	HSV
)

func (s ColorSpace) String() string {
	switch s {
	case RGB:
		return "RGB"
	case HSV:
		return "HSV"
	}
	return "unknown"
}

// Color is a triple of components in some ColorSpace.
type Color [3]byte

var (
	// ErrNoPanel indicates the panel index is out of range.
	ErrNoPanel = errors.New("no such panel")
	// ErrOutOfRange indicates the pixel index is out of range.
	ErrOutOfRange = errors.New("pixel out of range")
)

// Driver stages pixel values and pushes them out on Show.
type Driver interface {
	PanelCount() int
	PanelLength(panel int) int
	SetPixel(panel, index int, c Color, space ColorSpace) error
	// Fill sets every pixel from offset to the end of the panel.
	Fill(panel int, c Color, space ColorSpace, offset int) error
	Show() error
}

// Frame is a snapshot of all panels after brightness scaling.
type Frame struct {
	Seq    uint64
	Panels [][]Color
}

// Output receives frames on Show.
type Output interface {
	WriteFrame(*Frame) error
}

// OutputFunc is the func form of Output.
type OutputFunc func(*Frame) error

// WriteFrame implements Output.
func (f OutputFunc) WriteFrame(frame *Frame) error {
	return f(frame)
}
