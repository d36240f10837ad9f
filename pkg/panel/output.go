package panel

import (
	"encoding/hex"

	"github.com/golang/glog"
)

// LogOutput logs frames instead of driving hardware.
type LogOutput struct {
	// Verbosity is the glog V level for per-panel dumps.
	Verbosity glog.Level
}

// WriteFrame implements Output.
func (o *LogOutput) WriteFrame(frame *Frame) error {
	glog.Infof("frame %d: %d panels", frame.Seq, len(frame.Panels))
	if glog.V(o.Verbosity) {
		for n, pixels := range frame.Panels {
			glog.Infof("panel %d: %s", n, hex.EncodeToString(FrameBytes(pixels)))
		}
	}
	return nil
}

// MultiOutput writes a frame to all outputs, returning the first error.
type MultiOutput []Output

// WriteFrame implements Output.
func (m MultiOutput) WriteFrame(frame *Frame) (err error) {
	for _, out := range m {
		if e := out.WriteFrame(frame); e != nil && err == nil {
			err = e
		}
	}
	return
}

// FrameBytes flattens pixels into consecutive RGB bytes.
func FrameBytes(pixels []Color) []byte {
	data := make([]byte, 0, len(pixels)*3)
	for _, c := range pixels {
		data = append(data, c[0], c[1], c[2])
	}
	return data
}
