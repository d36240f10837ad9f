package mqtt

import (
	"strconv"

	"github.com/robotalks/telecortex.go/pkg/panel"
)

// FrameOutput publishes every shown frame, one message per panel on
// controller-id/frame/<panel>, payload is consecutive RGB bytes.
type FrameOutput struct {
	Broker       *Broker
	ControllerID string
}

// WriteFrame implements panel.Output.
func (o *FrameOutput) WriteFrame(frame *panel.Frame) error {
	for n, pixels := range frame.Panels {
		topic := o.ControllerID + "/" + FrameTopic + "/" + strconv.Itoa(n)
		o.Broker.Pub(topic, panel.FrameBytes(pixels))
	}
	return nil
}

