package panel

import (
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
)

// Panels is a Driver keeping RGB pixel buffers in memory and sending
// a Frame to the Output on Show.
type Panels struct {
	frames    uint64
	pixelsSet uint64

	Output Output

	layout     *Layout
	pixels     [][]Color
	brightness uint32
	lock       sync.RWMutex
}

// New creates Panels from a layout.
func New(layout *Layout, out Output) *Panels {
	p := &Panels{
		Output:     out,
		layout:     layout,
		pixels:     make([][]Color, len(layout.Panels)),
		brightness: 255,
	}
	for n, cfg := range layout.Panels {
		p.pixels[n] = make([]Color, cfg.Length)
	}
	return p
}

// Layout returns the layout.
func (p *Panels) Layout() *Layout {
	return p.layout
}

// PanelCount implements Driver.
func (p *Panels) PanelCount() int {
	return len(p.pixels)
}

// PanelLength implements Driver.
func (p *Panels) PanelLength(panel int) int {
	if panel < 0 || panel >= len(p.pixels) {
		return 0
	}
	return len(p.pixels[panel])
}

// SetPixel implements Driver.
func (p *Panels) SetPixel(panel, index int, c Color, space ColorSpace) error {
	if panel < 0 || panel >= len(p.pixels) {
		return ErrNoPanel
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	pixels := p.pixels[panel]
	if index < 0 || index >= len(pixels) {
		return ErrOutOfRange
	}
	pixels[index] = ToRGB(c, space)
	p.pixelsSet++
	return nil
}

// Fill implements Driver.
func (p *Panels) Fill(panel int, c Color, space ColorSpace, offset int) error {
	if panel < 0 || panel >= len(p.pixels) {
		return ErrNoPanel
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	pixels := p.pixels[panel]
	if offset < 0 || offset >= len(pixels) {
		return ErrOutOfRange
	}
	rgb := ToRGB(c, space)
	for i := offset; i < len(pixels); i++ {
		pixels[i] = rgb
	}
	p.pixelsSet += uint64(len(pixels) - offset)
	return nil
}

// Pixel returns the staged RGB value of a pixel.
func (p *Panels) Pixel(panel, index int) (Color, bool) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	if panel < 0 || panel >= len(p.pixels) || index < 0 || index >= len(p.pixels[panel]) {
		return Color{}, false
	}
	return p.pixels[panel][index], true
}

// Clear turns all staged pixels off and resets the counter.
func (p *Panels) Clear() {
	p.lock.Lock()
	for _, pixels := range p.pixels {
		for i := range pixels {
			pixels[i] = Color{}
		}
	}
	p.pixelsSet = 0
	p.lock.Unlock()
}

// PixelsSet returns the number of pixel writes since the last Clear.
func (p *Panels) PixelsSet() uint64 {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.pixelsSet
}

// Frames returns the number of frames shown.
func (p *Panels) Frames() uint64 {
	return atomic.LoadUint64(&p.frames)
}

// Brightness returns the brightness applied on Show.
func (p *Panels) Brightness() byte {
	return byte(atomic.LoadUint32(&p.brightness))
}

// SetBrightness sets the brightness applied on Show.
func (p *Panels) SetBrightness(b byte) {
	atomic.StoreUint32(&p.brightness, uint32(b))
}

// Show implements Driver.
func (p *Panels) Show() error {
	frame := p.Snapshot()
	glog.V(3).Infof("show frame %d, brightness %d", frame.Seq, p.Brightness())
	if p.Output == nil {
		return nil
	}
	return p.Output.WriteFrame(frame)
}

// Snapshot copies the staged pixels into a new Frame with brightness
// applied.
func (p *Panels) Snapshot() *Frame {
	b := p.Brightness()
	frame := &Frame{
		Seq:    atomic.AddUint64(&p.frames, 1),
		Panels: make([][]Color, len(p.pixels)),
	}
	p.lock.RLock()
	defer p.lock.RUnlock()
	for n, pixels := range p.pixels {
		out := make([]Color, len(pixels))
		for i, c := range pixels {
			out[i] = Color{Scale(c[0], b), Scale(c[1], b), Scale(c[2], b)}
		}
		frame.Panels[n] = out
	}
	return frame
}
