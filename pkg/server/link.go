package server

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"

	fx "github.com/robotalks/telecortex.go/pkg/framework"
	"github.com/robotalks/telecortex.go/pkg/gcode"
)

// LineRejected is posted when the validator rejects a line.
type LineRejected struct {
	Err *gcode.Error
}

// LineOverflow is posted when an overlong line is discarded.
type LineOverflow struct{}

// LinkStats counts what happened on the link.
type LinkStats struct {
	Received  uint64
	Dropped   uint64
	Rejected  uint64
	Overflows uint64
}

// Link reads bytes from the transport, frames and validates lines and
// admits them into the queue. Lines arriving at a full queue are
// dropped silently. Writes to the transport are serialized.
type Link struct {
	stats LinkStats

	Conn      io.ReadWriter
	Queue     *gcode.Queue
	Framer    *gcode.Framer
	Validator *gcode.Validator
	ReadSize  int

	writeLock sync.Mutex
}

// NewLink creates a Link.
func NewLink(conn io.ReadWriter, queue *gcode.Queue, validator *gcode.Validator) *Link {
	return &Link{
		Conn:      conn,
		Queue:     queue,
		Framer:    gcode.NewFramer(queue.MaxLineSize()),
		Validator: validator,
		ReadSize:  256,
	}
}

// Name implements Named.
func (l *Link) Name() string {
	return "link"
}

// Stats returns the counters.
func (l *Link) Stats() LinkStats {
	return LinkStats{
		Received:  atomic.LoadUint64(&l.stats.Received),
		Dropped:   atomic.LoadUint64(&l.stats.Dropped),
		Rejected:  atomic.LoadUint64(&l.stats.Rejected),
		Overflows: atomic.LoadUint64(&l.stats.Overflows),
	}
}

// Write implements io.Writer.
func (l *Link) Write(p []byte) (int, error) {
	l.writeLock.Lock()
	defer l.writeLock.Unlock()
	glog.V(2).Infof("SND %q", p)
	return l.Conn.Write(p)
}

// Run implements Runnable.
func (l *Link) Run(ctx context.Context) error {
	ctl := fx.LoopCtlFrom(ctx)
	dataCh, ackCh, errCh := make(chan []byte), make(chan struct{}), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go l.readLoop(subCtx, dataCh, ackCh, errCh)
	if closer, ok := l.Conn.(io.Closer); ok {
		go func() {
			<-subCtx.Done()
			closer.Close()
		}()
	}
	for {
		select {
		case data := <-dataCh:
			glog.V(2).Infof("RCV %q", data)
			for _, b := range data {
				l.feed(ctl, b)
			}
			ackCh <- struct{}{}
		case err := <-errCh:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *Link) readLoop(ctx context.Context, dataCh chan<- []byte, ackCh <-chan struct{}, errCh chan<- error) {
	size := l.ReadSize
	if size <= 0 {
		size = 256
	}
	buf := make([]byte, size)
	for {
		n, err := l.Conn.Read(buf)
		if n > 0 {
			select {
			case dataCh <- buf[:n]:
				<-ackCh
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			errCh <- err
			return
		}
	}
}

func (l *Link) feed(ctl fx.LoopControl, b byte) {
	fr := l.Framer.Parse(b)
	if fr.Overflow {
		atomic.AddUint64(&l.stats.Overflows, 1)
		glog.Warningf("line longer than %d bytes discarded", l.Queue.MaxLineSize())
		post(ctl, LineOverflow{})
		return
	}
	if fr.Line == nil {
		return
	}
	atomic.AddUint64(&l.stats.Received, 1)
	var lastLine int64
	if l.Validator != nil {
		lastLine = l.Validator.LastLine()
		if err := l.Validator.Validate(fr.Line); err != nil {
			atomic.AddUint64(&l.stats.Rejected, 1)
			glog.V(2).Infof("rejected %q: %v", fr.Line, err)
			post(ctl, LineRejected{Err: err})
			return
		}
	}
	if !l.Queue.Enqueue(fr.Line) {
		atomic.AddUint64(&l.stats.Dropped, 1)
		glog.V(2).Infof("queue full, dropped %q", fr.Line)
		if l.Validator != nil {
			l.Validator.Reset(lastLine)
		}
		return
	}
	if ctl != nil {
		ctl.TriggerNext()
	}
}

func post(ctl fx.LoopControl, ev fx.Event) {
	if ctl != nil {
		ctl.PostEvent(ev)
	}
}
