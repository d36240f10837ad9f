package server

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/telecortex.go/pkg/framework"
	"github.com/robotalks/telecortex.go/pkg/gcode"
	"github.com/robotalks/telecortex.go/pkg/panel"
	"github.com/robotalks/telecortex.go/pkg/settings"
	"github.com/robotalks/telecortex.go/pkg/status"
)

// Stats are the counters of the controller.
type Stats struct {
	CommandsProcessed uint64
	Errors            uint64
	LastLineNum       int64
	QueueLen          int
	PixelsSet         uint64
	Frames            uint64
	Brightness        byte
	Idle              bool
	Link              LinkStats
}

// Server is the controller. It drains one queued line per loop
// iteration, dispatches it and writes the response.
type Server struct {
	Config     *Config
	Queue      *gcode.Queue
	Validator  *gcode.Validator
	Link       *Link
	Panels     *panel.Panels
	Settings   *settings.Store
	Dispatcher *Dispatcher

	// Sleep implements the delay after errors.
	Sleep func(time.Duration)

	out        []byte
	gotCommand bool
	idle       bool
	hue        byte
	stats      Stats
	statsLock  sync.RWMutex
}

// New creates a Server around a transport connection.
func New(conf *Config, conn io.ReadWriter, panels *panel.Panels, store *settings.Store) *Server {
	s := &Server{
		Config:    conf,
		Queue:     gcode.NewQueue(conf.QueueDepth, conf.MaxCommandSize),
		Validator: &gcode.Validator{RequireChecksum: conf.RequireChecksum, RequireLineNumbers: conf.RequireLineNumbers},
		Panels:    panels,
		Settings:  store,
		Sleep:     time.Sleep,
		out:       make([]byte, 0, 256),
		idle:      true,
	}
	s.stats.LastLineNum, s.stats.Idle = -1, true
	s.Link = NewLink(conn, s.Queue, s.Validator)
	s.Dispatcher = &Dispatcher{Panels: panels}
	if store != nil {
		s.Dispatcher.Settings = store
	}
	return s
}

// AddToLoop implements LoopAdder.
func (s *Server) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(s.Link)
	loop.AddController(fx.PrLvIngest, fx.ControlFunc(s.handleLinkEvents))
	loop.AddController(fx.PrLvDispatch, s)
	loop.AddController(fx.PrLvIdle, fx.ControlFunc(s.animate))
}

// Stats returns a snapshot of the counters.
func (s *Server) Stats() Stats {
	s.statsLock.RLock()
	st := s.stats
	s.statsLock.RUnlock()
	st.QueueLen = s.Queue.Len()
	st.Link = s.Link.Stats()
	if s.Panels != nil {
		st.PixelsSet, st.Frames = s.Panels.PixelsSet(), s.Panels.Frames()
		st.Brightness = s.Panels.Brightness()
	}
	return st
}

// Status implements status.Source.
func (s *Server) Status() *status.ControllerStatus {
	st := s.Stats()
	return &status.ControllerStatus{
		CommandsProcessed: st.CommandsProcessed,
		Errors:            st.Errors,
		LastLine:          st.LastLineNum,
		QueueLen:          uint32(st.QueueLen),
		PixelsSet:         st.PixelsSet,
		Frames:            st.Frames,
		Brightness:        uint32(st.Brightness),
		Idle:              st.Idle,
		LinesRejected:     st.Link.Rejected,
		LinesOverflow:     st.Link.Overflows,
		LinesDropped:      st.Link.Dropped,
	}
}

// Control implements Controller.
func (s *Server) Control(cc fx.ControlContext) error {
	line, ok := s.Queue.Peek()
	if !ok {
		if !s.idle {
			s.idle = true
			s.setIdle(true)
			return s.writeLine(gcode.AppendComment(s.out[:0], gcode.Idle))
		}
		return nil
	}
	if s.idle {
		s.idle = false
		s.setIdle(false)
	}
	s.stopRainbow()

	cmd := gcode.Parse(line)
	if glog.V(3) {
		glog.Infof("parsed %s", cmd.String())
	}
	op := Translate(&cmd)
	err := s.Dispatcher.Dispatch(op, s.Link)
	if _, malformed := op.(Malformed); !malformed {
		s.respond(cmd.LineNum, err)
	}
	s.Queue.AdvanceRead()

	s.statsLock.Lock()
	s.stats.CommandsProcessed++
	if cmd.LineNum >= 0 {
		s.stats.LastLineNum = cmd.LineNum
	}
	if err != nil {
		s.stats.Errors++
	}
	s.statsLock.Unlock()

	if err != nil {
		s.failWait()
	}
	cc.TriggerNext()
	return nil
}

func (s *Server) respond(lineNum int64, err error) {
	if err == nil {
		s.writeLine(gcode.AppendOK(s.out[:0], lineNum))
		return
	}
	perr := gcode.AsError(err, gcode.CodeInvalidParameter)
	if perr.LineNum < 0 {
		perr = perr.WithLineNum(lineNum)
	}
	glog.V(1).Infof("command error: %v", perr)
	s.writeLine(gcode.AppendError(s.out[:0], perr.LineNum, perr.Code, perr.Message))
}

func (s *Server) handleLinkEvents(cc fx.ControlContext) error {
	events := cc.Events().Take(func(ev fx.Event) bool {
		switch ev.(type) {
		case LineRejected, LineOverflow:
			return true
		}
		return false
	})
	for _, ev := range events {
		switch ev := ev.(type) {
		case LineRejected:
			s.writeLine(gcode.AppendError(s.out[:0], ev.Err.LineNum, ev.Err.Code, ev.Err.Message))
			s.statsLock.Lock()
			s.stats.Errors++
			s.statsLock.Unlock()
			s.failWait()
		case LineOverflow:
			s.writeLine(gcode.AppendComment(s.out[:0], fmt.Sprintf("Line too long, max %d bytes", s.Queue.MaxLineSize())))
		}
	}
	return nil
}

// animate shows rainbows until the first command arrives.
func (s *Server) animate(cc fx.ControlContext) error {
	if !s.Config.RainbowsUntilGCode || s.gotCommand || s.Panels == nil {
		return nil
	}
	if err := panel.Rainbow(s.Panels, s.hue, 4); err != nil {
		return err
	}
	s.hue++
	return s.Panels.Show()
}

func (s *Server) stopRainbow() {
	if s.gotCommand {
		return
	}
	s.gotCommand = true
	if s.Config.RainbowsUntilGCode && s.Panels != nil {
		s.Panels.Clear()
	}
}

func (s *Server) setIdle(idle bool) {
	s.statsLock.Lock()
	s.stats.Idle = idle
	s.statsLock.Unlock()
}

func (s *Server) failWait() {
	if s.Config.FailWait > 0 && s.Sleep != nil {
		s.Sleep(s.Config.FailWait)
	}
}

func (s *Server) writeLine(line []byte) error {
	s.out = append(line, '\n')
	_, err := s.Link.Write(s.out)
	if err != nil {
		glog.Errorf("write error: %v", err)
	}
	return err
}
