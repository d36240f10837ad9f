package server

import (
	"fmt"
	"io"

	"github.com/golang/glog"

	fx "github.com/robotalks/telecortex.go/pkg/framework"
	"github.com/robotalks/telecortex.go/pkg/panel"
	"github.com/robotalks/telecortex.go/pkg/settings"
	"github.com/robotalks/telecortex.go/pkg/status"
	"github.com/robotalks/telecortex.go/pkg/transport"
	"github.com/robotalks/telecortex.go/pkg/transport/mqtt"
)

// NoEEPROM as EEPROMFile disables settings persistence.
const NoEEPROM = "none"

// Env is a Server with the resources it was built from.
type Env struct {
	*Server
	Publisher *status.Publisher

	closers []io.Closer
}

// NewServer builds a Server from the config: the panel layout, the
// settings EEPROM, the transport and optionally status publishing.
func (c *Config) NewServer() (*Env, error) {
	layout := panel.DefaultLayout()
	if c.LayoutFile != "" {
		var err error
		if layout, err = panel.LoadLayout(c.LayoutFile); err != nil {
			return nil, fmt.Errorf("load layout %s error: %w", c.LayoutFile, err)
		}
	}
	if c.Brightness < 0 || c.Brightness > 255 {
		return nil, fmt.Errorf("brightness %d out of range", c.Brightness)
	}

	e := &Env{}
	built := false
	defer func() {
		if !built {
			e.Close()
		}
	}()

	outputs := panel.MultiOutput{&panel.LogOutput{Verbosity: 4}}
	panels := panel.New(layout, outputs)

	storage, err := c.openStorage()
	if err != nil {
		return nil, err
	}
	if closer, ok := storage.(io.Closer); ok {
		e.closers = append(e.closers, closer)
	}
	store := settings.NewStore(storage, settings.Settings{
		ControllerID: c.ControllerID,
		Brightness:   byte(c.Brightness),
	})
	store.Apply = func(s settings.Settings) { panels.SetBrightness(s.Brightness) }
	if err := store.Load(); err != nil {
		glog.Warningf("settings not loaded, using defaults: %v", err)
		store.Reset()
	}

	conn, err := transport.Open(c.TransportURL)
	if err != nil {
		return nil, fmt.Errorf("open transport %s error: %w", c.TransportURL, err)
	}
	e.closers = append(e.closers, conn)
	e.Server = New(c, conn, panels, store)

	if c.StatusURL != "" {
		meta := status.Meta{Description: "LED panel controller", Transport: c.TransportURL}
		for _, p := range layout.Panels {
			meta.Panels = append(meta.Panels, p.Name)
			meta.Pixels = append(meta.Pixels, p.Length)
		}
		id := store.Current().ControllerID
		pub, err := status.NewPublisher(c.StatusURL, id, meta, e.Server)
		if err != nil {
			return nil, fmt.Errorf("create status publisher error: %w", err)
		}
		pub.Interval = c.StatusInterval
		e.Publisher = pub
		panels.Output = append(outputs, &mqtt.FrameOutput{Broker: pub.Broker, ControllerID: id})
	}
	built = true
	return e, nil
}

func (c *Config) openStorage() (settings.Storage, error) {
	switch c.EEPROMFile {
	case NoEEPROM:
		return nil, nil
	case "":
		return settings.NewMemEEPROM(settings.DefaultSize), nil
	}
	eeprom, err := settings.OpenFileEEPROM(c.EEPROMFile, settings.DefaultSize)
	if err != nil {
		return nil, fmt.Errorf("open EEPROM %s error: %w", c.EEPROMFile, err)
	}
	return eeprom, nil
}

// AddToLoop implements LoopAdder.
func (e *Env) AddToLoop(loop *fx.Loop) {
	e.Server.AddToLoop(loop)
	if e.Publisher != nil {
		loop.Add(e.Publisher)
	}
}

// Close releases the transport and the EEPROM.
func (e *Env) Close() error {
	var errs fx.AggregatedError
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs.Add(e.closers[i].Close())
	}
	e.closers = nil
	return errs.Aggregate()
}
