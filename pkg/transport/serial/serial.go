// Package serial carries the line protocol over a serial port.
//
// URL: serial:///dev/ttyUSB0?baud=9600
package serial

import (
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/golang/glog"
	"go.bug.st/serial"

	"github.com/robotalks/telecortex.go/pkg/transport"
)

// DefaultBaudRate is used when the URL doesn't specify baud.
const DefaultBaudRate = 9600

func init() {
	transport.Register("serial", transport.Scheme{Open: Open, Dial: Open})
}

// ModeFromURL extracts the port name and mode.
func ModeFromURL(u *url.URL) (string, *serial.Mode, error) {
	name := u.Path
	if name == "" {
		name = u.Opaque
	}
	if name == "" {
		return "", nil, fmt.Errorf("serial port missing in %q", u.String())
	}
	mode := &serial.Mode{
		BaudRate: DefaultBaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	if val := u.Query().Get("baud"); val != "" {
		baud, err := strconv.Atoi(val)
		if err != nil || baud <= 0 {
			return "", nil, fmt.Errorf("invalid baud rate %q", val)
		}
		mode.BaudRate = baud
	}
	return name, mode, nil
}

// Open opens the serial port. Both sides open the same way.
func Open(u *url.URL) (io.ReadWriteCloser, error) {
	name, mode, err := ModeFromURL(u)
	if err != nil {
		return nil, err
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	glog.Infof("serial %s opened at %d baud", name, mode.BaudRate)
	return port, nil
}

// Ports lists available serial ports.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}
