// Package transport opens byte streams carrying the line protocol.
//
// A transport is selected by URL scheme. The controller side uses
// Open, the host side uses Dial. Implementations register themselves
// in init, import transport/all to get all of them.
package transport

import (
	"fmt"
	"io"
	"net/url"
	"sort"
	"sync"
)

// OpenFunc opens a stream from a parsed URL.
type OpenFunc func(*url.URL) (io.ReadWriteCloser, error)

// Scheme is a registered transport.
type Scheme struct {
	// Open opens the controller side.
	Open OpenFunc
	// Dial opens the host side.
	Dial OpenFunc
}

var (
	schemes     = make(map[string]Scheme)
	schemesLock sync.RWMutex
)

// Register registers a transport for a URL scheme.
func Register(name string, scheme Scheme) {
	schemesLock.Lock()
	schemes[name] = scheme
	schemesLock.Unlock()
}

// Schemes lists registered schemes.
func Schemes() []string {
	schemesLock.RLock()
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	schemesLock.RUnlock()
	sort.Strings(names)
	return names
}

// Open opens the controller side of a transport.
func Open(rawURL string) (io.ReadWriteCloser, error) {
	u, scheme, err := lookup(rawURL)
	if err != nil {
		return nil, err
	}
	if scheme.Open == nil {
		return nil, fmt.Errorf("transport %q can't be opened by controller", u.Scheme)
	}
	return scheme.Open(u)
}

// Dial opens the host side of a transport.
func Dial(rawURL string) (io.ReadWriteCloser, error) {
	u, scheme, err := lookup(rawURL)
	if err != nil {
		return nil, err
	}
	if scheme.Dial == nil {
		return nil, fmt.Errorf("transport %q can't be dialed by host", u.Scheme)
	}
	return scheme.Dial(u)
}

func lookup(rawURL string) (*url.URL, Scheme, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, Scheme{}, fmt.Errorf("invalid transport URL: %w", err)
	}
	schemesLock.RLock()
	scheme, ok := schemes[u.Scheme]
	schemesLock.RUnlock()
	if !ok {
		return nil, Scheme{}, fmt.Errorf("unknown transport URL scheme: %q", u.Scheme)
	}
	return u, scheme, nil
}

// Pipe connects a controller side and a host side in memory.
func Pipe() (controller, host io.ReadWriteCloser) {
	cr, hw := io.Pipe()
	hr, cw := io.Pipe()
	return &pipeEnd{PipeReader: cr, PipeWriter: cw}, &pipeEnd{PipeReader: hr, PipeWriter: hw}
}

type pipeEnd struct {
	*io.PipeReader
	*io.PipeWriter
}

// Close implements io.Closer.
func (p *pipeEnd) Close() error {
	p.PipeReader.Close()
	return p.PipeWriter.Close()
}
