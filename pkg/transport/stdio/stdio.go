// Package stdio serves the line protocol on standard input and output.
package stdio

import (
	"io"
	"net/url"
	"os"

	"github.com/robotalks/telecortex.go/pkg/transport"
)

func init() {
	transport.Register("stdio", transport.Scheme{Open: Open})
}

type stdio struct {
	io.Reader
	io.Writer
}

func (s *stdio) Close() error {
	return nil
}

// Open opens stdin/stdout.
func Open(*url.URL) (io.ReadWriteCloser, error) {
	return &stdio{Reader: os.Stdin, Writer: os.Stdout}, nil
}
