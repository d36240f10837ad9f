package transport

import (
	"errors"
	"io"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	opened := errors.New("opened")
	Register("test", Scheme{Open: func(u *url.URL) (io.ReadWriteCloser, error) {
		require.Equal(t, "/x", u.Path)
		return nil, opened
	}})
	require.Contains(t, Schemes(), "test")

	_, err := Open("test:///x")
	require.Equal(t, opened, err)
	_, err = Dial("test:///x")
	require.Error(t, err)
	_, err = Open("nope://x")
	require.Error(t, err)
}

func TestPipe(t *testing.T) {
	ctl, host := Pipe()
	go func() {
		host.Write([]byte("M2610\n"))
	}()
	buf := make([]byte, 16)
	n, err := ctl.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "M2610\n", string(buf[:n]))

	go func() {
		ctl.Write([]byte("OK\n"))
	}()
	n, err = host.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "OK\n", string(buf[:n]))

	require.NoError(t, host.Close())
	_, err = ctl.Read(buf)
	require.Equal(t, io.EOF, err)
}
