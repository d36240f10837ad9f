// Package websocket serves the line protocol over WebSocket.
//
// The controller listens on ws://[host]:port/path, one host at a time.
// A newer connection replaces the current one.
package websocket

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/telecortex.go/pkg/transport"
)

func init() {
	transport.Register("ws", transport.Scheme{Open: Open, Dial: Dial})
}

type session struct {
	conn *websocket.Conn
	done chan struct{}
}

// Server accepts WebSocket connections and presents the active one as
// a byte stream.
type Server struct {
	Listener net.Listener

	httpServer *http.Server
	sessionCh  chan *session
	closeCh    chan struct{}
	closeOnce  sync.Once

	lock    sync.Mutex
	current *session
}

// Listen starts serving on address with the path.
func Listen(address, path string) (*Server, error) {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}
	s := &Server{
		Listener:  ln,
		sessionCh: make(chan *session),
		closeCh:   make(chan struct{}),
	}
	mux := http.NewServeMux()
	mux.Handle(path, websocket.Handler(s.serve))
	s.httpServer = &http.Server{Handler: mux}
	go s.httpServer.Serve(ln)
	glog.Infof("WebSocket listening on %s%s", ln.Addr(), path)
	return s, nil
}

// Open opens the controller side.
func Open(u *url.URL) (io.ReadWriteCloser, error) {
	path := u.Path
	if path == "" {
		path = "/"
	}
	return Listen(u.Host, path)
}

// Dial opens the host side.
func Dial(u *url.URL) (io.ReadWriteCloser, error) {
	origin := "http://" + u.Host + "/"
	return websocket.Dial(u.String(), "", origin)
}

func (s *Server) serve(conn *websocket.Conn) {
	glog.Infof("WebSocket connected from %s", conn.Request().RemoteAddr)
	sess := &session{conn: conn, done: make(chan struct{})}
	select {
	case s.sessionCh <- sess:
	case <-s.closeCh:
		return
	}
	select {
	case <-sess.done:
	case <-s.closeCh:
	}
	glog.Infof("WebSocket disconnected from %s", conn.Request().RemoteAddr)
}

func (s *Server) active() *session {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.current
}

func (s *Server) swap(sess *session) {
	s.lock.Lock()
	prev := s.current
	s.current = sess
	s.lock.Unlock()
	if prev != nil {
		close(prev.done)
	}
}

// Read implements io.Reader. It blocks until a host is connected.
func (s *Server) Read(p []byte) (int, error) {
	for {
		sess := s.active()
		if sess == nil {
			select {
			case sess = <-s.sessionCh:
				s.swap(sess)
			case <-s.closeCh:
				return 0, io.EOF
			}
		}
		n, err := sess.conn.Read(p)
		if err == nil || n > 0 {
			return n, nil
		}
		s.lock.Lock()
		if s.current == sess {
			s.current = nil
			close(sess.done)
		}
		s.lock.Unlock()
	}
}

// Write implements io.Writer. Output is discarded when no host is
// connected.
func (s *Server) Write(p []byte) (int, error) {
	sess := s.active()
	if sess == nil {
		glog.V(2).Infof("WebSocket no host, dropped %q", p)
		return len(p), nil
	}
	if _, err := sess.conn.Write(p); err != nil {
		glog.Warningf("WebSocket write error: %v", err)
	}
	return len(p), nil
}

// Close implements io.Closer.
func (s *Server) Close() (err error) {
	s.closeOnce.Do(func() {
		close(s.closeCh)
		err = s.httpServer.Shutdown(context.Background())
	})
	return
}
