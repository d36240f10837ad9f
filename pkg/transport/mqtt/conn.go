package mqtt

import (
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/robotalks/telecortex.go/pkg/transport"
)

// Topic suffixes under prefix/controller-id/.
const (
	CommandTopic  = "gcode"
	ResponseTopic = "resp"
	FrameTopic    = "frame"
	StatusTopic   = "status"
	MetaTopic     = "meta"
)

// DefaultConnectTimeout bounds the initial broker connection.
const DefaultConnectTimeout = 5 * time.Second

func init() {
	transport.Register("mqtt", transport.Scheme{Open: Open, Dial: Dial})
}

// Conn is a byte stream over a pair of topics. Each Write is published
// as one message, received messages are concatenated for Read.
type Conn struct {
	Broker   *Broker
	SubTopic string
	PubTopic string

	sub     *Subscription
	msgCh   chan []byte
	pending []byte
	closeCh chan struct{}
	once    sync.Once
}

// NewConn creates a Conn on topics of the broker, not subscribed yet.
func NewConn(b *Broker, sub, pub string) *Conn {
	return &Conn{
		Broker:   b,
		SubTopic: sub,
		PubTopic: pub,
		msgCh:    make(chan []byte, 64),
		closeCh:  make(chan struct{}),
	}
}

// SplitURL separates the controller ID, the last path element, from
// the topic prefix.
func SplitURL(u *url.URL) (prefix, id string, err error) {
	p := strings.Trim(u.Path, "/")
	if p == "" {
		return "", "", fmt.Errorf("controller ID missing in %q", u.String())
	}
	dir, id := path.Split(p)
	return dir, id, nil
}

// Open opens the controller side.
func Open(u *url.URL) (io.ReadWriteCloser, error) {
	return connect(u, CommandTopic, ResponseTopic)
}

// Dial opens the host side.
func Dial(u *url.URL) (io.ReadWriteCloser, error) {
	return connect(u, ResponseTopic, CommandTopic)
}

func connect(u *url.URL, sub, pub string) (*Conn, error) {
	prefix, id, err := SplitURL(u)
	if err != nil {
		return nil, err
	}
	b := NewBroker(clientOptions(u), prefix)
	c := NewConn(b, id+"/"+sub, id+"/"+pub)
	c.Subscribe()
	token := b.Connect()
	if !token.WaitTimeout(DefaultConnectTimeout) {
		b.Close()
		return nil, fmt.Errorf("connect %s timeout", u.Host)
	}
	if err := token.Error(); err != nil {
		b.Close()
		return nil, err
	}
	return c, nil
}

// Subscribe starts receiving messages.
func (c *Conn) Subscribe() {
	if c.sub == nil {
		c.sub = c.Broker.Sub(c.SubTopic, c.handleMsg)
	}
}

func (c *Conn) handleMsg(_ string, payload []byte) {
	msg := make([]byte, len(payload))
	copy(msg, payload)
	select {
	case c.msgCh <- msg:
	case <-c.closeCh:
	}
}

// Read implements io.Reader.
func (c *Conn) Read(p []byte) (int, error) {
	if len(c.pending) == 0 {
		select {
		case msg := <-c.msgCh:
			c.pending = msg
		case <-c.closeCh:
			return 0, io.EOF
		}
	}
	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

// Write implements io.Writer.
func (c *Conn) Write(p []byte) (int, error) {
	select {
	case <-c.closeCh:
		return 0, io.ErrClosedPipe
	default:
	}
	payload := make([]byte, len(p))
	copy(payload, p)
	token := c.Broker.Pub(c.PubTopic, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close implements io.Closer.
func (c *Conn) Close() (err error) {
	c.once.Do(func() {
		close(c.closeCh)
		if c.sub != nil {
			err = c.sub.Close()
		}
		if e := c.Broker.Close(); err == nil {
			err = e
		}
	})
	return
}
