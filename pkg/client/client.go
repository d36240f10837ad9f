// Package client talks to a controller from the host side.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/telecortex.go/pkg/gcode"
	"github.com/robotalks/telecortex.go/pkg/transport"
)

// DefaultTimeout is how long a command waits for its response.
const DefaultTimeout = 2 * time.Second

// ErrClosed is returned after the connection is closed.
var ErrClosed = errors.New("connection closed")

// Client sends commands and matches responses. Commands are sent one
// at a time.
type Client struct {
	Conn    io.ReadWriteCloser
	Writer  *gcode.LineWriter
	Timeout time.Duration
	// OnComment receives comments not preceding a response, e.g. ";IDLE".
	OnComment func(string)

	respCh       chan Response
	closeCh      chan struct{}
	once         sync.Once
	doLock       sync.Mutex
	comments     []string
	commentsLock sync.Mutex
}

// Dial connects the host side of a transport.
func Dial(rawURL string) (*Client, error) {
	conn, err := transport.Dial(rawURL)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// New creates a Client and starts reading responses.
func New(conn io.ReadWriteCloser) *Client {
	c := &Client{
		Conn:    conn,
		Writer:  gcode.NewLineWriter(conn),
		Timeout: DefaultTimeout,
		respCh:  make(chan Response, 1),
		closeCh: make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Close closes the connection.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.closeCh)
		err = c.Conn.Close()
	})
	return err
}

func (c *Client) readLoop() {
	scanner := bufio.NewScanner(c.Conn)
	for scanner.Scan() {
		resp, comment, err := ParseResponse(scanner.Bytes())
		if err != nil {
			glog.Warningf("%v", err)
			continue
		}
		if comment {
			c.comment(resp.Message)
			continue
		}
		select {
		case c.respCh <- resp:
		case <-c.closeCh:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		glog.V(1).Infof("read error: %v", err)
	}
	close(c.respCh)
}

func (c *Client) comment(msg string) {
	if msg == gcode.Idle {
		if fn := c.OnComment; fn != nil {
			fn(msg)
		}
		return
	}
	c.commentsLock.Lock()
	c.comments = append(c.comments, msg)
	c.commentsLock.Unlock()
}

// Do sends a command and waits for its response. An error response is
// returned as the Response, not as error.
func (c *Client) Do(ctx context.Context, cmd []byte) (*Response, error) {
	c.doLock.Lock()
	defer c.doLock.Unlock()
	c.takeComments()
	lineNum, err := c.Writer.WriteCommand(cmd)
	if err != nil {
		return nil, err
	}
	return c.wait(ctx, lineNum)
}

// ResetLineNum sends M110 and waits for the response.
func (c *Client) ResetLineNum(ctx context.Context, n int64) (*Response, error) {
	c.doLock.Lock()
	defer c.doLock.Unlock()
	c.takeComments()
	if err := c.Writer.ResetLineNum(n); err != nil {
		return nil, err
	}
	return c.wait(ctx, n)
}

func (c *Client) wait(ctx context.Context, lineNum int64) (*Response, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case resp, ok := <-c.respCh:
			if !ok {
				return nil, ErrClosed
			}
			if lineNum >= 0 && resp.LineNum >= 0 && resp.LineNum != lineNum {
				glog.V(1).Infof("stale response: %s", resp.String())
				continue
			}
			resp.Comments = c.takeComments()
			return &resp, nil
		case <-timer.C:
			return nil, fmt.Errorf("response timeout after %v", timeout)
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.closeCh:
			return nil, ErrClosed
		}
	}
}

func (c *Client) takeComments() (comments []string) {
	c.commentsLock.Lock()
	comments, c.comments = c.comments, nil
	c.commentsLock.Unlock()
	return
}
