// network/connection.go
package network

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/gorilla/websocket"
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrSendBufferFull   = errors.New("send buffer full")
	// ErrMalformedFrame marks an unparseable payload. The connection
	// stays open; the caller logs and drops the frame.
	ErrMalformedFrame = errors.New("malformed frame")
)

// sendBufferSize bounds the per-connection outbound queue. A client that
// cannot drain this many frames is dropped rather than allowed to stall
// broadcasts to everyone else.
const sendBufferSize = 64

type Connection interface {
	Send(frameType string, payload interface{}) error
	ReadFrame() (*Frame, error)
	Close() error
	RemoteAddr() net.Addr
}

// WSConnection wraps a websocket with a dedicated writer goroutine.
// Send only enqueues, so one slow peer never blocks a broadcast; frames
// for a single connection are delivered in enqueue order.
type WSConnection struct {
	conn      *websocket.Conn
	out       chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	c := &WSConnection{
		conn:   conn,
		out:    make(chan []byte, sendBufferSize),
		closed: make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

func (c *WSConnection) writeLoop() {
	for {
		select {
		case <-c.closed:
			return
		case buf := <-c.out:
			if err := c.conn.WriteMessage(websocket.TextMessage, buf); err != nil {
				c.Close()
				return
			}
		}
	}
}

// Send marshals and enqueues one frame, fire-and-forget. Errors mean the
// frame was not queued; they never indicate delivery.
func (c *WSConnection) Send(frameType string, payload interface{}) error {
	buf, err := EncodeFrame(frameType, payload)
	if err != nil {
		return err
	}

	select {
	case <-c.closed:
		return ErrConnectionClosed
	case c.out <- buf:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// ReadFrame blocks on the next inbound frame. A transport error ends the
// caller's read loop; a parse failure is reported as ErrMalformedFrame
// and the connection stays usable.
func (c *WSConnection) ReadFrame() (*Frame, error) {
	_, raw, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	frame, err := DecodeFrame(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return frame, nil
}

func (c *WSConnection) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.conn.Close()
	})
	return nil
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
