package relay

import (
	"net"
	"sync"

	"github.com/pion/logging"

	"hingechat/pkg/wire"
)

// DefaultSendQueueSize is the recommended bound on a Connection's outbound
// queue: enough to absorb a burst without the producer blocking
// indefinitely, small enough that a wedged peer doesn't grow without
// limit.
const DefaultSendQueueSize = 1024

// Connection is the per-TCP-socket state the relay keeps for one peer. It
// owns a send worker draining its own bounded queue and is read from by
// the Server's per-connection recv worker.
type Connection struct {
	id   int
	nick string
	ip   string

	conn   net.Conn
	reader *wire.StreamReader
	writer *wire.StreamWriter

	sendCh chan *wire.Message

	closeOnce sync.Once
	closed    chan struct{}

	log logging.LeveledLogger
}

// NewConnection wraps an accepted net.Conn. sendQueueSize <= 0 uses
// DefaultSendQueueSize.
func NewConnection(conn net.Conn, sendQueueSize int, log logging.LeveledLogger) *Connection {
	if sendQueueSize <= 0 {
		sendQueueSize = DefaultSendQueueSize
	}
	return &Connection{
		conn:   conn,
		reader: wire.NewStreamReader(conn),
		writer: wire.NewStreamWriter(conn),
		sendCh: make(chan *wire.Message, sendQueueSize),
		closed: make(chan struct{}),
		log:    log,
	}
}

// ID returns the connection's registered id, or 0 before registration.
func (c *Connection) ID() int { return c.id }

// Nick returns the connection's registered nick, or "" before registration.
func (c *Connection) Nick() string { return c.nick }

// IP returns the connection's source IP, or "" before registration.
func (c *Connection) IP() string { return c.ip }

// ReadMessage reads the next frame from the socket.
func (c *Connection) ReadMessage() (*wire.Message, error) {
	return c.reader.ReadMessage()
}

// Send enqueues msg for the send worker. It returns ErrConnectionClosed
// after Close and ErrSendQueueFull when the bounded queue is full; per
// the queueing policy, callers drop rather than block.
func (c *Connection) Send(msg *wire.Message) error {
	select {
	case <-c.closed:
		return ErrConnectionClosed
	default:
	}
	select {
	case c.sendCh <- msg:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// RunSendWorker drains the send queue and writes frames to the socket
// until Close is called or a write fails. Run it in its own goroutine
// for the Connection's lifetime.
func (c *Connection) RunSendWorker() {
	for {
		select {
		case <-c.closed:
			return
		case msg := <-c.sendCh:
			if err := c.writer.WriteMessage(msg); err != nil {
				if c.log != nil {
					c.log.Warnf("connection %d: write failed: %v", c.id, err)
				}
				c.Close()
				return
			}
		}
	}
}

// Close closes the underlying socket and signals both workers to exit.
// Safe to call more than once and from either worker.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}

// Done returns a channel closed when the Connection is closed.
func (c *Connection) Done() <-chan struct{} { return c.closed }
