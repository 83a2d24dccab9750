// Package relay implements the multiplexing server: it accepts one TCP
// connection per peer, enforces the version/registration preamble, and
// forwards handshake and loop frames between registered peers by id.
// The server never inspects encrypted payloads; it only routes by the
// route field and reacts to a handful of control commands.
package relay

import (
	"net"
	"strconv"
	"sync"

	"github.com/pion/logging"

	"hingechat/pkg/wire"
)

// ServerConfig configures a Server.
type ServerConfig struct {
	// SendQueueSize bounds each Connection's outbound queue. <= 0 uses
	// DefaultSendQueueSize.
	SendQueueSize int

	// LoggerFactory creates the server's logger. If nil, logging is
	// disabled.
	LoggerFactory logging.LoggerFactory
}

// Server is the relay's TCP multiplexer.
type Server struct {
	registry      *ClientRegistry
	sendQueueSize int
	log           logging.LeveledLogger

	mu           sync.Mutex
	listener     net.Listener
	shuttingDown bool
}

// NewServer creates a Server with an empty registry.
func NewServer(config ServerConfig) *Server {
	size := config.SendQueueSize
	if size <= 0 {
		size = DefaultSendQueueSize
	}
	s := &Server{
		registry:      NewClientRegistry(),
		sendQueueSize: size,
	}
	if config.LoggerFactory != nil {
		s.log = config.LoggerFactory.NewLogger("relay")
	}
	return s
}

// Registry returns the server's ClientRegistry, mainly for tests and
// diagnostics.
func (s *Server) Registry() *ClientRegistry { return s.registry }

// ListenAndServe listens on addr and accepts connections until Shutdown
// is called or Listen/Accept fails.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	if s.log != nil {
		s.log.Infof("relay listening on %s", addr)
	}

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			down := s.shuttingDown
			s.mu.Unlock()
			if down {
				return nil
			}
			return err
		}
		go s.handleConn(conn)
	}
}

// Shutdown broadcasts ERR(SERVER_SHUTDOWN) to every registered
// Connection, closes them, and stops the listener.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	s.shuttingDown = true
	ln := s.listener
	s.mu.Unlock()

	s.registry.ForEach(func(conn *Connection) {
		conn.Send(wire.NewMessage(wire.CmdErr, wire.ServerRoute, conn.id).WithError(wire.ErrServerShutdown))
		conn.Close()
	})

	if ln != nil {
		return ln.Close()
	}
	return nil
}

func (s *Server) handleConn(netConn net.Conn) {
	conn := NewConnection(netConn, s.sendQueueSize, s.log)
	go conn.RunSendWorker()

	ip := remoteIP(netConn)
	if !s.enforcePreamble(conn, ip) {
		conn.Close()
		return
	}

	if s.log != nil {
		s.log.Infof("registered connection id=%d nick=%s", conn.id, conn.nick)
	}

	s.serviceLoop(conn)

	s.registry.Remove(conn.id)
	conn.Close()

	if s.log != nil {
		s.log.Infof("connection id=%d closed", conn.id)
	}
}

func remoteIP(conn net.Conn) string {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return conn.RemoteAddr().String()
	}
	return host
}

// enforcePreamble runs the sequential, synchronous VERSION/REG exchange.
// It returns false if the connection should be closed without entering
// the service loop. Rejection ERR frames are written directly rather than
// queued, so they reach the peer before handleConn closes the socket.
func (s *Server) enforcePreamble(conn *Connection, ip string) bool {
	versionMsg, err := conn.ReadMessage()
	if err != nil {
		return false
	}
	if versionMsg.Command != wire.CmdVersion || versionMsg.Data != wire.ProtocolVersion {
		conn.writer.WriteMessage(wire.NewMessage(wire.CmdErr, wire.ServerRoute, 0).WithError(wire.ErrProtocolVersionMismatch))
		return false
	}

	regMsg, err := conn.ReadMessage()
	if err != nil {
		return false
	}
	if regMsg.Command != wire.CmdRegister {
		conn.writer.WriteMessage(wire.NewMessage(wire.CmdErr, wire.ServerRoute, 0).WithError(wire.ErrInvalidCommand))
		return false
	}

	id, err := s.registry.Register(regMsg.Data, ip, conn)
	if err != nil {
		conn.writer.WriteMessage(wire.NewMessage(wire.CmdErr, wire.ServerRoute, 0).WithError(nickErrorCode(err)))
		return false
	}

	ack := wire.NewMessage(wire.CmdSendID, wire.ServerRoute, id).WithData(strconv.Itoa(id))
	return conn.Send(ack) == nil
}

func nickErrorCode(err error) wire.ErrorCode {
	if err == ErrNickAlreadyInUse {
		return wire.ErrNickInUse
	}
	return wire.ErrInvalidNick
}

func (s *Server) serviceLoop(conn *Connection) {
	for {
		msg, err := conn.ReadMessage()
		if err != nil {
			if s.log != nil {
				s.log.Debugf("connection %d: read ended: %v", conn.id, err)
			}
			return
		}
		if !s.dispatch(conn, msg) {
			return
		}
	}
}

// dispatch handles one frame from conn's recv worker. It returns false
// when the connection should close.
func (s *Server) dispatch(conn *Connection, msg *wire.Message) bool {
	switch {
	case msg.Command == wire.CmdEnd && msg.Dst() == wire.ServerRoute:
		return false
	case msg.Command == wire.CmdEnd:
		return s.forward(conn, msg)
	case msg.Command == wire.CmdReqID:
		s.handleReqID(conn, msg)
		return true
	case msg.Command == wire.CmdReqNick:
		s.handleReqNick(conn, msg)
		return true
	case msg.Command.IsForwardable():
		return s.forward(conn, msg)
	default:
		conn.Send(wire.NewMessage(wire.CmdErr, wire.ServerRoute, conn.id).WithError(wire.ErrInvalidCommand))
		return false
	}
}

func (s *Server) handleReqID(conn *Connection, msg *wire.Message) {
	reply := ""
	if id, ok := s.registry.IDForNick(msg.Data); ok {
		reply = strconv.Itoa(id)
	}
	conn.Send(wire.NewMessage(wire.CmdSendID, wire.ServerRoute, conn.id).WithData(reply))
}

func (s *Server) handleReqNick(conn *Connection, msg *wire.Message) {
	reply := ""
	if id, err := strconv.Atoi(msg.Data); err == nil {
		if nick, ok := s.registry.NickForID(id); ok {
			reply = nick
		}
	}
	conn.Send(wire.NewMessage(wire.CmdSendNick, wire.ServerRoute, conn.id).WithData(reply))
}

// forward routes a handshake/loop frame to the Connection registered
// under msg.Dst(), rewriting the source id to the sender's real id.
func (s *Server) forward(conn *Connection, msg *wire.Message) bool {
	if msg.Dst() == conn.id {
		conn.Send(wire.NewMessage(wire.CmdErr, wire.ServerRoute, conn.id).WithError(wire.ErrSelfConnect))
		return true
	}

	dst, ok := s.registry.ByID(msg.Dst())
	if !ok {
		conn.Send(wire.NewMessage(wire.CmdErr, wire.ServerRoute, conn.id).WithError(wire.ErrNickNotFound))
		return true
	}

	forwarded := *msg
	forwarded.Route = [2]int{conn.id, msg.Dst()}
	if err := dst.Send(&forwarded); err != nil {
		conn.Send(wire.NewMessage(wire.CmdErr, wire.ServerRoute, conn.id).WithError(wire.ErrNetworkError))
	}
	return true
}
