package control

import (
	"bufio"
	"net"
	"os"

	"github.com/riverwm/river/internal/command"
	"github.com/riverwm/river/internal/logger"
	"github.com/riverwm/river/internal/wire"
)

// Loop serializes a fn against every other command and layout-protocol
// request touching Root (spec.md §5: "no worker threads, no locks, no
// shared mutable state across threads"). internal/root.Root implements
// it; Do blocks until fn has run on Root's single dispatch goroutine.
type Loop interface {
	Do(fn func())
}

// Server listens on a Unix socket and serves one control-protocol
// request per connection: read one frame, dispatch it, write one reply
// frame, close (spec.md §6).
type Server struct {
	ln         net.Listener
	socketPath string
	dispatcher *command.Dispatcher
	runtime    command.Runtime
	loop       Loop
}

// Listen removes any stale socket at path and starts listening (spec.md
// §6: the control socket is local, not networked).
func Listen(path string, rt command.Runtime, loop Loop, dispatcher *command.Dispatcher) (*Server, error) {
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	return &Server{ln: ln, socketPath: path, dispatcher: dispatcher, runtime: rt, loop: loop}, nil
}

// Serve accepts connections until the listener is closed. Each
// connection is read and replied to on its own goroutine, but the
// dispatch itself is handed to loop.Do so it runs serialized against
// every other command and layout-protocol request (spec.md §9:
// "commands from a single control client are applied in receive order;
// cross-client ordering is arbitrary" — arbitrary interleaving across
// connections is fine, concurrent execution is not).
func (s *Server) Serve() error {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return err
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	raw, err := wire.ReadFrame(r)
	if err != nil {
		logger.Warnf("control: read request: %v", err)
		return
	}
	req, err := unmarshalRequest(raw)
	if err != nil {
		logger.Warnf("control: malformed request: %v", err)
		return
	}

	var out string
	var dispatchErr error
	s.loop.Do(func() {
		out, dispatchErr = s.dispatcher.Dispatch(s.runtime, req.Seat, req.Argv)
	})
	var reply Reply
	if dispatchErr != nil {
		reply = Reply{OK: false, Message: dispatchErr.Error()}
	} else {
		reply = Reply{OK: true, Output: out}
	}

	if err := wire.WriteFrame(conn, marshalReply(reply)); err != nil {
		logger.Warnf("control: write reply: %v", err)
	}
}

// Close stops accepting connections and removes the socket file.
func (s *Server) Close() error {
	err := s.ln.Close()
	_ = os.Remove(s.socketPath)
	return err
}
