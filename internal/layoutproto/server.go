package layoutproto

import (
	"bufio"
	"net"
	"os"
	"path/filepath"

	"github.com/riverwm/river/internal/layout"
	"github.com/riverwm/river/internal/logger"
	"github.com/riverwm/river/internal/slotmap"
	"github.com/riverwm/river/internal/wire"
)

// Binder is the subset of internal/root.Root the layout protocol server
// drives: picking which output a newly-announced namespace binds to,
// and forwarding the decoded requests into Root's applyPending cycle
// (spec.md §4.6).
type Binder interface {
	OutputWantingNamespace(namespace string) (slotmap.Key, bool)
	AttachLayout(outKey slotmap.Key, namespace string, version layout.ProtocolVersion, sender layout.Sender) error
	DetachLayout(outKey slotmap.Key)
	PushViewDimensions(outKey slotmap.Key, d layout.Dimensions)
	CommitLayoutNamed(outKey slotmap.Key, layoutName string, serial uint32)
}

// Loop serializes a fn against every other command and layout-protocol
// request touching Root (spec.md §5). internal/root.Root implements it;
// Do blocks until fn has run on Root's single dispatch goroutine.
type Loop interface {
	Do(fn func())
}

// Server listens on a single Unix socket, socketDir/<namespace>.sock,
// for the namespace passed to Listen, so a layout client for namespace
// "rivertile" dials socketDir/rivertile.sock. The namespace a client
// announces selects the output it is bound to.
type Server struct {
	socketDir string
	binder    Binder
	loop      Loop

	ln net.Listener
}

// Listen starts accepting layout-client connections for namespace on
// socketDir/<namespace>.sock.
func Listen(socketDir, namespace string, binder Binder, loop Loop) (*Server, error) {
	if err := os.MkdirAll(socketDir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(socketDir, namespace+".sock")
	_ = os.Remove(path)
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, err
	}
	return &Server{socketDir: socketDir, binder: binder, loop: loop, ln: ln}, nil
}

// Serve accepts connections until the listener is closed.
func (s *Server) Serve() error {
	for {
		c, err := s.ln.Accept()
		if err != nil {
			return err
		}
		go s.handle(c)
	}
}

func (s *Server) Close() error { return s.ln.Close() }

// handle runs the lifetime of one layout-client connection: read the
// announce, attempt to bind an output, then loop decoding requests until
// the client destroys its binding or disconnects.
func (s *Server) handle(c net.Conn) {
	defer c.Close()
	r := bufio.NewReader(c)

	raw, err := wire.ReadFrame(r)
	if err != nil {
		logger.Warnf("layoutproto: read announce: %v", err)
		return
	}
	kind, payload, err := unwrap(raw)
	if err != nil || kind != reqAnnounce {
		logger.Warnf("layoutproto: expected announce, got kind=%d err=%v", kind, err)
		return
	}
	a, err := unmarshalAnnounce(payload)
	if err != nil {
		logger.Warnf("layoutproto: malformed announce: %v", err)
		return
	}

	var outKey slotmap.Key
	var ok bool
	s.loop.Do(func() {
		outKey, ok = s.binder.OutputWantingNamespace(a.Namespace)
	})
	if !ok {
		_ = wire.WriteFrame(c, marshalNamespaceInUse())
		return
	}

	conn := &Conn{w: c}
	version := layout.ProtocolVersion(a.Version)
	if version < layout.V1 {
		version = layout.V1
	}
	var attachErr error
	s.loop.Do(func() {
		attachErr = s.binder.AttachLayout(outKey, a.Namespace, version, conn)
	})
	if attachErr != nil {
		logger.Warnf("layoutproto: attach: %v", attachErr)
		return
	}
	defer s.loop.Do(func() { s.binder.DetachLayout(outKey) })

	for {
		raw, err := wire.ReadFrame(r)
		if err != nil {
			return // disconnect: DetachLayout runs via the deferred call above
		}
		kind, payload, err := unwrap(raw)
		if err != nil {
			logger.Warnf("layoutproto: malformed request: %v", err)
			return
		}
		switch kind {
		case reqPushViewDimensions:
			p, err := unmarshalPushDimensions(payload)
			if err != nil {
				logger.Warnf("layoutproto: malformed push_view_dimensions: %v", err)
				return
			}
			s.loop.Do(func() {
				s.binder.PushViewDimensions(outKey, layout.Dimensions{
					X: p.X, Y: p.Y, Width: p.Width, Height: p.Height, Serial: p.Serial,
				})
			})
		case reqCommit:
			cm, err := unmarshalCommit(payload)
			if err != nil {
				logger.Warnf("layoutproto: malformed commit: %v", err)
				return
			}
			s.loop.Do(func() {
				s.binder.CommitLayoutNamed(outKey, cm.LayoutName, cm.Serial)
			})
		case reqDestroy:
			return
		default:
			logger.Warnf("layoutproto: unknown request kind %d", kind)
			return
		}
	}
}
