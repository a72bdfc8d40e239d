package layoutproto

import (
	"io"

	"github.com/riverwm/river/internal/layout"
	"github.com/riverwm/river/internal/wire"
)

// Conn adapts a net.Conn to layout.Sender, the outbound half of one
// bound layout client connection (spec.md §6).
type Conn struct {
	w io.WriteCloser
}

var _ layout.Sender = (*Conn)(nil)

func (c *Conn) SendNamespaceInUse() error {
	return wire.WriteFrame(c.w, marshalNamespaceInUse())
}

func (c *Conn) SendLayoutDemand(d layout.Demand) error {
	return wire.WriteFrame(c.w, marshalLayoutDemand(d))
}

func (c *Conn) SendUserCommandTags(tags uint32) error {
	return wire.WriteFrame(c.w, marshalUserCommandTags(tags))
}

func (c *Conn) SendUserCommand(cmd string) error {
	return wire.WriteFrame(c.w, marshalUserCommand(cmd))
}

func (c *Conn) Disconnect() {
	c.w.Close()
}
