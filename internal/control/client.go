package control

import (
	"bufio"
	"fmt"
	"net"

	"github.com/riverwm/river/internal/wire"
)

// Send connects to the control socket at path, sends one request, and
// returns its reply. Used by internal/debugui (river inspect).
func Send(path string, seat string, argv []string) (Reply, error) {
	conn, err := net.Dial("unix", path)
	if err != nil {
		return Reply{}, fmt.Errorf("control: connect: %w", err)
	}
	defer conn.Close()

	if err := wire.WriteFrame(conn, marshalRequest(Request{Seat: seat, Argv: argv})); err != nil {
		return Reply{}, fmt.Errorf("control: send request: %w", err)
	}

	raw, err := wire.ReadFrame(bufio.NewReader(conn))
	if err != nil {
		return Reply{}, fmt.Errorf("control: read reply: %w", err)
	}
	return unmarshalReply(raw)
}
