// Package control implements the control protocol server (spec.md §6):
// a Unix socket accepting one request per connection from a control
// client, a vector of UTF-8 argv tokens plus a seat name, replying with
// either success{output} or failure{message}. Framing and field codec
// are shared with the layout protocol through internal/wire (spec.md
// §6).
package control

import (
	"github.com/riverwm/river/internal/wire"
)

// Field numbers for the request/reply messages this package marshals.
const (
	fieldRequestSeat = 1
	fieldRequestArgv = 2

	fieldReplyOutput  = 1 // bytes: success output string (possibly empty)
	fieldReplyFailure = 2 // bytes: failure message
	fieldReplySuccess = 3 // varint bool: always true when present, written on every success reply so one with an empty output is still recognised
)

// Request is one decoded control-protocol request: a seat name plus its
// argv token vector (spec.md §6).
type Request struct {
	Seat string
	Argv []string
}

func marshalRequest(r Request) []byte {
	var b []byte
	b = wire.AppendString(b, fieldRequestSeat, r.Seat)
	b = wire.AppendStrings(b, fieldRequestArgv, r.Argv)
	return b
}

func unmarshalRequest(raw []byte) (Request, error) {
	var r Request
	err := wire.Range(raw, func(f wire.Field) bool {
		switch f.Number {
		case fieldRequestSeat:
			r.Seat = string(f.Raw)
		case fieldRequestArgv:
			r.Argv = append(r.Argv, string(f.Raw))
		}
		return true
	})
	return r, err
}

// Reply is success{output} xor failure{message} (spec.md §6).
type Reply struct {
	OK      bool
	Output  string
	Message string
}

func marshalReply(r Reply) []byte {
	var b []byte
	if r.OK {
		b = wire.AppendBool(b, fieldReplySuccess, true)
		b = wire.AppendString(b, fieldReplyOutput, r.Output)
	} else {
		b = wire.AppendString(b, fieldReplyFailure, r.Message)
	}
	return b
}

func unmarshalReply(raw []byte) (Reply, error) {
	var r Reply
	err := wire.Range(raw, func(f wire.Field) bool {
		switch f.Number {
		case fieldReplySuccess:
			r.OK = true
		case fieldReplyOutput:
			r.Output = string(f.Raw)
		case fieldReplyFailure:
			r.OK = false
			r.Message = string(f.Raw)
		}
		return true
	})
	return r, err
}
