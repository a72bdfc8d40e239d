// Package layoutproto implements the layout protocol v3 transport
// (spec.md §6): one Unix socket per namespace, framed with
// internal/wire, carrying the events and requests internal/layout's
// Binding/Sender abstractions describe.
package layoutproto

import (
	"github.com/riverwm/river/internal/layout"
	"github.com/riverwm/river/internal/wire"
)

// Event (compositor -> client) message kinds.
const (
	eventNamespaceInUse   = 1
	eventLayoutDemand     = 2
	eventUserCommandTags  = 3
	eventUserCommand      = 4
)

// Request (client -> compositor) message kinds.
const (
	reqAnnounce           = 1 // first message on a new connection
	reqPushViewDimensions = 2
	reqCommit             = 3
	reqDestroy            = 4
)

// Field numbers within each message's own byte payload. Messages are
// framed as two fields: the kind as a varint in field 1 and the payload
// as bytes in field 2, so encode/decode stays symmetric with
// internal/control's usage of internal/wire.
const (
	fNamespace    = 1
	fVersion      = 2
	fSerial       = 3
	fViewCount    = 4
	fUsableWidth  = 5
	fUsableHeight = 6
	fTags         = 7
	fCommand      = 8
	fX            = 9
	fY            = 10
	fWidth        = 11
	fHeight       = 12
	fLayoutName   = 13
)

func wrap(kind uint32, payload []byte) []byte {
	var b []byte
	b = wire.AppendUint32(b, 1, kind)
	b = wire.AppendString(b, 2, string(payload))
	return b
}

func unwrap(raw []byte) (kind uint32, payload []byte, err error) {
	err = wire.Range(raw, func(f wire.Field) bool {
		switch f.Number {
		case 1:
			kind = uint32(f.Varint)
		case 2:
			payload = f.Raw
		}
		return true
	})
	return kind, payload, err
}

func marshalAnnounce(namespace string, version uint32) []byte {
	var b []byte
	b = wire.AppendString(b, fNamespace, namespace)
	b = wire.AppendUint32(b, fVersion, version)
	return wrap(reqAnnounce, b)
}

type announce struct {
	Namespace string
	Version   uint32
}

func unmarshalAnnounce(payload []byte) (announce, error) {
	var a announce
	err := wire.Range(payload, func(f wire.Field) bool {
		switch f.Number {
		case fNamespace:
			a.Namespace = string(f.Raw)
		case fVersion:
			a.Version = uint32(f.Varint)
		}
		return true
	})
	return a, err
}

func marshalLayoutDemand(d layout.Demand) []byte {
	var b []byte
	b = wire.AppendUint32(b, fSerial, d.Serial)
	b = wire.AppendUint32(b, fViewCount, uint32(d.ViewCount))
	b = wire.AppendUint32(b, fUsableWidth, d.UsableWidth)
	b = wire.AppendUint32(b, fUsableHeight, d.UsableHeight)
	b = wire.AppendUint32(b, fTags, d.Tags)
	return wrap(eventLayoutDemand, b)
}

func marshalUserCommandTags(tags uint32) []byte {
	var b []byte
	b = wire.AppendUint32(b, fTags, tags)
	return wrap(eventUserCommandTags, b)
}

func marshalUserCommand(cmd string) []byte {
	var b []byte
	b = wire.AppendString(b, fCommand, cmd)
	return wrap(eventUserCommand, b)
}

func marshalNamespaceInUse() []byte {
	return wrap(eventNamespaceInUse, nil)
}

type pushDimensionsReq struct {
	X, Y          int32
	Width, Height uint32
	Serial        uint32
}

func unmarshalPushDimensions(payload []byte) (pushDimensionsReq, error) {
	var p pushDimensionsReq
	err := wire.Range(payload, func(f wire.Field) bool {
		switch f.Number {
		case fX:
			p.X = int32(uint32(f.Varint))
		case fY:
			p.Y = int32(uint32(f.Varint))
		case fWidth:
			p.Width = uint32(f.Varint)
		case fHeight:
			p.Height = uint32(f.Varint)
		case fSerial:
			p.Serial = uint32(f.Varint)
		}
		return true
	})
	return p, err
}

func marshalPushDimensions(p pushDimensionsReq) []byte {
	var b []byte
	b = wire.AppendInt32(b, fX, p.X)
	b = wire.AppendInt32(b, fY, p.Y)
	b = wire.AppendUint32(b, fWidth, p.Width)
	b = wire.AppendUint32(b, fHeight, p.Height)
	b = wire.AppendUint32(b, fSerial, p.Serial)
	return wrap(reqPushViewDimensions, b)
}

type commitReq struct {
	LayoutName string
	Serial     uint32
}

func unmarshalCommit(payload []byte) (commitReq, error) {
	var c commitReq
	err := wire.Range(payload, func(f wire.Field) bool {
		switch f.Number {
		case fLayoutName:
			c.LayoutName = string(f.Raw)
		case fSerial:
			c.Serial = uint32(f.Varint)
		}
		return true
	})
	return c, err
}

func marshalCommit(c commitReq) []byte {
	var b []byte
	b = wire.AppendString(b, fLayoutName, c.LayoutName)
	b = wire.AppendUint32(b, fSerial, c.Serial)
	return wrap(reqCommit, b)
}

func marshalDestroy() []byte {
	return wrap(reqDestroy, nil)
}
