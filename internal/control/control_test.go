package control

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riverwm/river/internal/command"
)

func TestRequestRoundTrip(t *testing.T) {
	want := Request{Seat: "seat0", Argv: []string{"set-focused-tags", "1"}}
	got, err := unmarshalRequest(marshalRequest(want))
	require.NoError(t, err)
	require.Equal(t, want.Seat, got.Seat)
	require.Equal(t, want.Argv, got.Argv)
}

func TestReplyRoundTripSuccessWithEmptyOutput(t *testing.T) {
	got, err := unmarshalReply(marshalReply(Reply{OK: true, Output: ""}))
	require.NoError(t, err)
	require.True(t, got.OK, "expected OK=true to survive an empty-output success reply")
}

func TestReplyRoundTripFailure(t *testing.T) {
	got, err := unmarshalReply(marshalReply(Reply{OK: false, Message: "no such seat"}))
	require.NoError(t, err)
	require.False(t, got.OK)
	require.Equal(t, "no such seat", got.Message)
}

type fakeRuntime struct{ command.Runtime }

func (fakeRuntime) SetFocusedTags(seat string, mask uint32) error { return nil }

// inlineLoop runs fn synchronously on the calling goroutine, standing in
// for internal/root.Root's serialized dispatch loop in tests that don't
// exercise concurrent connections.
type inlineLoop struct{}

func (inlineLoop) Do(fn func()) { fn() }

func TestServeDispatchesAndReplies(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "river-control.sock")
	d := command.NewDispatcher()
	srv, err := Listen(sockPath, fakeRuntime{}, inlineLoop{}, d)
	require.NoError(t, err)
	defer srv.Close()
	go srv.Serve()

	reply, err := Send(sockPath, "seat0", []string{"set-focused-tags", "1"})
	require.NoError(t, err)
	require.True(t, reply.OK, "expected success reply, got %+v", reply)
}

func TestServeRepliesFailureForUnknownCommand(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "river-control.sock")
	d := command.NewDispatcher()
	srv, err := Listen(sockPath, fakeRuntime{}, inlineLoop{}, d)
	require.NoError(t, err)
	defer srv.Close()
	go srv.Serve()

	reply, err := Send(sockPath, "seat0", []string{"not-a-command"})
	require.NoError(t, err)
	require.False(t, reply.OK)
	require.Contains(t, reply.Message, "unknown command")
}
