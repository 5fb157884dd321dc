package l1

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/picoborg.go/pkg/framework"
)

func TestParseControllerRef(t *testing.T) {
	ref, err := ParseControllerRef("picoborg/bench")
	require.NoError(t, err)
	require.Equal(t, ControllerRef{Type: "picoborg", ID: "bench"}, ref)
	require.Equal(t, "picoborg/bench", ref.String())

	for _, s := range []string{"", "picoborg", "picoborg/", "/bench", "a/b/c"} {
		_, err := ParseControllerRef(s)
		require.Error(t, err, s)
	}
}

type replyMsg struct{}

func (m *replyMsg) NewMessage() fx.Message { return &replyMsg{} }

type futureFunc chan Result

func (f futureFunc) ResultChan() <-chan Result { return f }

type connFunc func(fx.Message) CommandFuture

func (f connFunc) DoCommand(msg fx.Message) CommandFuture { return f(msg) }

func TestAwait(t *testing.T) {
	f := make(futureFunc, 1)
	f <- Result{Msg: &replyMsg{}}
	msg, err := Await(context.Background(), f)
	require.NoError(t, err)
	require.Equal(t, &replyMsg{}, msg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = Await(ctx, make(futureFunc))
	require.Equal(t, context.DeadlineExceeded, err)
}

func TestDo(t *testing.T) {
	var sent fx.Message
	conn := connFunc(func(msg fx.Message) CommandFuture {
		sent = msg
		f := make(futureFunc, 1)
		f <- Result{Msg: msg}
		return f
	})
	msg, err := Do(context.Background(), conn, &replyMsg{})
	require.NoError(t, err)
	require.Same(t, sent, msg)
}
