package comm

import (
	"context"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/picoborg.go/pkg/framework"
)

// Listener implements l1.Registrar for peers connected directly
// (e.g. TCP or websocket) rather than through a registry.
// Each accepted connection gets its own Pipe, commands are replied on the
// pipe they came from and events are broadcasted to all pipes.
type Listener struct {
	conns chan *listenerConn

	lock  sync.Mutex
	pipes map[*Pipe]struct{}
}

type listenerConn struct {
	pipe *Pipe
	done chan struct{}
}

// NewListener creates a Listener.
func NewListener() *Listener {
	return &Listener{
		conns: make(chan *listenerConn),
		pipes: make(map[*Pipe]struct{}),
	}
}

// Serve hands over an accepted connection. The returned channel is closed
// when the connection is no longer used.
func (l *Listener) Serve(ctx context.Context, rw PacketReadWriter) <-chan struct{} {
	conn := &listenerConn{pipe: NewPipe(rw), done: make(chan struct{})}
	conn.pipe.Handler = postToLoop(conn.pipe)
	select {
	case l.conns <- conn:
	case <-ctx.Done():
		conn.pipe.Close()
		close(conn.done)
	}
	return conn.done
}

// Peers returns the number of connected peers.
func (l *Listener) Peers() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return len(l.pipes)
}

// SendEvent implements Registrar.
func (l *Listener) SendEvent(ctx context.Context, msg fx.Message) error {
	l.lock.Lock()
	pipes := make([]*Pipe, 0, len(l.pipes))
	for pipe := range l.pipes {
		pipes = append(pipes, pipe)
	}
	l.lock.Unlock()
	var errs fx.AggregatedError
	for _, pipe := range pipes {
		errs.Add(pipe.SendEventMsg(msg))
	}
	return errs.Aggregate()
}

// Run implements Runnable.
func (l *Listener) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		select {
		case conn := <-l.conns:
			l.lock.Lock()
			l.pipes[conn.pipe] = struct{}{}
			l.lock.Unlock()
			wg.Add(1)
			go func() {
				defer wg.Done()
				l.runPipe(ctx, conn)
			}()
		case <-ctx.Done():
			l.lock.Lock()
			for pipe := range l.pipes {
				pipe.Close()
			}
			l.lock.Unlock()
			return ctx.Err()
		}
	}
}

func (l *Listener) runPipe(ctx context.Context, conn *listenerConn) {
	defer close(conn.done)
	err := conn.pipe.Run(ctx)
	l.lock.Lock()
	delete(l.pipes, conn.pipe)
	l.lock.Unlock()
	if err != nil && ctx.Err() == nil {
		glog.V(2).Infof("peer disconnected: %v", err)
	}
}

// AddToLoop implements LoopAdder.
func (l *Listener) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(l)
}
