package comm

import (
	"context"
	"sync"
	"time"

	fx "github.com/robotalks/picoborg.go/pkg/framework"
	"github.com/robotalks/picoborg.go/pkg/l1"
	"github.com/robotalks/picoborg.go/pkg/l1/msgs"
)

// DefaultCommandExpiration is how long a command waits for its reply.
const DefaultCommandExpiration = 1 * time.Second

// ControllerConn implements l1.ControllerConn over a Pipe. Replies are
// matched to commands by sequence number, commands without a reply
// before Expiration fail with context.DeadlineExceeded.
// Received events are posted into the loop.
type ControllerConn struct {
	Expiration time.Duration

	pipe    Pipe
	now     func() time.Time
	lock    sync.Mutex
	seq     uint32
	pending map[uint32]*commandFuture
}

// Init initializes ControllerConn with defaults.
func (c *ControllerConn) Init(rw PacketReadWriter) {
	c.Expiration = DefaultCommandExpiration
	c.pipe.ReadWriter = rw
	c.pipe.Handler = msgs.HandleTypedMsgFunc(c.handleTypedMsg)
	c.now = time.Now
	c.pending = make(map[uint32]*commandFuture)
}

// DoCommand implements ControllerConn.
func (c *ControllerConn) DoCommand(msg fx.Message) l1.CommandFuture {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.seq++; c.seq == 0 {
		c.seq = 1
	}
	f := &commandFuture{
		expireAt: c.now().Add(c.Expiration),
		result:   make(chan l1.Result, 1),
	}
	if err := c.pipe.SendCommandMsg(msg, c.seq); err != nil {
		f.resolve(l1.Result{Err: err})
		return f
	}
	c.pending[c.seq] = f
	return f
}

// Pending returns the number of commands awaiting replies.
func (c *ControllerConn) Pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.pending)
}

// Close closes the underlying connection.
func (c *ControllerConn) Close() error {
	return c.pipe.Close()
}

// AddToLoop implements LoopAdder.
func (c *ControllerConn) AddToLoop(l *fx.Loop) {
	l.Add(&c.pipe)
	l.AddController(fx.PrLvIdle, fx.ControlFunc(func(fx.ControlContext) error {
		c.expire()
		return nil
	}))
}

func (c *ControllerConn) handleTypedMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	if typed.IsEvent() {
		loopCtl := fx.LoopCtlFrom(ctx)
		loopCtl.PostMessage(msg)
		loopCtl.TriggerNext()
		return nil
	}
	if !typed.IsReply() {
		return nil
	}
	c.lock.Lock()
	f, ok := c.pending[typed.Sequence]
	delete(c.pending, typed.Sequence)
	c.lock.Unlock()
	if !ok {
		return nil
	}
	result := l1.Result{Msg: msg}
	if cmdErr, ok := msg.(*msgs.CommandErr); ok {
		result.Err = cmdErr
	}
	f.resolve(result)
	return nil
}

func (c *ControllerConn) expire() {
	now := c.now()
	var expired []*commandFuture
	c.lock.Lock()
	for seq, f := range c.pending {
		if !f.expireAt.After(now) {
			delete(c.pending, seq)
			expired = append(expired, f)
		}
	}
	c.lock.Unlock()
	for _, f := range expired {
		f.resolve(l1.Result{Err: context.DeadlineExceeded})
	}
}

type commandFuture struct {
	expireAt time.Time
	result   chan l1.Result
}

func (f *commandFuture) resolve(r l1.Result) {
	f.result <- r
	close(f.result)
}

func (f *commandFuture) ResultChan() <-chan l1.Result {
	return f.result
}
