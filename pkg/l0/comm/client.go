package comm

import (
	"context"
	"sync"
)

// Result is the reply to a command.
type Result struct {
	Err  error
	Code byte
	Data []byte
}

// Command is a request waiting for its reply.
type Command struct {
	requestSeq PacketSeq
	resultCh   chan Result
}

// RequestSeq returns the request packet seq.
func (c *Command) RequestSeq() PacketSeq {
	return c.requestSeq
}

// ResultChan returns the chan to retrieve result.
func (c *Command) ResultChan() <-chan Result {
	return c.resultCh
}

// Client matches replies from the peer to the commands sent over a FIFO.
// Replies arrive in request order, a reply to a later command fails the
// commands sent before it with ErrNoReply.
//
// Events and state changes are delivered on EventChan and StateChan,
// both must be drained while the client runs.
type Client struct {
	fifo    *FIFO
	eventCh chan *Packet
	stateCh chan SyncState

	lock    sync.Mutex
	pending []*Command
}

// NewClient creates client and wraps the fifo.
func NewClient(fifo *FIFO) *Client {
	c := &Client{
		fifo:    fifo,
		eventCh: make(chan *Packet, 1),
		stateCh: make(chan SyncState, 1),
	}
	c.fifo.Handler = c
	c.fifo.Notifier = StateChangedFunc(func(ctx context.Context, state SyncState) {
		c.stateCh <- state
	})
	return c
}

// FIFO gets wrapped FIFO.
func (c *Client) FIFO() *FIFO {
	return c.fifo
}

// StateChan retrieves the state reporting chan.
func (c *Client) StateChan() <-chan SyncState {
	return c.stateCh
}

// EventChan retrieves the event reporting chan.
func (c *Client) EventChan() <-chan *Packet {
	return c.eventCh
}

// DoWith sends a command and delivers the result on ch, which must have
// room for one Result.
func (c *Client) DoWith(pkt *Packet, ch chan Result) *Command {
	cmd := &Command{resultCh: ch}
	c.lock.Lock()
	defer c.lock.Unlock()
	if err := c.fifo.Send(pkt); err != nil {
		ch <- Result{Err: err}
		return cmd
	}
	cmd.requestSeq = pkt.Seq
	c.pending = append(c.pending, cmd)
	return cmd
}

// Do sends a command and returns a Command for result.
func (c *Client) Do(pkt *Packet) *Command {
	return c.DoWith(pkt, make(chan Result, 1))
}

// Exchange sends a command and waits for the result.
// The command is abandoned if ctx is done first.
func (c *Client) Exchange(ctx context.Context, pkt *Packet) (Result, error) {
	cmd := c.Do(pkt)
	select {
	case r := <-cmd.ResultChan():
		return r, r.Err
	case <-ctx.Done():
		c.abandon(cmd)
		return Result{}, ctx.Err()
	}
}

func (c *Client) abandon(cmd *Command) {
	c.lock.Lock()
	defer c.lock.Unlock()
	for i, p := range c.pending {
		if p == cmd {
			c.pending = append(c.pending[:i:i], c.pending[i+1:]...)
			return
		}
	}
}

// HandlePacket implements PacketHandler.
// Data[0] of a reply is the sequence number of the request.
func (c *Client) HandlePacket(ctx context.Context, pkt *Packet) {
	if pkt.IsEvent() {
		c.eventCh <- pkt
		return
	}
	if len(pkt.Data) == 0 || !PacketSeq(pkt.Data[0]).IsValid() {
		return
	}
	seq := PacketSeq(pkt.Data[0])

	var cmd *Command
	var missed []*Command
	c.lock.Lock()
	for i, p := range c.pending {
		if p.requestSeq == seq {
			cmd, missed = p, c.pending[:i:i]
			c.pending = c.pending[i+1:]
			break
		}
	}
	c.lock.Unlock()
	if cmd == nil {
		return
	}
	for _, p := range missed {
		p.resultCh <- Result{Err: ErrNoReply}
	}
	cmd.resultCh <- replyResult(pkt)
}

func replyResult(pkt *Packet) Result {
	code := pkt.Code &^ (codeEventFlag | codeErrorFlag)
	if pkt.Code&codeErrorFlag != 0 {
		return Result{Err: &CommandError{Code: code}}
	}
	return Result{Code: code, Data: pkt.Data[1:]}
}

// Run wraps FIFO.Run to implement Runnable.
func (c *Client) Run(ctx context.Context) error {
	return c.fifo.Run(ctx)
}
