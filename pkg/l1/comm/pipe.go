package comm

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/picoborg.go/pkg/framework"
	"github.com/robotalks/picoborg.go/pkg/l1/msgs"
)

var (
	// ErrNotCommand is returned sending a non-command message as a command.
	ErrNotCommand = errors.New("message is not a command")
	// ErrNotEvent is returned sending a non-event message as an event.
	ErrNotEvent = errors.New("message is not an event")
)

// Pipe carries Typed envelopes over a PacketReadWriter in both directions.
// Received messages are decoded and passed to Handler, a command which
// can't be decoded is answered with a CommandErr right away.
type Pipe struct {
	ReadWriter PacketReadWriter
	Handler    msgs.TypedMsgHandler

	sendLock  sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// NewPipe creates a Pipe with given PacketReadWriter.
func NewPipe(rw PacketReadWriter) *Pipe {
	return &Pipe{ReadWriter: rw}
}

// SendCommandMsg sends msg as the command (or reply) numbered seq.
func (p *Pipe) SendCommandMsg(msg fx.Message, seq uint32) error {
	return p.send(msg, msgs.TypeIDKindCommand, seq)
}

// SendEventMsg sends msg which must be an event.
func (p *Pipe) SendEventMsg(msg fx.Message) error {
	return p.send(msg, msgs.TypeIDKindEvent, 0)
}

func (p *Pipe) send(msg fx.Message, kind, seq uint32) error {
	typed, err := msgs.TypedFrom(msg)
	if err != nil {
		return err
	}
	if typed.Kind() != kind {
		if kind == msgs.TypeIDKindEvent {
			return ErrNotEvent
		}
		return ErrNotCommand
	}
	typed.Sequence = seq
	return p.SendTyped(typed)
}

// SendTyped encodes and writes the envelope.
func (p *Pipe) SendTyped(typed *msgs.Typed) error {
	pkt, err := typed.Encode()
	if err != nil {
		return err
	}
	p.sendLock.Lock()
	defer p.sendLock.Unlock()
	return p.ReadWriter.WritePacket(pkt)
}

// Run implements Runnable. It returns when reading fails, which
// includes the ReadWriter being closed.
func (p *Pipe) Run(ctx context.Context) error {
	defer p.Close()
	for {
		pkt, err := p.ReadWriter.ReadPacket()
		if err != nil {
			return err
		}
		if err = p.receive(ctx, pkt); err != nil {
			return err
		}
	}
}

func (p *Pipe) receive(ctx context.Context, pkt []byte) error {
	typed, err := msgs.DecodeTyped(pkt)
	if err != nil {
		glog.V(2).Infof("drop malformed envelope (%d bytes): %v", len(pkt), err)
		return nil
	}
	msg, err := typed.Decode()
	if err != nil {
		if typed.IsCommand() && !typed.IsReply() {
			return p.SendCommandMsg(msgs.NewCommandErr(err), typed.Sequence)
		}
		glog.V(2).Infof("drop message %x: %v", typed.TypeId, err)
		return nil
	}
	if p.Handler == nil {
		return nil
	}
	return p.Handler.HandleTypedMsg(ctx, msg, typed)
}

// Close closes the ReadWriter if it's an io.Closer. It's safe to call
// more than once.
func (p *Pipe) Close() error {
	p.closeOnce.Do(func() {
		if closer, ok := p.ReadWriter.(io.Closer); ok {
			p.closeErr = closer.Close()
		}
	})
	return p.closeErr
}

// AddToLoop implements LoopAdder.
func (p *Pipe) AddToLoop(loop *fx.Loop) {
	switch rw := p.ReadWriter.(type) {
	case fx.LoopAdder:
		loop.Add(rw)
	case fx.Runnable:
		loop.AddRunnable(rw)
	}
	loop.AddRunnable(p)
}
