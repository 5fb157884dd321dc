package comm

import (
	"context"
	"errors"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/picoborg.go/pkg/framework"
	"github.com/robotalks/picoborg.go/pkg/l1"
	"github.com/robotalks/picoborg.go/pkg/l1/msgs"
)

// ErrAlreadyReplied is returned replying a command the second time.
var ErrAlreadyReplied = errors.New("command already replied")

// Registrar is the controller side of a single Pipe: received commands
// and events are posted into the loop, events are sent back on the pipe.
type Registrar struct {
	pipe Pipe
}

// Init binds the Registrar to rw.
func (r *Registrar) Init(rw PacketReadWriter) {
	r.pipe.ReadWriter = rw
	r.pipe.Handler = postToLoop(&r.pipe)
}

// SendEvent implements l1.Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	return r.pipe.SendEventMsg(msg)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.pipe)
}

// postToLoop returns the Pipe handler of the controller side. A command
// is wrapped in l1.CommandMsg and its reply goes back on pipe.
func postToLoop(pipe *Pipe) msgs.TypedMsgHandler {
	return msgs.HandleTypedMsgFunc(func(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
		if typed.IsReply() {
			glog.V(2).Infof("drop reply %x on controller side", typed.TypeId)
			return nil
		}
		if typed.IsCommand() {
			msg = &l1.CommandMsg{Command: &pipeCommand{pipe: pipe, seq: typed.Sequence, msg: msg}}
		}
		loopCtl := fx.LoopCtlFrom(ctx)
		loopCtl.PostMessage(msg)
		loopCtl.TriggerNext()
		return nil
	})
}

type pipeCommand struct {
	pipe *Pipe
	seq  uint32
	msg  fx.Message
	once sync.Once
}

func (c *pipeCommand) Msg() fx.Message {
	return c.msg
}

func (c *pipeCommand) Done(reply fx.Message) error {
	err := ErrAlreadyReplied
	c.once.Do(func() {
		err = c.pipe.SendCommandMsg(reply, c.seq)
	})
	return err
}

// RegistrarMux fans events out to multiple Registrars. Commands from any
// of them end up in the same loop.
type RegistrarMux struct {
	Registrars []l1.Registrar
}

// Add adds registrars.
func (r *RegistrarMux) Add(regs ...l1.Registrar) {
	r.Registrars = append(r.Registrars, regs...)
}

// SendEvent implements l1.Registrar.
func (r *RegistrarMux) SendEvent(ctx context.Context, msg fx.Message) error {
	var errs fx.AggregatedError
	for _, reg := range r.Registrars {
		errs.Add(reg.SendEvent(ctx, msg))
	}
	return errs.Aggregate()
}

// AddToLoop implements LoopAdder.
func (r *RegistrarMux) AddToLoop(l *fx.Loop) {
	for _, reg := range r.Registrars {
		if adder, ok := reg.(fx.LoopAdder); ok {
			l.Add(adder)
		}
	}
}

// UnsupportedCommands runs last and fails the commands no controller took.
type UnsupportedCommands struct{}

// Control implements Controller.
func (c *UnsupportedCommands) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		cmdMsg, ok := mctx.CurrentMessage().(*l1.CommandMsg)
		if !ok {
			return
		}
		mctx.MessageTaken()
		if err := cmdMsg.Command.Done(msgs.NewCommandErr(msgs.ErrUnsupportedCommand)); err != nil {
			glog.Warningf("reply unsupported command: %v", err)
		}
	}))
	return nil
}

// AddToLoop implements LoopAdder.
func (c *UnsupportedCommands) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvIdle, c)
}
