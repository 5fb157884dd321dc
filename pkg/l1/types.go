package l1

import (
	"context"
	"fmt"
	"strings"

	fx "github.com/robotalks/picoborg.go/pkg/framework"
)

// Registrar publishes an L1 controller (a board daemon) so L2 components
// can reach it. Commands received through it are posted into the loop as
// CommandMsg.
type Registrar interface {
	// SendEvent broadcasts an event to connected L2 components.
	SendEvent(context.Context, fx.Message) error
}

// Command is a received command waiting for its reply.
type Command interface {
	Msg() fx.Message
	// Done replies the command. It must be called exactly once.
	Done(fx.Message) error
}

// CommandMsg wraps a Command as a Message.
type CommandMsg struct {
	Command Command
}

// NewMessage implements Message.
func (m *CommandMsg) NewMessage() fx.Message { return &CommandMsg{} }

// ControllerRef identifies an L1 controller as TYPE/ID.
type ControllerRef struct {
	Type string
	ID   string
}

// ParseControllerRef parses "TYPE/ID".
func ParseControllerRef(s string) (ControllerRef, error) {
	items := strings.Split(s, "/")
	if len(items) != 2 {
		return ControllerRef{}, fmt.Errorf("invalid controller ref %q, expect TYPE/ID", s)
	}
	ref := ControllerRef{Type: items[0], ID: items[1]}
	if !ref.IsValid() {
		return ControllerRef{}, fmt.Errorf("invalid controller ref %q, expect TYPE/ID", s)
	}
	return ref, nil
}

// Name formats ref as TYPE/ID.
func (r ControllerRef) Name() string {
	return r.Type + "/" + r.ID
}

// String implements fmt.Stringer.
func (r ControllerRef) String() string {
	return r.Name()
}

// IsValid indicates both parts are present.
func (r ControllerRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// ControllerMeta is the metadata published along with a controller.
type ControllerMeta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// ControllerInfo is a discovered controller.
type ControllerInfo struct {
	Ref  ControllerRef
	Meta ControllerMeta
}

// Connector is used by L2 components to reach L1 controllers.
type Connector interface {
	Discover(context.Context) ([]ControllerInfo, error)
	Connect(context.Context, ControllerRef) (ControllerConn, error)
}

// ControllerConn is the connection to a controller.
type ControllerConn interface {
	// DoCommand sends a command, the reply arrives on the future.
	DoCommand(fx.Message) CommandFuture
}

// Result is the reply of a command. Err is set if the command failed,
// including a CommandErr replied by the controller.
type Result struct {
	Msg fx.Message
	Err error
}

// CommandFuture delivers exactly one Result.
type CommandFuture interface {
	ResultChan() <-chan Result
}

// Await waits for the reply of f.
func Await(ctx context.Context, f CommandFuture) (fx.Message, error) {
	select {
	case res := <-f.ResultChan():
		return res.Msg, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Do sends msg on conn and waits for the reply.
func Do(ctx context.Context, conn ControllerConn, msg fx.Message) (fx.Message, error) {
	return Await(ctx, conn.DoCommand(msg))
}
