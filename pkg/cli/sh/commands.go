package sh

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	fx "github.com/robotalks/picoborg.go/pkg/framework"
	"github.com/robotalks/picoborg.go/pkg/l1"
	"github.com/robotalks/picoborg.go/pkg/l1/msgs"
)

// ErrNotConnected is reported by commands requiring a session.
var ErrNotConnected = errors.New("not connected")

// MsgBuilder builds a command message from the shell arguments.
type MsgBuilder func(args []string) (fx.Message, error)

// MsgCmd creates a shell command which sends the message built from its
// arguments and prints the reply. At least minArgs arguments are required.
func MsgCmd(name, help string, minArgs int, build MsgBuilder, aliases ...string) *ishell.Cmd {
	return &ishell.Cmd{
		Name:    name,
		Aliases: aliases,
		Help:    help,
		Func: MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < minArgs {
				c.Err(fmt.Errorf("usage: %s %s", name, help))
				return
			}
			msg, err := build(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			DoCommand(c, msg)
		}),
	}
}

// Msg is a MsgBuilder for commands without arguments.
func Msg(msg fx.Message) MsgBuilder {
	return func([]string) (fx.Message, error) {
		return msg.NewMessage(), nil
	}
}

// Float32Arg parses a numeric argument, name is used in the error.
func Float32Arg(name, s string) (float32, error) {
	val, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return float32(val), nil
}

// MustBeConnected wraps a command func requiring a session.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Session == nil {
			c.Err(ErrNotConnected)
			return
		}
		fn(c)
	}
}

// DoCommand sends msg and prints the reply.
func DoCommand(c *ishell.Context, msg fx.Message) error {
	s := ShellFrom(c)
	reply, err := s.Do(msg)
	if err == nil {
		err = s.printReply(c, reply)
	}
	if err != nil {
		c.Err(err)
	}
	return err
}

func (s *Shell) printReply(c *ishell.Context, reply fx.Message) error {
	serializable, ok := reply.(msgs.SerializableMessage)
	switch {
	case !ok:
		return fmt.Errorf("unexpected reply %T", reply)
	case s.OutputJSON:
		out, err := json.Marshal(serializable.Serializable())
		if err != nil {
			return err
		}
		c.Println(string(out))
	case serializable.TypeID() == msgs.CommandOKTypeID:
		c.Println("OK")
	default:
		c.Printf("%s %s\n", msgs.TypeName(reply), serializable.Serializable().String())
	}
	return nil
}

// FormatInfo formats ControllerInfo for display.
func FormatInfo(info l1.ControllerInfo) string {
	if info.Meta.Description == "" {
		return info.Ref.Name()
	}
	return info.Ref.Name() + ": " + info.Meta.Description
}

var discoverCmd = &ishell.Cmd{
	Name:    "discover",
	Aliases: []string{"list", "l"},
	Help:    "[TYPE]",
	Func: func(c *ishell.Context) {
		s := ShellFrom(c)
		infoList, err := s.Discover(typeFilter(c.Args))
		if err != nil {
			c.Err(err)
			return
		}
		if s.OutputJSON {
			if infoList == nil {
				infoList = []l1.ControllerInfo{}
			}
			out, err := json.Marshal(infoList)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(string(out))
			return
		}
		if len(infoList) == 0 {
			c.Println("No controllers found")
			return
		}
		for _, info := range infoList {
			c.Println(FormatInfo(info))
		}
	},
}

var connectCmd = &ishell.Cmd{
	Name:    "connect",
	Aliases: []string{"c"},
	Help:    "[TYPE[/ID] | TYPE ID]",
	Func: func(c *ishell.Context) {
		s := ShellFrom(c)
		ref, err := refFromArgs(c.Args)
		if err == nil && !ref.IsValid() {
			var info *l1.ControllerInfo
			if info, err = s.Select(typeFilter(c.Args)); err == nil && info == nil {
				err = errors.New("no controller discovered")
			}
			if info != nil {
				ref = info.Ref
			}
		}
		if err == nil {
			err = s.Connect(ref)
		}
		if err != nil {
			c.Err(err)
		}
	},
}

var disconnectCmd = &ishell.Cmd{
	Name:    "disconnect",
	Aliases: []string{"d"},
	Func: func(c *ishell.Context) {
		ShellFrom(c).Disconnect()
	},
}

// refFromArgs returns an empty ref if args only narrow down the type.
func refFromArgs(args []string) (l1.ControllerRef, error) {
	switch {
	case len(args) >= 2:
		return l1.ControllerRef{Type: args[0], ID: args[1]}, nil
	case len(args) == 1 && strings.Contains(args[0], "/"):
		return l1.ParseControllerRef(args[0])
	}
	return l1.ControllerRef{}, nil
}

func typeFilter(args []string) func(l1.ControllerInfo) bool {
	if len(args) != 1 || strings.Contains(args[0], "/") {
		return nil
	}
	return func(info l1.ControllerInfo) bool {
		return info.Ref.Type == args[0]
	}
}
