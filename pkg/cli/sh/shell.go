package sh

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	fx "github.com/robotalks/picoborg.go/pkg/framework"
	"github.com/robotalks/picoborg.go/pkg/l1"
	env "github.com/robotalks/picoborg.go/pkg/l1/env/connector"
)

// DefaultTimeout bounds a command sent from the shell.
const DefaultTimeout = time.Second

// Shell is an ishell backed client of L1 controllers.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool
	Timeout     time.Duration

	Shell   *ishell.Shell
	Config  *env.Config
	Session *Session
}

// Session is the connection to the current controller with the loop
// dispatching its replies and events.
type Session struct {
	Ref  l1.ControllerRef
	Conn l1.ControllerConn

	cancel context.CancelFunc
	done   chan struct{}
}

// Close stops the loop and closes the connection.
func (s *Session) Close() {
	s.cancel()
	if closer, ok := s.Conn.(io.Closer); ok {
		closer.Close()
	}
	<-s.done
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	evalOnly   bool
	outputJSON bool
	timeout    = DefaultTimeout

	commands = []*ishell.Cmd{
		discoverCmd,
		connectCmd,
		disconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.DurationVar(&timeout, "timeout", timeout, "Timeout waiting for a command reply.")
}

// AddCmds is used by command packages from init to extend the shell.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Timeout:     timeout,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Discover lists controllers accepted by filter, or all if filter is nil.
func (s *Shell) Discover(filter func(l1.ControllerInfo) bool) ([]l1.ControllerInfo, error) {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return nil, err
	}
	found, err := connector.Discover(context.Background())
	if err != nil || filter == nil {
		return found, err
	}
	infoList := found[:0]
	for _, info := range found {
		if filter(info) {
			infoList = append(infoList, info)
		}
	}
	return infoList, nil
}

// Select discovers controllers and asks for a choice if more than one
// is found. It returns nil if nothing is found.
func (s *Shell) Select(filter func(l1.ControllerInfo) bool) (*l1.ControllerInfo, error) {
	infoList, err := s.Discover(filter)
	if err != nil || len(infoList) == 0 {
		return nil, err
	}
	if len(infoList) == 1 {
		return &infoList[0], nil
	}
	if !s.Interactive {
		return nil, fmt.Errorf("%d controllers discovered in non-interactive mode", len(infoList))
	}
	items := make([]string, len(infoList))
	for n, info := range infoList {
		items[n] = FormatInfo(info)
	}
	index := s.Shell.MultiChoice(items, "Which one to connect?")
	if index < 0 {
		return nil, nil
	}
	return &infoList[index], nil
}

// Connect replaces the current session with a new one to ref.
func (s *Shell) Connect(ref l1.ControllerRef) error {
	conf := *s.Config
	conf.Ref = ref
	ctx, cancel := context.WithCancel(context.Background())
	conn, err := conf.Connect(ctx)
	if err != nil {
		cancel()
		return err
	}
	session := &Session{Ref: ref, Conn: conn, cancel: cancel, done: make(chan struct{})}
	loop := fx.NewLoop()
	if adder, ok := conn.(fx.LoopAdder); ok {
		loop.Add(adder)
	}
	go func() {
		defer close(session.done)
		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			glog.Errorf("connection to %s: %v", ref, err)
		}
	}()
	s.Disconnect()
	s.Session = session
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", ref))
	return nil
}

// Disconnect closes the current session if any.
func (s *Shell) Disconnect() {
	if s.Session != nil {
		s.Session.Close()
		s.Session = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Do sends msg to the connected controller and waits for the reply.
func (s *Shell) Do(msg fx.Message) (fx.Message, error) {
	if s.Session == nil {
		return nil, ErrNotConnected
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()
	return l1.Do(ctx, s.Session.Conn, msg)
}

// Run runs args as a single command, or the interactive shell.
func (s *Shell) Run(args ...string) {
	defer s.Disconnect()
	if ref := s.Config.Ref; s.AutoConnect && ref.IsValid() {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", ref)
		}
		if err := s.Connect(ref); err != nil {
			glog.Exitf("connect %s failed: %v", ref, err)
		}
	}
	switch {
	case len(args) > 0:
		if err := s.Shell.Process(args...); err != nil {
			glog.Exit(err)
		}
	case s.Interactive:
		s.Shell.Run()
	default:
		glog.Exit("command expected")
	}
}
