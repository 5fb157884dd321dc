package stream

import (
	"context"
	"net"

	"github.com/golang/glog"

	fx "github.com/robotalks/picoborg.go/pkg/framework"
	"github.com/robotalks/picoborg.go/pkg/l1/comm"
)

// Server accepts TCP connections and serves them with a Listener.
type Server struct {
	Addr     string
	Listener *comm.Listener

	listener net.Listener
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, l *comm.Listener) *Server {
	return &Server{Addr: addr, Listener: l}
}

// Listen starts listening, it's called by Run if not called before.
func (s *Server) Listen() (err error) {
	if s.listener == nil {
		s.listener, err = net.Listen("tcp", s.Addr)
	}
	return
}

// LocalAddr returns the listening address.
func (s *Server) LocalAddr() net.Addr {
	return s.listener.Addr()
}

// Run implements Runnable.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	glog.Infof("listening tcp://%s", s.listener.Addr())
	return fx.RunWithContextCloser(ctx, s.listener, func() error {
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				return err
			}
			glog.V(2).Infof("accepted %s", conn.RemoteAddr())
			s.Listener.Serve(ctx, New(conn))
		}
	})
}

// AddToLoop implements LoopAdder.
func (s *Server) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(s)
}

// Dial connects to a Server.
func Dial(ctx context.Context, addr string) (*ReadWriter, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}
