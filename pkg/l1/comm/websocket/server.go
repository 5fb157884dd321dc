package websocket

import (
	"context"
	"net"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/picoborg.go/pkg/framework"
	"github.com/robotalks/picoborg.go/pkg/l1/comm"
)

// DefaultPath is the HTTP path serving websocket connections.
const DefaultPath = "/l1"

// Server accepts websocket connections and serves them with a Listener.
type Server struct {
	Addr     string
	Path     string
	Listener *comm.Listener

	listener net.Listener
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, l *comm.Listener) *Server {
	return &Server{Addr: addr, Path: DefaultPath, Listener: l}
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
	mux := http.NewServeMux()
	mux.Handle(s.Path, websocket.Handler(func(conn *websocket.Conn) {
		glog.V(2).Infof("accepted %s", conn.Request().RemoteAddr)
		<-s.Listener.Serve(ctx, New(conn))
	}))
	server := &http.Server{Handler: mux}
	glog.Infof("listening ws://%s%s", s.listener.Addr(), s.Path)
	err := fx.RunWithContextCancel(ctx, func() { server.Close() }, func() error {
		return server.Serve(s.listener)
	})
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// AddToLoop implements LoopAdder.
func (s *Server) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(s)
}

// Dial connects to a websocket server, url is like ws://host:port/l1.
func Dial(url string) (*ReadWriter, error) {
	conn, err := websocket.Dial(url, "", "http://localhost/")
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}
