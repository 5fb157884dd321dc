// Package direct connects to an L1 controller listening on TCP or
// websocket, without a registry.
package direct

import (
	"context"
	"fmt"
	"net/url"

	"github.com/robotalks/picoborg.go/pkg/l1"
	"github.com/robotalks/picoborg.go/pkg/l1/comm"
	"github.com/robotalks/picoborg.go/pkg/l1/comm/stream"
	"github.com/robotalks/picoborg.go/pkg/l1/comm/websocket"
)

// RefType is the controller type reported by Discover.
const RefType = "direct"

// Connector implements l1.Connector for a single directly reachable
// controller. Supported URLs:
//
//   tcp://host:port
//   ws://host:port/path
type Connector struct {
	URL *url.URL
}

// NewConnector creates a Connector.
func NewConnector(controllerURL string) (*Connector, error) {
	u, err := url.Parse(controllerURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "tcp", "ws", "wss":
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("missing host in %q", controllerURL)
	}
	if u.Scheme != "tcp" && u.Path == "" {
		u.Path = websocket.DefaultPath
	}
	return &Connector{URL: u}, nil
}

// Ref returns the reference of the controller.
func (c *Connector) Ref() l1.ControllerRef {
	return l1.ControllerRef{Type: RefType, ID: c.URL.Host}
}

// Discover implements Connector. The only controller is the one at URL.
func (c *Connector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	return []l1.ControllerInfo{{
		Ref:  c.Ref(),
		Meta: l1.ControllerMeta{Description: c.URL.String()},
	}}, nil
}

// Connect implements Connector. ref is ignored as the URL identifies
// the controller.
func (c *Connector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	var rw comm.PacketReadWriter
	var err error
	if c.URL.Scheme == "tcp" {
		rw, err = stream.Dial(ctx, c.URL.Host)
	} else {
		rw, err = websocket.Dial(c.URL.String())
	}
	if err != nil {
		return nil, err
	}
	conn := &comm.ControllerConn{}
	conn.Init(rw)
	return conn, nil
}
