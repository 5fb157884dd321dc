// Package bridge reaches the board through an I2C bridge attached on a
// serial port, using the L0 link from pkg/l0/comm.
//
// Importing the package registers the "serial" scheme:
//
//   serial:///dev/ttyUSB0?baud=115200&timeout=500ms
//
// All buses opened on the same port share one link.
package bridge

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/tarm/serial"

	"github.com/robotalks/picoborg.go/pkg/picoborg"
)

// Scheme is the locator scheme served by this package.
const Scheme = "serial"

// DefaultBaud is the baud rate used when the locator doesn't specify one.
const DefaultBaud = 115200

// portPollInterval is the serial read timeout, the L0 FIFO treats an
// empty read as a tick of its sync timer.
const portPollInterval = 50 * time.Millisecond

// PortConfig is parsed from a locator.
type PortConfig struct {
	Name    string
	Baud    int
	Timeout time.Duration
}

// ParseLocator parses a serial locator.
func ParseLocator(locator string) (*PortConfig, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return nil, err
	}
	conf := &PortConfig{Name: u.Host + u.Path, Baud: DefaultBaud, Timeout: DefaultTimeout}
	if conf.Name == "" {
		return nil, fmt.Errorf("missing serial port in %q", locator)
	}
	q := u.Query()
	if s := q.Get("baud"); s != "" {
		if conf.Baud, err = strconv.Atoi(s); err != nil || conf.Baud <= 0 {
			return nil, fmt.Errorf("invalid baud %q", s)
		}
	}
	if s := q.Get("timeout"); s != "" {
		if conf.Timeout, err = time.ParseDuration(s); err != nil || conf.Timeout <= 0 {
			return nil, fmt.Errorf("invalid timeout %q", s)
		}
	}
	return conf, nil
}

type sharedLink struct {
	link *Link
	refs int
}

var (
	linksLock sync.Mutex
	links     = make(map[string]*sharedLink)
)

func init() {
	picoborg.RegisterTransport(Scheme, Open)
}

// Open opens (or shares) the link on the serial port named by locator and
// binds addr behind the bridge.
func Open(locator string, addr uint16) (picoborg.Bus, error) {
	if addr > 0x7f {
		return nil, fmt.Errorf("address 0x%x is not a 7-bit address", addr)
	}
	conf, err := ParseLocator(locator)
	if err != nil {
		return nil, err
	}
	linksLock.Lock()
	defer linksLock.Unlock()
	shared := links[conf.Name]
	if shared == nil {
		port, err := serial.OpenPort(&serial.Config{
			Name:        conf.Name,
			Baud:        conf.Baud,
			ReadTimeout: portPollInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("open serial port %s: %w", conf.Name, err)
		}
		glog.Infof("bridge on %s at %d baud", conf.Name, conf.Baud)
		shared = &sharedLink{link: NewLink(&pollingPort{port}, true)}
		shared.link.Timeout = conf.Timeout
		links[conf.Name] = shared
	}
	shared.refs++
	return &bus{
		link:    shared.link,
		addr:    byte(addr),
		release: func() { releaseLink(conf.Name, shared) },
	}, nil
}

func releaseLink(name string, shared *sharedLink) {
	linksLock.Lock()
	defer linksLock.Unlock()
	if shared.refs--; shared.refs > 0 {
		return
	}
	delete(links, name)
	if err := shared.link.Close(); err != nil {
		glog.Warningf("close serial port %s: %v", name, err)
	}
}

// pollingPort reports a read timeout as an empty read instead of io.EOF.
type pollingPort struct {
	port *serial.Port
}

func (p *pollingPort) Read(b []byte) (int, error) {
	n, err := p.port.Read(b)
	if err == io.EOF && n == 0 {
		return 0, nil
	}
	return n, err
}

func (p *pollingPort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func (p *pollingPort) Close() error {
	return p.port.Close()
}
