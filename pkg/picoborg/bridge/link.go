package bridge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/picoborg.go/pkg/l0/comm"
	"github.com/robotalks/picoborg.go/pkg/picoborg"
)

// DefaultTimeout bounds one bridged transaction, including waiting for the
// link to synchronize.
const DefaultTimeout = 500 * time.Millisecond

// ErrLinkDown indicates the L0 link stopped.
var ErrLinkDown = errors.New("bridge link down")

// Link is a running L0 link to the bridge firmware.
type Link struct {
	// Timeout bounds each transaction.
	Timeout time.Duration

	rwc    io.ReadWriteCloser
	client *comm.Client
	cancel context.CancelFunc
	done   chan struct{}
	err    error

	lock    sync.Mutex
	ready   bool
	readyCh chan struct{}
}

// NewLink starts the L0 link over rwc. Set readTimeout if Read on rwc
// returns periodically without data.
func NewLink(rwc io.ReadWriteCloser, readTimeout bool) *Link {
	fifo := comm.NewFIFO(rwc)
	fifo.ReadTimeout = readTimeout
	ctx, cancel := context.WithCancel(context.Background())
	l := &Link{
		Timeout: DefaultTimeout,
		rwc:     rwc,
		client:  comm.NewClient(fifo),
		cancel:  cancel,
		done:    make(chan struct{}),
		readyCh: make(chan struct{}),
	}
	go l.run(ctx)
	go l.watch()
	return l
}

func (l *Link) run(ctx context.Context) {
	l.err = l.client.Run(ctx)
	if l.err != nil && l.err != context.Canceled {
		glog.Errorf("bridge link stopped: %v", l.err)
	}
	close(l.done)
}

// watch drains client notifications until the link stops,
// the client blocks on them otherwise.
func (l *Link) watch() {
	for {
		select {
		case state := <-l.client.StateChan():
			l.setState(state)
		case pkt := <-l.client.EventChan():
			glog.V(2).Infof("bridge event 0x%02x %v", pkt.Code, pkt.Data)
		case <-l.done:
			return
		}
	}
}

func (l *Link) setState(state comm.SyncState) {
	l.lock.Lock()
	defer l.lock.Unlock()
	switch {
	case state.IsReady() && !l.ready:
		l.ready = true
		close(l.readyCh)
	case !state.IsReady() && l.ready:
		l.ready = false
		l.readyCh = make(chan struct{})
	}
}

func (l *Link) waitReady(ctx context.Context) error {
	l.lock.Lock()
	ch := l.readyCh
	l.lock.Unlock()
	select {
	case <-ch:
		return nil
	case <-l.done:
		if l.err != nil && l.err != context.Canceled {
			return fmt.Errorf("%w: %v", ErrLinkDown, l.err)
		}
		return ErrLinkDown
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Link) transact(fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), l.Timeout)
	defer cancel()
	if err := l.waitReady(ctx); err != nil {
		return err
	}
	return fn(ctx)
}

// Write writes data to the peripheral at addr.
func (l *Link) Write(addr byte, data []byte) error {
	return l.transact(func(ctx context.Context) error {
		return l.client.I2CWrite(ctx, addr, data)
	})
}

// Read fills p from the peripheral at addr.
func (l *Link) Read(addr byte, p []byte) error {
	return l.transact(func(ctx context.Context) error {
		return l.client.I2CRead(ctx, addr, p)
	})
}

// Bus returns a picoborg.Bus for the peripheral at addr.
// Closing the Bus leaves the link running.
func (l *Link) Bus(addr byte) picoborg.Bus {
	return &bus{link: l, addr: addr, release: func() {}}
}

// Close stops the link and closes the underlying channel.
func (l *Link) Close() error {
	l.cancel()
	err := l.rwc.Close()
	<-l.done
	return err
}

type bus struct {
	link    *Link
	addr    byte
	release func()
	once    sync.Once
}

func (b *bus) Write(p []byte) error {
	err := b.link.Write(b.addr, p)
	if glog.V(3) {
		glog.Infof("bridge 0x%02x write % x: %v", b.addr, p, err)
	}
	return err
}

func (b *bus) Read(p []byte) error {
	err := b.link.Read(b.addr, p)
	if glog.V(3) {
		glog.Infof("bridge 0x%02x read % x: %v", b.addr, p, err)
	}
	return err
}

func (b *bus) Close() error {
	b.once.Do(b.release)
	return nil
}
