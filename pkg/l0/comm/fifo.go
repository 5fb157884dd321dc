package comm

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"
)

// PacketHandler is called when a packet is received.
type PacketHandler interface {
	HandlePacket(context.Context, *Packet)
}

// HandlePacketFunc is func type of PacketHandler.
type HandlePacketFunc func(context.Context, *Packet)

// HandlePacket implements PacketHandler.
func (f HandlePacketFunc) HandlePacket(ctx context.Context, pkt *Packet) {
	f(ctx, pkt)
}

// StateNotifier is called when the link state changes.
type StateNotifier interface {
	StateChanged(context.Context, SyncState)
}

// StateChangedFunc is func type of StateNotifier.
type StateChangedFunc func(context.Context, SyncState)

// StateChanged implements StateNotifier.
func (f StateChangedFunc) StateChanged(ctx context.Context, state SyncState) {
	f(ctx, state)
}

// DefaultSyncTimeout is the default FIFO.Timeout.
const DefaultSyncTimeout = 100 * time.Millisecond

// FIFO frames packets over a byte stream and keeps both ends synchronized.
// Handler and Notifier are called from the Run goroutine.
type FIFO struct {
	ReadWriter io.ReadWriter
	Handler    PacketHandler
	Notifier   StateNotifier
	// Timeout bounds a handshake and the gap between bytes of a packet.
	Timeout time.Duration
	// ReadTimeout is set when Read on ReadWriter returns periodically
	// without data, e.g. a serial port with a read timeout.
	ReadTimeout bool

	lock   sync.Mutex
	seq    PacketSeq
	state  SyncState
	parser Parser
	timer  <-chan time.Time
}

// NewFIFO creates a FIFO.
func NewFIFO(rw io.ReadWriter) *FIFO {
	return &FIFO{
		ReadWriter: rw,
		Timeout:    DefaultSyncTimeout,
		seq:        NewPacketSeq(),
	}
}

// State gets the state.
func (f *FIFO) State() SyncState {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.state
}

// Send assigns the next sequence number to pkt and writes it.
func (f *FIFO) Send(pkt *Packet) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if !f.state.IsReady() {
		return ErrNotReady
	}
	pkt.Seq = f.seq
	if _, err := pkt.WriteTo(f.ReadWriter); err != nil {
		return err
	}
	f.seq = f.seq.Next()
	return nil
}

// Run reads and dispatches packets until ctx is done or reading fails.
func (f *FIFO) Run(ctx context.Context) error {
	if err := f.apply(ctx, f.parser.Reset()); err != nil {
		return err
	}
	if f.ReadTimeout {
		return f.runPolled(ctx)
	}
	return f.runStreamed(ctx)
}

// runPolled reads inline, an empty read ticks the parser timer.
func (f *FIFO) runPolled(ctx context.Context) error {
	buf := make([]byte, 1)
	for {
		var pr ParseResult
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.timer:
			pr = f.parser.Timeout()
		default:
			n, err := f.ReadWriter.Read(buf)
			switch {
			case err != nil && !os.IsTimeout(err):
				return err
			case err != nil || n == 0:
				pr = f.parser.Timeout()
			default:
				pr = f.parser.Parse(buf[0])
			}
		}
		if err := f.apply(ctx, pr); err != nil {
			return err
		}
	}
}

func (f *FIFO) runStreamed(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	byteCh, errCh := make(chan byte), make(chan error, 1)
	go f.pump(ctx, byteCh, errCh)
	for {
		var pr ParseResult
		select {
		case b := <-byteCh:
			pr = f.parser.Parse(b)
		case <-f.timer:
			pr = f.parser.Timeout()
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
		if err := f.apply(ctx, pr); err != nil {
			return err
		}
	}
}

func (f *FIFO) pump(ctx context.Context, byteCh chan<- byte, errCh chan<- error) {
	buf := make([]byte, 1)
	for {
		n, err := f.ReadWriter.Read(buf)
		if err != nil {
			errCh <- err
			return
		}
		if n == 0 {
			continue
		}
		select {
		case byteCh <- buf[0]:
		case <-ctx.Done():
			return
		}
	}
}

func (f *FIFO) apply(ctx context.Context, pr ParseResult) error {
	f.lock.Lock()
	changed := f.state != pr.State
	f.state = pr.State
	var err error
	if pr.Sync != 0 {
		_, err = f.ReadWriter.Write([]byte{pr.Sync, byte(f.seq)})
	}
	f.lock.Unlock()
	if err != nil {
		return err
	}

	f.updateTimer(pr)
	if changed {
		glog.V(3).Infof("L0 link %s", pr.State)
		if f.Notifier != nil {
			f.Notifier.StateChanged(ctx, pr.State)
		}
	}
	if pr.Packet != nil && f.Handler != nil {
		f.Handler.HandlePacket(ctx, pr.Packet)
	}
	return nil
}

func (f *FIFO) updateTimer(pr ParseResult) {
	action := pr.WhatAboutTimer()
	if f.ReadTimeout {
		// empty reads already tick the parser, only a pending sync request is timed.
		action = TimerStop
		if pr.Sync == syncREQ {
			action = TimerRestart
		}
	}
	switch action {
	case TimerRestart:
		f.timer = time.After(f.Timeout)
	case TimerStop:
		f.timer = nil
	}
}
