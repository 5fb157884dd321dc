package comm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type clientHarness struct {
	*testLine
	t      *testing.T
	client *Client
	ready  chan struct{}
}

// startClient runs a client and completes the handshake with peer
// sequence 1. Both directions start at sequence 1.
func startClient(t *testing.T) *clientHarness {
	h := &clientHarness{
		testLine: newTestLine(false),
		t:        t,
		ready:    make(chan struct{}, 16),
	}
	fifo := NewFIFO(h.testLine)
	fifo.seq = 1
	h.client = NewClient(fifo)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.client.Run(ctx)
	go func() {
		for {
			select {
			case state := <-h.client.StateChan():
				if state == SyncStateReady {
					h.ready <- struct{}{}
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	h.expect(t, syncREQ, 1)
	h.inject(syncACK, 1)
	h.waitReady()
	return h
}

func (h *clientHarness) waitReady() {
	select {
	case <-h.ready:
	case <-time.After(testWait):
		h.t.Fatal("link not ready")
	}
}

// reply injects a packet from the peer and waits until it is consumed.
func (h *clientHarness) reply(bs ...byte) {
	h.inject(bs...)
	h.waitReady()
}

func (h *clientHarness) result(cmd *Command) Result {
	select {
	case r := <-cmd.ResultChan():
		return r
	case <-time.After(testWait):
		h.t.Fatal("result timeout")
	}
	return Result{}
}

func TestClientReply(t *testing.T) {
	h := startClient(t)
	cmd := h.client.Do(&Packet{Code: 0x06})
	require.Equal(t, PacketSeq(1), cmd.RequestSeq())
	h.expect(t, 0x01, 0x06)
	h.reply(0x01, 0x14, 0x01)
	require.Equal(t, Result{Code: 0x04, Data: []byte{}}, h.result(cmd))
}

func TestClientMissedReply(t *testing.T) {
	h := startClient(t)
	first := h.client.Do(&Packet{Code: 0x06})
	second := h.client.Do(&Packet{Code: 0x08})
	h.expect(t, 0x01, 0x06, 0x02, 0x08)
	h.reply(0x01, 0x22, 0x02, 0x03)
	require.Equal(t, Result{Err: ErrNoReply}, h.result(first))
	require.Equal(t, Result{Code: 0x02, Data: []byte{0x03}}, h.result(second))
}

func TestClientErrorReply(t *testing.T) {
	h := startClient(t)
	cmd := h.client.Do(&Packet{Code: CodeI2CWrite, Data: []byte{0x45}})
	h.expect(t, 0x01, 0x12, 0x45)
	h.reply(0x01, 0x15, 0x01)
	r := h.result(cmd)
	require.Equal(t, &CommandError{Code: ErrCodeBusy}, r.Err)
	require.Equal(t, "i2c bridge: bus busy", r.Err.Error())
	require.Equal(t, "i2c bridge: error code 0x8", (&CommandError{Code: 8}).Error())
}

func TestClientEvents(t *testing.T) {
	h := startClient(t)
	cmd := h.client.Do(&Packet{Code: 0x06})
	h.expect(t, 0x01, 0x06)
	h.reply(0x01, 0x91, 0x02)
	select {
	case pkt := <-h.client.EventChan():
		require.Equal(t, &Packet{Seq: 1, Code: 0x81, Data: []byte{0x02}}, pkt)
	case <-time.After(testWait):
		t.Fatal("event timeout")
	}
	h.reply(0x02, 0x10, 0x01)
	require.Equal(t, Result{Code: 0, Data: []byte{}}, h.result(cmd))
}

func TestClientIgnoresStrayReplies(t *testing.T) {
	h := startClient(t)
	cmd := h.client.Do(&Packet{Code: 0x06})
	h.expect(t, 0x01, 0x06)
	h.reply(0x01, 0x10, 0x09)
	h.reply(0x02, 0x00)
	h.reply(0x03, 0x10, 0xf5)
	select {
	case r := <-cmd.ResultChan():
		t.Fatalf("unexpected result %v", r)
	default:
	}
	h.reply(0x04, 0x10, 0x01)
	require.NoError(t, h.result(cmd).Err)
}

func TestClientNotReady(t *testing.T) {
	client := NewClient(NewFIFO(newTestLine(false)))
	r := <-client.Do(&Packet{Code: 0x06}).ResultChan()
	require.Equal(t, ErrNotReady, r.Err)
	require.Empty(t, client.pending)
}
