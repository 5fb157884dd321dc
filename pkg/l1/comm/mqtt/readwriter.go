package mqtt

import (
	"context"
	"io"
	"sync"

	"github.com/robotalks/picoborg.go/pkg/l1"
)

// Topic suffixes under a controller name.
const (
	TopicCommands = "cmd"
	TopicMessages = "msg"
	TopicMeta     = "meta"
)

// ReadWriter implements PacketReadWriter over a pair of topics.
// It receives only while Run is active.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	packetCh  chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		packetCh: make(chan []byte, 16),
		done:     make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForConnector subscribes replies and events of the controller, and
// publishes commands to it.
func (p *ReadWriter) ForConnector(ref l1.ControllerRef) *ReadWriter {
	return p.WithTopics(ControllerTopic(ref, TopicMessages), ControllerTopic(ref, TopicCommands))
}

// ForController is the controller side of ForConnector.
func (p *ReadWriter) ForController(ref l1.ControllerRef) *ReadWriter {
	return p.WithTopics(ControllerTopic(ref, TopicCommands), ControllerTopic(ref, TopicMessages))
}

// ControllerTopic builds the topic of a controller, e.g. picoborg/abc/msg.
func ControllerTopic(ref l1.ControllerRef, suffix string) string {
	return ref.Name() + "/" + suffix
}

// ReadPacket implements comm.PacketReadWriter.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.packetCh:
		return pkt, nil
	case <-p.done:
		return nil, io.EOF
	}
}

// WritePacket implements comm.PacketReadWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Close stops ReadPacket.
func (p *ReadWriter) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	return nil
}

// Run implements Runnable.
func (p *ReadWriter) Run(ctx context.Context) error {
	sub := p.Queue.Sub(p.SubTopic, p.handleMsg)
	defer sub.Close()
	defer p.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return nil
	}
}

func (p *ReadWriter) handleMsg(_ string, payload []byte) {
	select {
	case p.packetCh <- payload:
	case <-p.done:
	}
}
