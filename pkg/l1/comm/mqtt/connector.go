package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	"github.com/robotalks/picoborg.go/pkg/l1"
	"github.com/robotalks/picoborg.go/pkg/l1/comm"
)

// Connector implements l1.Connector using MQTT.
type Connector struct {
	DiscoverTimeout time.Duration

	options     *paho.ClientOptions
	topicPrefix string
	newQueue    func() *Queue
}

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	c := &Connector{
		DiscoverTimeout: DefaultDiscoverTimeout,
		options:         opts,
		topicPrefix:     topicPrefix,
	}
	c.newQueue = func() *Queue { return NewQueue(c.options, c.topicPrefix) }
	return c, nil
}

// ParseMetaTopic extracts the controller ref from a <type>/<id>/meta topic.
func ParseMetaTopic(topic string) (l1.ControllerRef, bool) {
	name := strings.TrimSuffix(topic, "/"+TopicMeta)
	if name == topic {
		return l1.ControllerRef{}, false
	}
	ref, err := l1.ParseControllerRef(name)
	return ref, err == nil
}

// Discover collects the controllers announcing retained metadata until
// DiscoverTimeout elapses. A controller is listed once.
func (c *Connector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	q := c.newQueue()
	q.Connect()
	defer q.Close()

	infoCh := make(chan l1.ControllerInfo, 16)
	sub := q.Sub("+/+/"+TopicMeta, func(topic string, payload []byte) {
		ref, ok := ParseMetaTopic(topic)
		if !ok || len(payload) == 0 {
			return
		}
		info := l1.ControllerInfo{Ref: ref}
		if err := json.Unmarshal(payload, &info.Meta); err != nil {
			glog.V(2).Infof("%s: bad meta: %v", topic, err)
		}
		select {
		case infoCh <- info:
		case <-time.After(time.Second):
		}
	})
	defer sub.Close()

	dur := c.DiscoverTimeout
	if dur == 0 {
		dur = DefaultDiscoverTimeout
	}
	timeout := time.After(dur)
	var found []l1.ControllerInfo
	seen := make(map[l1.ControllerRef]bool)
	for {
		select {
		case info := <-infoCh:
			if !seen[info.Ref] {
				seen[info.Ref] = true
				found = append(found, info)
			}
		case <-timeout:
			return found, nil
		case <-ctx.Done():
			return found, ctx.Err()
		}
	}
}

// Connect implements Connector.
func (c *Connector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	conn := &ControllerConn{Queue: c.newQueue()}
	conn.Init(NewPacketReadWriter(conn.Queue).ForConnector(ref))
	token := conn.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}
	return conn, nil
}

// ControllerConn implements ControllerConn using MQTT.
type ControllerConn struct {
	comm.ControllerConn
	Queue *Queue
}

// Close stops reading replies and disconnects from the broker.
func (c *ControllerConn) Close() error {
	err := c.ControllerConn.Close()
	c.Queue.Close()
	return err
}
