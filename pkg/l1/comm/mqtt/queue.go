package mqtt

import (
	"sync"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// Handler is the callback when a message is received.
type Handler func(topic string, payload []byte)

// ConnectHandler is to handle connect/disconnect events.
type ConnectHandler func(*Queue)

// Queue wraps an MQTT client and multiplexes subscriptions under a topic
// prefix. Each filter is subscribed on the broker once, however many
// handlers share it.
type Queue struct {
	Client       paho.Client
	TopicPrefix  string
	OnConnect    ConnectHandler
	OnDisconnect ConnectHandler

	lock sync.RWMutex
	subs map[string][]*Subscription
}

// Subscription is a handler subscribed to a filter.
type Subscription struct {
	// Token completes when the broker acknowledged a new filter.
	Token paho.Token

	queue   *Queue
	filter  string
	handler Handler
}

// NewQueue creates Queue.
func NewQueue(options *paho.ClientOptions, topicPrefix string) *Queue {
	q := &Queue{TopicPrefix: topicPrefix}
	options.SetOnConnectHandler(q.OnConnectHandler)
	options.SetConnectionLostHandler(q.ConnectionLostHandler)
	q.Client = paho.NewClient(options)
	return q
}

// NewQueueFromURL creates Queue from URL.
func NewQueueFromURL(brokerURL string) (*Queue, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return NewQueue(opts, topicPrefix), nil
}

// Connect connects the client.
func (q *Queue) Connect() paho.Token {
	return q.Client.Connect()
}

// Close implements io.Closer.
func (q *Queue) Close() error {
	q.Client.Disconnect(0)
	return nil
}

// Sub subscribes handler to filter, relative to TopicPrefix.
func (q *Queue) Sub(filter string, handler Handler) *Subscription {
	sub := &Subscription{queue: q, filter: filter, handler: handler}
	q.lock.Lock()
	if q.subs == nil {
		q.subs = make(map[string][]*Subscription)
	}
	first := len(q.subs[filter]) == 0
	q.subs[filter] = append(q.subs[filter], sub)
	q.lock.Unlock()

	if first {
		glog.V(2).Infof("SUB %q", q.TopicPrefix+filter)
		sub.Token = q.Client.Subscribe(q.TopicPrefix+filter, 0, q.dispatch)
	} else {
		sub.Token = &paho.DummyToken{}
	}
	return sub
}

// Pub publishes to a topic.
func (q *Queue) Pub(topic string, payload []byte) paho.Token {
	return q.PubWith(topic, payload, 0, false)
}

// PubWith publishes with QoS and retain settings.
func (q *Queue) PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token {
	glog.V(2).Infof("PUB %q %d bytes", q.TopicPrefix+topic, len(payload))
	return q.Client.Publish(q.TopicPrefix+topic, qos, retain, payload)
}

// Resubscribe subscribes all filters again, the broker forgets them
// with a clean session.
func (q *Queue) Resubscribe() paho.Token {
	q.lock.RLock()
	filters := make(map[string]byte, len(q.subs))
	for filter := range q.subs {
		filters[q.TopicPrefix+filter] = 0
	}
	q.lock.RUnlock()
	if len(filters) == 0 {
		return &paho.DummyToken{}
	}
	glog.V(2).Infof("SUB %d filters", len(filters))
	return q.Client.SubscribeMultiple(filters, q.dispatch)
}

// OnConnectHandler is the default implementation of paho.OnConnectHandler.
func (q *Queue) OnConnectHandler(paho.Client) {
	glog.Info("MQTT connected")
	q.Resubscribe()
	if h := q.OnConnect; h != nil {
		h(q)
	}
}

// ConnectionLostHandler is the default implementation of paho.ConnectionLostHandler.
func (q *Queue) ConnectionLostHandler(c paho.Client, err error) {
	glog.Warningf("MQTT connection lost: %v", err)
	if h := q.OnDisconnect; h != nil {
		h(q)
	}
}

// handlers collects the handlers matching topic.
func (q *Queue) handlers(topic string) []Handler {
	q.lock.RLock()
	defer q.lock.RUnlock()
	var handlers []Handler
	for filter, subs := range q.subs {
		if filter != topic && (!IsWildcard(filter) || !MatchTopic(topic, filter)) {
			continue
		}
		for _, sub := range subs {
			handlers = append(handlers, sub.handler)
		}
	}
	return handlers
}

func (q *Queue) dispatch(c paho.Client, msg paho.Message) {
	topic := msg.Topic()
	if len(topic) < len(q.TopicPrefix) || topic[:len(q.TopicPrefix)] != q.TopicPrefix {
		return
	}
	topic = topic[len(q.TopicPrefix):]
	glog.V(2).Infof("RCV %q", topic)
	payload := msg.Payload()
	for _, h := range q.handlers(topic) {
		h(topic, payload)
	}
}

// Close removes the handler, the filter is unsubscribed with its last handler.
func (s *Subscription) Close() error {
	q := s.queue
	q.lock.Lock()
	subs, found := q.subs[s.filter], false
	for i, sub := range subs {
		if sub == s {
			subs, found = append(subs[:i:i], subs[i+1:]...), true
			break
		}
	}
	if !found {
		q.lock.Unlock()
		return nil
	}
	last := len(subs) == 0
	if last {
		delete(q.subs, s.filter)
	} else {
		q.subs[s.filter] = subs
	}
	q.lock.Unlock()

	if !last {
		return nil
	}
	glog.V(2).Infof("UNSUB %q", q.TopicPrefix+s.filter)
	token := q.Client.Unsubscribe(q.TopicPrefix + s.filter)
	token.Wait()
	return token.Error()
}
