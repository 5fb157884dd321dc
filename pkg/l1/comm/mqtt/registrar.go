package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"

	fx "github.com/robotalks/picoborg.go/pkg/framework"
	"github.com/robotalks/picoborg.go/pkg/l1"
	"github.com/robotalks/picoborg.go/pkg/l1/comm"
)

// ClientIDPrefix prefixes the default MQTT client ID of a registrar.
const ClientIDPrefix = "picoborg:"

// Registrar implements l1.Registrar using MQTT.
//
// The controller metadata is published retained on <name>/meta while
// connected. The last will clears it, so a controller dropping off the
// broker disappears from discovery.
type Registrar struct {
	Queue *Queue
	Info  l1.ControllerInfo

	meta      []byte
	registrar comm.Registrar
}

// NewRegistrar creates a Registrar.
func NewRegistrar(brokerURL string, info l1.ControllerInfo) (*Registrar, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, fmt.Errorf("encode controller meta: %w", err)
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+ControllerTopic(info.Ref, TopicMeta), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID(ClientIDPrefix + info.Ref.Name())
	}
	return newRegistrar(NewQueue(opts, topicPrefix), info, meta), nil
}

func newRegistrar(q *Queue, info l1.ControllerInfo, meta []byte) *Registrar {
	r := &Registrar{Queue: q, Info: info, meta: meta}
	r.Queue.OnConnect = func(*Queue) { r.publishMeta(r.meta) }
	r.registrar.Init(NewPacketReadWriter(r.Queue).ForController(info.Ref))
	return r
}

// SendEvent implements Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	return r.registrar.SendEvent(ctx, msg)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.registrar)
	loop.AddRunnable(r)
}

// Run implements Runnable.
func (r *Registrar) Run(ctx context.Context) error {
	r.Queue.Connect()
	<-ctx.Done()
	r.publishMeta(nil).Wait()
	return r.Queue.Close()
}

func (r *Registrar) publishMeta(meta []byte) paho.Token {
	return r.Queue.PubWith(ControllerTopic(r.Info.Ref, TopicMeta), meta, 1, true)
}
