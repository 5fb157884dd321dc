// Command robomon prints the traffic of controllers registered on an
// MQTT broker, decoding L1 and PicoBorg messages.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/golang/glog"

	"github.com/robotalks/picoborg.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/picoborg.go/pkg/l1/env"
	"github.com/robotalks/picoborg.go/pkg/l1/env/connector"
	"github.com/robotalks/picoborg.go/pkg/l1/msgs"

	_ "github.com/robotalks/picoborg.go/pkg/borg/msgs"
)

var (
	mqttURL = connector.DefaultRegistryURL
	filter  = "#"
)

func init() {
	env.Lookup("ROBO_MQTT_URL", &mqttURL)
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&filter, "filter", filter, "Topic filter under the prefix, e.g. picoborg/+/msg.")
}

// describe formats a message published under the topic prefix.
func describe(topic string, payload []byte) string {
	if strings.HasSuffix(topic, "/"+mqtt.TopicMeta) {
		if len(payload) == 0 {
			return topic + ": gone"
		}
		return topic + ": " + string(payload)
	}
	typed, err := msgs.DecodeTyped(payload)
	if err != nil {
		return fmt.Sprintf("%s: bad envelope: %v", topic, err)
	}
	msg, err := typed.Decode()
	if err != nil {
		return fmt.Sprintf("%s: #%d type %x: %v", topic, typed.Sequence, typed.TypeId, err)
	}
	text := msg.(msgs.SerializableMessage).Serializable().String()
	return fmt.Sprintf("%s: #%d %s {%s}", topic, typed.Sequence, msgs.TypeName(msg), text)
}

func main() {
	flag.Set("logtostderr", "true")
	flag.Parse()

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		glog.Exit(err)
	}
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		glog.Exit(token.Error())
	}
	defer q.Close()

	sub := q.Sub(filter, func(topic string, payload []byte) {
		glog.Info(describe(topic, payload))
	})
	defer sub.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
}
