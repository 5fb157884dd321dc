// Package controller builds the environment of an L1 controller daemon:
// the registrars it publishes itself through and the servers accepting
// direct connections.
package controller

import (
	"errors"
	"flag"
	"fmt"

	"github.com/golang/glog"

	fx "github.com/robotalks/picoborg.go/pkg/framework"
	"github.com/robotalks/picoborg.go/pkg/l1"
	"github.com/robotalks/picoborg.go/pkg/l1/comm"
	"github.com/robotalks/picoborg.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/picoborg.go/pkg/l1/comm/stream"
	"github.com/robotalks/picoborg.go/pkg/l1/comm/websocket"
	"github.com/robotalks/picoborg.go/pkg/l1/env"
)

// DefaultMQTTBrokerURL is the broker used when nothing is configured.
const DefaultMQTTBrokerURL = "mqtt://localhost:1883/robo/"

var (
	// ErrNoRef indicates the controller type or ID is missing.
	ErrNoRef = errors.New("controller type and id must be specified")
	// ErrNoRegistrar indicates MQTT and both listeners are disabled.
	ErrNoRegistrar = errors.New("no registrar enabled, set MQTT URL or a listen address")
)

// Config selects how the controller is published.
type Config struct {
	Info l1.ControllerInfo

	// MQTTBrokerURL is like mqtt://host:port/topic-prefix, empty disables
	// MQTT.
	MQTTBrokerURL string
	// TCPListen is the address accepting direct TCP connections.
	TCPListen string
	// WSListen is the address accepting direct websocket connections.
	WSListen string
}

var defaultConfig = Config{MQTTBrokerURL: DefaultMQTTBrokerURL}

func init() {
	defaultConfig.Info.Ref.ID = env.MachineID()
	env.Lookup("ROBO_ID", &defaultConfig.Info.Ref.ID)
	env.Lookup("ROBO_MQTT_URL", &defaultConfig.MQTTBrokerURL)
	env.Lookup("ROBO_TCP_LISTEN", &defaultConfig.TCPListen)
	env.Lookup("ROBO_WS_LISTEN", &defaultConfig.WSListen)
}

// SetupFlags registers the flags on flag.CommandLine.
func SetupFlags() {
	info := &defaultConfig.Info
	flag.StringVar(&info.Ref.Type, "type", info.Ref.Type, "Controller type")
	flag.StringVar(&info.Ref.ID, "id", info.Ref.ID, "Controller ID")
	flag.StringVar(&info.Meta.Description, "description", info.Meta.Description, "Description published with the controller")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	flag.StringVar(&defaultConfig.TCPListen, "tcp-listen", defaultConfig.TCPListen, "Accept direct TCP connections on address")
	flag.StringVar(&defaultConfig.WSListen, "ws-listen", defaultConfig.WSListen, "Accept direct websocket connections on address")
}

// SetControllerType is called from init of a daemon to describe itself.
func SetControllerType(typ string, meta l1.ControllerMeta) {
	defaultConfig.Info.Ref.Type = typ
	defaultConfig.Info.Meta = meta
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig copies the default config.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Env is added to the loop of a controller daemon. Replies and events of
// the controller go out through Registrar.
type Env struct {
	Config       *Config
	RegistryURLs []string
	Registrar    *comm.RegistrarMux
	Listener     *comm.Listener
	Servers      []fx.LoopAdder
}

// NewEnv creates the registrars and servers enabled in c.
func (c *Config) NewEnv() (*Env, error) {
	if !c.Info.Ref.IsValid() {
		return nil, ErrNoRef
	}
	e := &Env{Config: c, Registrar: &comm.RegistrarMux{}}
	if c.MQTTBrokerURL != "" {
		reg, err := mqtt.NewRegistrar(c.MQTTBrokerURL, c.Info)
		if err != nil {
			return nil, fmt.Errorf("MQTT registrar: %w", err)
		}
		e.Registrar.Add(reg)
		e.RegistryURLs = append(e.RegistryURLs, c.MQTTBrokerURL)
	}
	if c.TCPListen == "" && c.WSListen == "" {
		if len(e.Registrar.Registrars) == 0 {
			return nil, ErrNoRegistrar
		}
		return e, nil
	}
	e.Listener = comm.NewListener()
	e.Registrar.Add(e.Listener)
	if c.TCPListen != "" {
		e.Servers = append(e.Servers, stream.NewServer(c.TCPListen, e.Listener))
		e.RegistryURLs = append(e.RegistryURLs, "tcp://"+c.TCPListen)
	}
	if c.WSListen != "" {
		e.Servers = append(e.Servers, websocket.NewServer(c.WSListen, e.Listener))
		e.RegistryURLs = append(e.RegistryURLs, "ws://"+c.WSListen+websocket.DefaultPath)
	}
	return e, nil
}

// MustNewEnv exits if NewEnv fails.
func (c *Config) MustNewEnv() *Env {
	e, err := c.NewEnv()
	if err != nil {
		glog.Exit(err)
	}
	return e
}

// AddToLoop implements LoopAdder.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.Add(e.Registrar)
	loop.Add(e.Servers...)
	loop.Add(&comm.UnsupportedCommands{})
}
