// Package connector configures how L2 tools (the shell, monitors) reach
// controllers, from flags and ROBO_* environment variables.
package connector

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/url"

	"github.com/robotalks/picoborg.go/pkg/l1"
	"github.com/robotalks/picoborg.go/pkg/l1/comm/direct"
	"github.com/robotalks/picoborg.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/picoborg.go/pkg/l1/env"
)

// DefaultRegistryURL is the MQTT broker used when nothing is configured.
const DefaultRegistryURL = "mqtt://localhost:1883/robo/"

// ErrNoRef is returned connecting without a controller ref.
var ErrNoRef = errors.New("controller type and id must be specified")

// Config selects the registry and optionally the controller.
type Config struct {
	Ref l1.ControllerRef

	// RegistryURL is either an MQTT broker with topic prefix, like
	// mqtt://host:port/prefix, or a controller accepting direct
	// connections: tcp://host:port, ws://host:port/path.
	RegistryURL string
}

var defaultConfig = Config{RegistryURL: DefaultRegistryURL}

func init() {
	env.Lookup("ROBO_TYPE", &defaultConfig.Ref.Type)
	env.Lookup("ROBO_ID", &defaultConfig.Ref.ID)
	env.Lookup("ROBO_REGISTRY_URL", &defaultConfig.RegistryURL)
}

// SetupFlags registers the flags on flag.CommandLine.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Ref.Type, "robot-type", defaultConfig.Ref.Type, "Controller type to connect.")
	flag.StringVar(&defaultConfig.Ref.ID, "robot-id", defaultConfig.Ref.ID, "Controller ID to connect.")
	flag.Var(env.RefValue{Ref: &defaultConfig.Ref}, "robot", "Controller to connect as TYPE/ID.")
	flag.StringVar(&defaultConfig.RegistryURL, "robot-reg", defaultConfig.RegistryURL, "Registry URL.")
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

// NewConnector creates the Connector serving RegistryURL.
func (c *Config) NewConnector() (l1.Connector, error) {
	u, err := url.Parse(c.RegistryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL: %w", err)
	}
	switch u.Scheme {
	case "mqtt", "mqtts":
		return mqtt.NewConnector(c.RegistryURL)
	case "tcp", "ws", "wss":
		return direct.NewConnector(c.RegistryURL)
	}
	return nil, fmt.Errorf("unsupported registry URL scheme %q", u.Scheme)
}

// Connect connects to Ref without discovery.
func (c *Config) Connect(ctx context.Context) (l1.ControllerConn, error) {
	if !c.Ref.IsValid() {
		return nil, ErrNoRef
	}
	connector, err := c.NewConnector()
	if err != nil {
		return nil, err
	}
	return connector.Connect(ctx, c.Ref)
}
