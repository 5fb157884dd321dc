package controller

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/picoborg.go/pkg/l1"
)

func TestNewEnv(t *testing.T) {
	ref := l1.ControllerRef{Type: "picoborg", ID: "test"}
	testCases := []struct {
		name     string
		conf     Config
		urls     []string
		servers  int
		listener bool
		err      error
	}{
		{name: "no ref", conf: Config{MQTTBrokerURL: "mqtt://localhost:1883/robo/"}, err: ErrNoRef},
		{name: "no registrar", conf: Config{Info: l1.ControllerInfo{Ref: ref}}, err: ErrNoRegistrar},
		{
			name: "mqtt",
			conf: Config{Info: l1.ControllerInfo{Ref: ref}, MQTTBrokerURL: "mqtt://localhost:1883/robo/"},
			urls: []string{"mqtt://localhost:1883/robo/"},
		},
		{
			name:     "listeners only",
			conf:     Config{Info: l1.ControllerInfo{Ref: ref}, TCPListen: ":7000", WSListen: ":8080"},
			urls:     []string{"tcp://:7000", "ws://:8080/l1"},
			servers:  2,
			listener: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env, err := tc.conf.NewEnv()
			if tc.err != nil {
				require.Equal(t, tc.err, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.urls, env.RegistryURLs)
			require.Len(t, env.Servers, tc.servers)
			require.Equal(t, tc.listener, env.Listener != nil)
		})
	}
}

func TestDefaultID(t *testing.T) {
	require.NotEmpty(t, Default().Info.Ref.ID)
	conf := NewConfig()
	conf.Info.Ref.ID = "changed"
	require.NotEqual(t, "changed", Default().Info.Ref.ID)
}
