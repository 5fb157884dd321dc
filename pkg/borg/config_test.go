package borg

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/picoborg.go/pkg/picoborg"
	_ "github.com/robotalks/picoborg.go/pkg/picoborg/sim"
)

func TestParseAddress(t *testing.T) {
	testCases := []struct {
		val     string
		addr    uint16
		invalid bool
	}{
		{val: "0x44", addr: 0x44},
		{val: "68", addr: 0x44},
		{val: "0x7f", addr: 0x7f},
		{val: "0x80", invalid: true},
		{val: "abc", invalid: true},
		{val: "-1", invalid: true},
	}
	for _, tc := range testCases {
		t.Run(tc.val, func(t *testing.T) {
			addr, err := ParseAddress(tc.val)
			if tc.invalid {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.addr, addr)
		})
	}
}

const testConfigYAML = `
device: sim://config
address: 0x10
failsafe: false
epo_ignore: true
status_interval: 250ms
drive:
  drive_speed_max: 300
  turn_speed_max: 90
  invert2: true
`

func writeConfig(t *testing.T, content string) string {
	fn := filepath.Join(t.TempDir(), "borgd.yaml")
	require.NoError(t, os.WriteFile(fn, []byte(content), 0644))
	return fn
}

func TestLoadFileConfig(t *testing.T) {
	fc, err := LoadFileConfig(writeConfig(t, testConfigYAML))
	require.NoError(t, err)
	require.Equal(t, "sim://config", fc.Device)
	require.Equal(t, uint16(0x10), fc.Address)
	require.Equal(t, 250*time.Millisecond, fc.StatusInterval)
	require.NotNil(t, fc.Failsafe)
	require.False(t, *fc.Failsafe)
	require.Nil(t, fc.Drive.Invert1)

	_, err = LoadFileConfig(writeConfig(t, "address: [1"))
	require.Error(t, err)
	_, err = LoadFileConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestMerge(t *testing.T) {
	fc, err := LoadFileConfig(writeConfig(t, testConfigYAML))
	require.NoError(t, err)

	conf := NewConfig()
	conf.Drive.Invert1 = true
	require.NoError(t, conf.Merge(fc, nil))
	require.Equal(t, &Config{
		Device:         "sim://config",
		Address:        0x10,
		Failsafe:       false,
		EPOIgnore:      true,
		StatusInterval: 250 * time.Millisecond,
		Drive: DriveConfig{
			DriveSpeedMax: 300,
			TurnSpeedMax:  90,
			Invert1:       true,
			Invert2:       true,
		},
		ConfigFile: conf.ConfigFile,
	}, conf)

	conf = NewConfig()
	conf.Device = "/dev/i2c-3"
	require.NoError(t, conf.Merge(fc, map[string]bool{"device": true, "failsafe": true}))
	require.Equal(t, "/dev/i2c-3", conf.Device)
	require.Equal(t, DefaultFailsafe, conf.Failsafe)
	require.Equal(t, uint16(0x10), conf.Address)

	require.Error(t, NewConfig().Merge(&FileConfig{Address: 0x80}, nil))
}

func TestExplicitFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.String("device", "", "")
	fs.Bool("failsafe", true, "")
	require.NoError(t, fs.Parse([]string{"-failsafe=false"}))
	require.Equal(t, map[string]bool{"failsafe": true}, ExplicitFlags(fs))
}

func TestValidate(t *testing.T) {
	require.NoError(t, NewConfig().Validate())
	conf := NewConfig()
	conf.Drive.TurnSpeedMax = 0
	require.Error(t, conf.Validate())
	conf = NewConfig()
	conf.StatusInterval = 0
	require.Error(t, conf.Validate())
}

func TestOpenDevice(t *testing.T) {
	conf := NewConfig()
	conf.Device = "sim://"
	conf.EPOIgnore = true
	dev, err := conf.OpenDevice()
	require.NoError(t, err)
	defer dev.Close()
	ignore, err := dev.EPOIgnore()
	require.NoError(t, err)
	require.True(t, ignore)
	failsafe, err := dev.CommsFailsafe()
	require.NoError(t, err)
	require.Equal(t, DefaultFailsafe, failsafe)

	ctl := conf.NewController(nil, dev)
	require.Equal(t, conf.Drive, ctl.Drive)
	require.Equal(t, conf.StatusInterval, ctl.StatusInterval)

	conf.Device = "sim://?id=0x16"
	_, err = conf.OpenDevice()
	require.ErrorIs(t, err, picoborg.ErrIdentityMismatch)
}
