package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func runCtl(t *testing.T, args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCtlCommands(t *testing.T) {
	dev := []string{"--device", "sim://borgctl-test"}
	run := func(args ...string) string {
		out, err := runCtl(t, append(dev, args...)...)
		require.NoError(t, err, "%v", args)
		return out
	}

	run("led", "on")
	run("motor", "1", "0.5")
	run("motor", "2", "-1")
	run("failsafe", "off")
	out := run("status")
	require.Contains(t, out, "led:         on\n")
	require.Contains(t, out, "motor1:      +0.502\n")
	require.Contains(t, out, "motor2:      -1.000\n")
	require.Contains(t, out, "failsafe:    off\n")

	run("stop")
	run("epo", "ignore", "on")
	out = run("status")
	require.Contains(t, out, "motor1:      +0.000\n")
	require.Contains(t, out, "epo-ignore:  on\n")

	out = run("scan", "--from", "0x40", "--to", "0x48")
	require.Equal(t, "0x44\n", out)
}

func TestCtlErrors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{"bad motor", []string{"motor", "3", "0.1"}},
		{"bad power", []string{"motor", "1", "fast"}},
		{"bad switch", []string{"led", "maybe"}},
		{"bad address", []string{"--address", "0x80", "stop"}},
		{"no board", []string{"--address", "0x45", "stop"}},
		{"wrong identity", []string{"--device", "sim://?id=0x16", "status"}},
		{"unknown scheme", []string{"--device", "nope://bus", "status"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{"--device", "sim://borgctl-errors"}, tc.args...)
			_, err := runCtl(t, args...)
			require.Error(t, err)
		})
	}
}
