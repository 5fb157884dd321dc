package borg

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/picoborg.go/pkg/borg/msgs"
	fx "github.com/robotalks/picoborg.go/pkg/framework"
)

func TestParseOnOff(t *testing.T) {
	for _, s := range []string{"on", "1", "true", "yes"} {
		on, err := ParseOnOff(s)
		require.NoError(t, err)
		require.True(t, on, s)
	}
	for _, s := range []string{"off", "0", "false", "no"} {
		on, err := ParseOnOff(s)
		require.NoError(t, err)
		require.False(t, on, s)
	}
	_, err := ParseOnOff("maybe")
	require.Error(t, err)
}

func TestBuildSetMotor(t *testing.T) {
	testCases := []struct {
		args []string
		msg  *msgs.BorgSetMotor
		err  string
	}{
		{args: []string{"1", "0.5"}, msg: &msgs.BorgSetMotor{Motor: 1, Power: 0.5}},
		{args: []string{"2", "-1"}, msg: &msgs.BorgSetMotor{Motor: 2, Power: -1}},
		{args: []string{"all", "0.25"}, msg: &msgs.BorgSetMotor{Power: 0.25}},
		{args: []string{"3", "0.5"}, err: `invalid MOTOR "3"`},
		{args: []string{"1", "max"}, err: `invalid POWER "max"`},
	}
	for _, tc := range testCases {
		t.Run(tc.args[0]+" "+tc.args[1], func(t *testing.T) {
			msg, err := BuildSetMotor(tc.args)
			if tc.err != "" {
				require.EqualError(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.msg, msg)
		})
	}
}

func TestOnOffBuilder(t *testing.T) {
	build := onOff(func(on bool) fx.Message { return &msgs.BorgSetLED{On: on} })
	msg, err := build([]string{"on"})
	require.NoError(t, err)
	require.Equal(t, &msgs.BorgSetLED{On: true}, msg)
	_, err = build([]string{"dim"})
	require.Error(t, err)
}
