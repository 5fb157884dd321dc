package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	borgmsgs "github.com/robotalks/picoborg.go/pkg/borg/msgs"
	"github.com/robotalks/picoborg.go/pkg/l1/msgs"
)

func encode(t *testing.T, msg msgs.SerializableMessage, seq uint32) []byte {
	typed, err := msgs.TypedFrom(msg)
	require.NoError(t, err)
	typed.Sequence = seq
	data, err := typed.Encode()
	require.NoError(t, err)
	return data
}

func TestDescribe(t *testing.T) {
	require.Equal(t, `picoborg/bench/meta: {"description":"bench"}`,
		describe("picoborg/bench/meta", []byte(`{"description":"bench"}`)))
	require.Equal(t, "picoborg/bench/meta: gone", describe("picoborg/bench/meta", nil))

	require.Contains(t, describe("picoborg/bench/cmd", encode(t, &borgmsgs.BorgSetLED{On: true}, 3)),
		"picoborg/bench/cmd: #3 BorgSetLED {on:true")
	require.Equal(t, "picoborg/bench/msg: #3 CommandOK {}",
		describe("picoborg/bench/msg", encode(t, msgs.NewCommandOK(), 3)))

	unknown, err := (&msgs.Typed{TypeId: msgs.GroupCustom | 0x0fff, Sequence: 1}).Encode()
	require.NoError(t, err)
	require.Equal(t, "picoborg/bench/cmd: #1 type 7f000fff: unknown type: 7f000fff",
		describe("picoborg/bench/cmd", unknown))

	require.Contains(t, describe("picoborg/bench/cmd", []byte{0xff}), "bad envelope")
}
