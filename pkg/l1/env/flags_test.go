package env

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/picoborg.go/pkg/l1"
)

func TestLookup(t *testing.T) {
	val := "default"
	Lookup("PICOBORG_TEST_UNSET_VAR", &val)
	require.Equal(t, "default", val)

	t.Setenv("PICOBORG_TEST_VAR", "")
	Lookup("PICOBORG_TEST_VAR", &val)
	require.Empty(t, val)
}

func TestRefValue(t *testing.T) {
	var ref l1.ControllerRef
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(RefValue{Ref: &ref}, "robot", "")
	require.NoError(t, fs.Parse([]string{"-robot", "picoborg/bench"}))
	require.Equal(t, l1.ControllerRef{Type: "picoborg", ID: "bench"}, ref)
	require.Equal(t, "picoborg/bench", RefValue{Ref: &ref}.String())
	require.Empty(t, RefValue{}.String())

	require.Error(t, RefValue{Ref: &ref}.Set("bench"))
}

func TestMachineID(t *testing.T) {
	require.NotEmpty(t, MachineID())
}
