package picoborg_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/picoborg.go/pkg/picoborg"
	"github.com/robotalks/picoborg.go/pkg/picoborg/sim"
)

func openSim(t *testing.T) (*picoborg.Device, *sim.Board) {
	b := sim.NewBoard()
	d, err := picoborg.New(b)
	require.NoError(t, err)
	return d, b
}

func TestDeviceOnBoard(t *testing.T) {
	d, b := openSim(t)
	defer d.Close()

	require.NoError(t, d.SetLED(true))
	on, err := d.LED()
	require.NoError(t, err)
	require.True(t, on)
	require.NoError(t, d.SetLED(false))
	on, err = d.LED()
	require.NoError(t, err)
	require.False(t, on)

	require.NoError(t, d.SetMotor1(0.75))
	p, err := d.Motor1()
	require.NoError(t, err)
	require.InDelta(t, 0.749, p, 0.001)

	require.NoError(t, d.SetMotor2(-0.5))
	p, err = d.Motor2()
	require.NoError(t, err)
	require.InDelta(t, -0.5, p, 1.0/picoborg.DutyMax)

	require.NoError(t, d.SetMotors(-1))
	m1, m2 := b.Outputs()
	require.Equal(t, -1.0, m1)
	require.Equal(t, -1.0, m2)

	require.NoError(t, d.StopMotors())
	require.Equal(t, []byte{0x09, 0x00}, b.LastFrame())
	m1, m2 = b.Outputs()
	require.Zero(t, m1)
	require.Zero(t, m2)
}

func TestDeviceEPO(t *testing.T) {
	d, b := openSim(t)
	b.TripEPO()
	epo, err := d.EPO()
	require.NoError(t, err)
	require.True(t, epo)

	require.NoError(t, d.SetMotor1(1))
	m1, _ := b.Outputs()
	require.Zero(t, m1)

	require.NoError(t, d.SetEPOIgnore(true))
	ignored, err := d.EPOIgnore()
	require.NoError(t, err)
	require.True(t, ignored)
	require.NoError(t, d.SetMotor1(1))
	m1, _ = b.Outputs()
	require.Equal(t, 1.0, m1)

	require.NoError(t, d.SetEPOIgnore(false))
	require.NoError(t, d.ResetEPO())
	epo, err = d.EPO()
	require.NoError(t, err)
	require.False(t, epo)
}

func TestDeviceFailsafe(t *testing.T) {
	d, b := openSim(t)
	defer d.Close()
	now := time.Now()
	b.Now = func() time.Time { return now }

	require.NoError(t, d.SetCommsFailsafe(true))
	require.NoError(t, d.SetMotor2(0.5))
	now = now.Add(sim.FailsafeTimeout / 2)
	_, m2 := b.Outputs()
	require.InDelta(t, 0.5, m2, 0.01)

	now = now.Add(sim.FailsafeTimeout)
	_, m2 = b.Outputs()
	require.Zero(t, m2)
}

func TestDeviceBoardFaults(t *testing.T) {
	d, b := openSim(t)
	b.SetDriveFault(true)
	fault, err := d.DriveFault()
	require.NoError(t, err)
	require.True(t, fault)

	b.FailNext(errors.New("nack"))
	_, err = d.Status()
	var tErr *picoborg.TransportError
	require.True(t, errors.As(err, &tErr))
	require.Equal(t, "write", tErr.Op)

	s, err := d.Status()
	require.NoError(t, err)
	require.True(t, s.DriveFault)

	require.NoError(t, d.Close())
	require.True(t, b.Closed())
	require.True(t, errors.Is(d.SetLED(true), sim.ErrClosed))
}

func TestOpenSim(t *testing.T) {
	d, err := picoborg.Open("sim://", picoborg.DefaultAddress)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	_, err = picoborg.Open("sim://?id=0x16", picoborg.DefaultAddress)
	require.True(t, errors.Is(err, picoborg.ErrIdentityMismatch))

	_, err = picoborg.Open("sim://", 0x45)
	var tErr *picoborg.TransportError
	require.True(t, errors.As(err, &tErr))
	require.Equal(t, "write", tErr.Op)
	require.True(t, errors.Is(err, sim.ErrNoAck))

	d, err = picoborg.Open("sim://shared", picoborg.DefaultAddress)
	require.NoError(t, err)
	require.NoError(t, d.SetLED(true))
	require.NoError(t, d.Close())
	d, err = picoborg.Open("sim://shared", picoborg.DefaultAddress)
	require.NoError(t, err)
	defer d.Close()
	on, err := d.LED()
	require.NoError(t, err)
	require.True(t, on)
}
