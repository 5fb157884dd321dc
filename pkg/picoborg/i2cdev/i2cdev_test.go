package i2cdev

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"

	"github.com/robotalks/picoborg.go/pkg/picoborg"
)

func TestBusName(t *testing.T) {
	testCases := []struct {
		locator string
		expect  string
	}{
		{"", "/dev/i2c-1"},
		{"i2c://", "/dev/i2c-1"},
		{"/dev/i2c-0", "/dev/i2c-0"},
		{"i2c:///dev/i2c-3", "/dev/i2c-3"},
		{"i2c://1", "1"},
		{"I2C1", "I2C1"},
	}
	for _, tc := range testCases {
		t.Run(tc.locator, func(t *testing.T) {
			require.Equal(t, tc.expect, BusName(tc.locator))
		})
	}
}

func TestRegistered(t *testing.T) {
	require.Contains(t, picoborg.Transports(), picoborg.DefaultScheme)
}

type tx struct {
	addr uint16
	w    []byte
	read bool
}

type fakeBus struct {
	txs    []tx
	last   byte
	closed bool
}

func (b *fakeBus) String() string                    { return "fake" }
func (b *fakeBus) SetSpeed(f physic.Frequency) error { return nil }
func (b *fakeBus) Close() error                      { b.closed = true; return nil }
func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	b.txs = append(b.txs, tx{addr: addr, w: append([]byte(nil), w...), read: len(r) > 0})
	if len(w) > 0 {
		b.last = w[0]
	}
	if len(r) > 0 {
		r[0] = b.last
		if b.last == picoborg.OpGetID.Byte() {
			r[1] = picoborg.IdentityPicoBorgRev
		}
	}
	return nil
}

func TestDeviceTransfers(t *testing.T) {
	flag.Set("v", "3")
	defer flag.Set("v", "0")

	bus := &fakeBus{}
	d, err := picoborg.New(&Device{bus: bus, dev: i2c.Dev{Bus: bus, Addr: 0x44}})
	require.NoError(t, err)
	require.NoError(t, d.StopMotors())
	require.Equal(t, []tx{
		{addr: 0x44, w: []byte{0x99}},
		{addr: 0x44, read: true},
		{addr: 0x44, w: []byte{0x09, 0x00}},
	}, bus.txs)
	require.NoError(t, d.Close())
	require.True(t, bus.closed)
}
