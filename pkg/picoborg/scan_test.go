package picoborg_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/picoborg.go/pkg/picoborg"
	"github.com/robotalks/picoborg.go/pkg/picoborg/sim"
)

func TestScan(t *testing.T) {
	found, err := picoborg.Scan(nil, "sim://?addr=0x10", picoborg.ScanFirstAddress, picoborg.ScanLastAddress)
	require.NoError(t, err)
	require.Equal(t, []uint16{0x10}, found)

	found, err = picoborg.Scan(nil, "sim://?addr=0x10&id=0x16", picoborg.ScanFirstAddress, picoborg.ScanLastAddress)
	require.NoError(t, err)
	require.Empty(t, found)

	found, err = picoborg.Scan(nil, "sim://", 0x50, 0x40)
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestScanOpener(t *testing.T) {
	var boards []*sim.Board
	opener := func(locator string, addr uint16) (picoborg.Bus, error) {
		b := sim.NewBoard()
		if addr%2 == 1 {
			b.ID = 0x20
		}
		boards = append(boards, b)
		return b, nil
	}
	found, err := picoborg.Scan(opener, "", 0xfffc, 0xffff)
	require.NoError(t, err)
	require.Equal(t, []uint16{0xfffc, 0xfffe}, found)
	require.Len(t, boards, 4)
	for _, b := range boards {
		require.True(t, b.Closed())
	}
}

func TestScanOpenFailures(t *testing.T) {
	errNoBus := errors.New("no such bus")
	_, err := picoborg.Scan(func(string, uint16) (picoborg.Bus, error) {
		return nil, errNoBus
	}, "/dev/i2c-9", picoborg.ScanFirstAddress, picoborg.ScanLastAddress)
	require.Equal(t, errNoBus, err)

	found, err := picoborg.Scan(func(locator string, addr uint16) (picoborg.Bus, error) {
		if addr != 0x44 {
			return nil, errNoBus
		}
		return sim.NewBoard(), nil
	}, "", 0x40, 0x48)
	require.NoError(t, err)
	require.Equal(t, []uint16{0x44}, found)
}

func TestScanUnknownScheme(t *testing.T) {
	_, err := picoborg.Scan(nil, "nowhere://bus", picoborg.ScanFirstAddress, picoborg.ScanLastAddress)
	require.True(t, errors.Is(err, picoborg.ErrUnknownScheme))
	var tErr *picoborg.TransportError
	require.True(t, errors.As(err, &tErr))
	require.Equal(t, "open", tErr.Op)
}

func TestLocatorScheme(t *testing.T) {
	require.Equal(t, "i2c", picoborg.LocatorScheme("/dev/i2c-1"))
	require.Equal(t, "sim", picoborg.LocatorScheme("SIM://board"))
	require.Equal(t, "serial", picoborg.LocatorScheme("serial:///dev/ttyUSB0?baud=115200"))
	require.Contains(t, picoborg.Transports(), "sim")
}
