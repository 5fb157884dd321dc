package picoborg

import "errors"

// Valid 7-bit I2C address range for scanning.
const (
	ScanFirstAddress uint16 = 0x03
	ScanLastAddress  uint16 = 0x77
)

// Scan probes addresses from..to (inclusive) on the bus named by locator
// and returns those answering with the PicoBorg Reverse identity.
// Addresses that fail to open or to answer are skipped, unless no address
// could be opened at all, which means the bus itself is unavailable.
func Scan(opener Opener, locator string, from, to uint16) ([]uint16, error) {
	if opener == nil {
		opener = OpenBus
	}
	var found []uint16
	if from > to {
		return found, nil
	}
	var openErr error
	opened := false
	for addr := from; ; addr++ {
		bus, err := opener(locator, addr)
		switch {
		case errors.Is(err, ErrUnknownScheme):
			return nil, err
		case err != nil:
			openErr = err
		default:
			opened = true
			if d, err := New(bus); err == nil {
				found = append(found, addr)
				d.Close()
			}
		}
		if addr == to {
			break
		}
	}
	if !opened && openErr != nil {
		return nil, openErr
	}
	return found, nil
}
