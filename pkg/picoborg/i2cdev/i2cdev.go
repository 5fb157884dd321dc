// Package i2cdev is the Linux I2C transport of picoborg, built on periph.io.
//
// Importing the package registers the "i2c" scheme, which is also the
// default for locators without a scheme. Accepted locators:
//
//   /dev/i2c-1
//   1
//   I2C1
//   i2c:///dev/i2c-1
//   i2c://1
package i2cdev

import (
	"strings"
	"sync"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/robotalks/picoborg.go/pkg/picoborg"
)

var (
	initOnce sync.Once
	initErr  error
)

func init() {
	picoborg.RegisterTransport(picoborg.DefaultScheme, Open)
}

// BusName extracts the periph bus name from a locator.
func BusName(locator string) string {
	name := locator
	if pos := strings.Index(name, "://"); pos >= 0 {
		name = name[pos+3:]
	}
	if name == "" {
		return picoborg.DefaultBusPath
	}
	return name
}

// Device is a handle to one address on an I2C bus.
type Device struct {
	bus i2c.BusCloser
	dev i2c.Dev
}

// Open opens the I2C bus named by locator and binds addr on it.
func Open(locator string, addr uint16) (picoborg.Bus, error) {
	initOnce.Do(func() {
		_, initErr = host.Init()
	})
	if initErr != nil {
		return nil, initErr
	}
	name := BusName(locator)
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, err
	}
	glog.V(3).Infof("i2c %s opened for 0x%02x", name, addr)
	return &Device{bus: bus, dev: i2c.Dev{Bus: bus, Addr: addr}}, nil
}

// Write implements picoborg.Bus.
func (d *Device) Write(p []byte) error {
	err := d.dev.Tx(p, nil)
	if glog.V(3) {
		glog.Infof("%s write % x: %v", d.dev.String(), p, err)
	}
	return err
}

// Read implements picoborg.Bus.
func (d *Device) Read(p []byte) error {
	err := d.dev.Tx(nil, p)
	if glog.V(3) {
		glog.Infof("%s read % x: %v", d.dev.String(), p, err)
	}
	return err
}

// Close implements picoborg.Bus.
func (d *Device) Close() error {
	return d.bus.Close()
}

// String implements fmt.Stringer.
func (d *Device) String() string {
	return d.dev.String()
}
