package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/robotalks/picoborg.go/pkg/borg"
	"github.com/robotalks/picoborg.go/pkg/picoborg"

	_ "github.com/robotalks/picoborg.go/pkg/picoborg/bridge"
	_ "github.com/robotalks/picoborg.go/pkg/picoborg/i2cdev"
	_ "github.com/robotalks/picoborg.go/pkg/picoborg/sim"
)

type globalFlags struct {
	device  string
	address string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{
		device:  borg.Default().Device,
		address: fmt.Sprintf("0x%02x", borg.Default().Address),
	}
	rootCmd := &cobra.Command{
		Use:   "borgctl",
		Short: "Operate a PicoBorg Reverse motor controller board",
		Long: `borgctl talks to a PicoBorg Reverse board directly, without going
through borgd. The device is a bus locator, e.g.

  /dev/i2c-1                        Linux I2C bus (default)
  serial:///dev/ttyUSB0?baud=115200 I2C bridge on a serial port
  sim://bench                       simulated board`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.device, "device", "d", flags.device, "Bus locator")
	rootCmd.PersistentFlags().StringVarP(&flags.address, "address", "a", flags.address, "I2C address of the board")
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	rootCmd.AddCommand(newScanCmd(flags))
	rootCmd.AddCommand(newStatusCmd(flags))
	rootCmd.AddCommand(newLEDCmd(flags))
	rootCmd.AddCommand(newMotorCmd(flags))
	rootCmd.AddCommand(newStopCmd(flags))
	rootCmd.AddCommand(newEPOCmd(flags))
	rootCmd.AddCommand(newFailsafeCmd(flags))
	return rootCmd
}

func (f *globalFlags) open() (*picoborg.Device, error) {
	addr, err := borg.ParseAddress(f.address)
	if err != nil {
		return nil, err
	}
	return picoborg.Open(f.device, addr)
}

// withDevice opens the board for the duration of fn.
func (f *globalFlags) withDevice(fn func(d *picoborg.Device) error) error {
	d, err := f.open()
	if err != nil {
		return err
	}
	defer d.Close()
	return fn(d)
}
