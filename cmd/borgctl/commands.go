package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/robotalks/picoborg.go/pkg/borg"
	"github.com/robotalks/picoborg.go/pkg/picoborg"
)

func parseOnOff(s string) (bool, error) {
	switch s {
	case "on", "1", "true", "yes":
		return true, nil
	case "off", "0", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("expect on or off: %q", s)
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func newScanCmd(flags *globalFlags) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Find boards on the bus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			first, err := borg.ParseAddress(from)
			if err != nil {
				return err
			}
			last, err := borg.ParseAddress(to)
			if err != nil {
				return err
			}
			found, err := picoborg.Scan(nil, flags.device, first, last)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(found) == 0 {
				fmt.Fprintln(out, "no board found")
				return nil
			}
			for _, addr := range found {
				fmt.Fprintf(out, "0x%02x\n", addr)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", fmt.Sprintf("0x%02x", picoborg.ScanFirstAddress), "First address to probe")
	cmd.Flags().StringVar(&to, "to", fmt.Sprintf("0x%02x", picoborg.ScanLastAddress), "Last address to probe")
	return cmd
}

func newStatusCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the board state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withDevice(func(d *picoborg.Device) error {
				s, err := d.Status()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "led:         %s\n", onOff(s.LED))
				fmt.Fprintf(out, "motor1:      %+.3f\n", s.Motor1)
				fmt.Fprintf(out, "motor2:      %+.3f\n", s.Motor2)
				fmt.Fprintf(out, "epo:         %s\n", onOff(s.EPO))
				fmt.Fprintf(out, "epo-ignore:  %s\n", onOff(s.EPOIgnore))
				fmt.Fprintf(out, "failsafe:    %s\n", onOff(s.Failsafe))
				fmt.Fprintf(out, "drive-fault: %s\n", onOff(s.DriveFault))
				return nil
			})
		},
	}
}

func newLEDCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "led on|off",
		Short:     "Switch the LED",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := parseOnOff(args[0])
			if err != nil {
				return err
			}
			return flags.withDevice(func(d *picoborg.Device) error {
				return d.SetLED(on)
			})
		},
	}
}

func newMotorCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "motor 0|1|2 POWER",
		Short: "Set motor power in [-1, 1], motor 0 sets both",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			motor, err := strconv.Atoi(args[0])
			if err != nil || motor < int(picoborg.MotorAll) || motor > int(picoborg.Motor2) {
				return fmt.Errorf("invalid motor %q", args[0])
			}
			power, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid power %q", args[1])
			}
			return flags.withDevice(func(d *picoborg.Device) error {
				return d.SetMotor(picoborg.Motor(motor), power)
			})
		},
	}
}

func newStopCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop both motors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withDevice(func(d *picoborg.Device) error {
				return d.StopMotors()
			})
		},
	}
}

func newEPOCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "epo",
		Short: "Emergency power off latch",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset a tripped EPO latch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return flags.withDevice(func(d *picoborg.Device) error {
				return d.ResetEPO()
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:       "ignore on|off",
		Short:     "Ignore the EPO input",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := parseOnOff(args[0])
			if err != nil {
				return err
			}
			return flags.withDevice(func(d *picoborg.Device) error {
				return d.SetEPOIgnore(on)
			})
		},
	})
	return cmd
}

func newFailsafeCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "failsafe on|off",
		Short:     "Switch the communications failsafe",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := parseOnOff(args[0])
			if err != nil {
				return err
			}
			return flags.withDevice(func(d *picoborg.Device) error {
				return d.SetCommsFailsafe(on)
			})
		},
	}
}
