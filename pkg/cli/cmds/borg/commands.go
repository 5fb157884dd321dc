// Package borg adds shell commands for PicoBorg Reverse controllers.
package borg

import (
	"fmt"

	"github.com/robotalks/picoborg.go/pkg/borg/msgs"
	"github.com/robotalks/picoborg.go/pkg/cli/sh"
	fx "github.com/robotalks/picoborg.go/pkg/framework"
)

// ParseOnOff parses a switch argument.
func ParseOnOff(s string) (bool, error) {
	switch s {
	case "on", "1", "true", "yes":
		return true, nil
	case "off", "0", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("expect on or off: %q", s)
}

func onOff(fn func(on bool) fx.Message) sh.MsgBuilder {
	return func(args []string) (fx.Message, error) {
		on, err := ParseOnOff(args[0])
		if err != nil {
			return nil, err
		}
		return fn(on), nil
	}
}

// BuildSetMotor builds BorgSetMotor from MOTOR POWER.
func BuildSetMotor(args []string) (fx.Message, error) {
	msg := &msgs.BorgSetMotor{}
	switch args[0] {
	case "1":
		msg.Motor = 1
	case "2":
		msg.Motor = 2
	case "all", "0":
	default:
		return nil, fmt.Errorf("invalid MOTOR %q", args[0])
	}
	var err error
	msg.Power, err = sh.Float32Arg("POWER", args[1])
	return msg, err
}

func init() {
	sh.AddCmds(
		sh.MsgCmd("borg.status", "", 0, sh.Msg(&msgs.BorgStatusQuery{}), "bs"),
		sh.MsgCmd("borg.led", "on|off", 1, onOff(func(on bool) fx.Message {
			return &msgs.BorgSetLED{On: on}
		}), "bled"),
		sh.MsgCmd("borg.motor", "MOTOR(1|2|all) POWER(-1..1)", 2, BuildSetMotor, "bm"),
		sh.MsgCmd("borg.stop", "", 0, sh.Msg(&msgs.BorgStop{}), "bstop"),
		sh.MsgCmd("borg.epo.reset", "", 0, sh.Msg(&msgs.BorgResetEPO{})),
		sh.MsgCmd("borg.epo.ignore", "on|off", 1, onOff(func(on bool) fx.Message {
			return &msgs.BorgSetEPOIgnore{Ignore: on}
		})),
		sh.MsgCmd("borg.failsafe", "on|off", 1, onOff(func(on bool) fx.Message {
			return &msgs.BorgSetFailsafe{Enable: on}
		})),
	)
}
