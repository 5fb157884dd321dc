// Package nav2d adds shell commands driving any controller which speaks
// the Nav2D messages, a PicoBorg daemon included.
package nav2d

import (
	"math"

	"github.com/robotalks/picoborg.go/pkg/cli/sh"
	fx "github.com/robotalks/picoborg.go/pkg/framework"
	"github.com/robotalks/picoborg.go/pkg/l1/msgs"
)

// BuildDrive builds Nav2DDrive from SPEED [ACCEL].
func BuildDrive(args []string) (fx.Message, error) {
	speed, err := sh.Float32Arg("SPEED", args[0])
	if err != nil {
		return nil, err
	}
	msg := &msgs.Nav2DDrive{Speed: speed}
	if len(args) > 1 {
		if msg.Accelation, err = sh.Float32Arg("ACCEL", args[1]); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

// BuildTurn builds Nav2DTurn from SPEED in degrees per second.
func BuildTurn(args []string) (fx.Message, error) {
	deg, err := sh.Float32Arg("SPEED", args[0])
	if err != nil {
		return nil, err
	}
	return &msgs.Nav2DTurn{Speed: deg * math.Pi / 180}, nil
}

func init() {
	sh.AddCmds(
		sh.MsgCmd("nav2d.caps", "", 0, sh.Msg(&msgs.Nav2DCapsQuery{}), "n2caps"),
		sh.MsgCmd("nav2d.drive", "SPEED(mm/s) [ACCEL(mm/s^2)]", 1, BuildDrive, "n2d"),
		sh.MsgCmd("nav2d.turn", "SPEED(degrees/s)", 1, BuildTurn, "n2t"),
	)
}
