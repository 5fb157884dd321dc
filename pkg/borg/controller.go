// Package borg is the L1 controller of a PicoBorg Reverse driven robot.
//
// It serves board commands (pkg/borg/msgs) and the hardware-agnostic Nav2D
// commands by mixing drive and turn speeds into tank-style motor powers.
// The board is only accessed on the loop goroutine.
package borg

import (
	"context"
	"errors"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/picoborg.go/pkg/borg/msgs"
	fx "github.com/robotalks/picoborg.go/pkg/framework"
	"github.com/robotalks/picoborg.go/pkg/l1"
	l1msgs "github.com/robotalks/picoborg.go/pkg/l1/msgs"
	"github.com/robotalks/picoborg.go/pkg/picoborg"
)

// ErrInvalidMotor indicates the motor in BorgSetMotor is unknown.
var ErrInvalidMotor = errors.New("invalid motor")

// Controller is the L1 controller owning the board.
type Controller struct {
	Registrar      l1.Registrar
	Device         *picoborg.Device
	Drive          DriveConfig
	StatusInterval time.Duration
	// KeepaliveInterval is the max interval between motor commands when
	// the failsafe is enabled. It's checked once per loop iteration, so it
	// should be below the loop interval.
	KeepaliveInterval time.Duration

	failsafe  bool
	powers    [2]float64
	lastWrite time.Time

	nav   bool
	drive *speedRamp
	turn  float64

	status     *msgs.BorgStatus
	lastStatus time.Time
}

// NewController creates a Controller.
func NewController(reg l1.Registrar, dev *picoborg.Device) *Controller {
	return &Controller{
		Registrar:         reg,
		Device:            dev,
		Drive:             defaultConfig.Drive,
		StatusInterval:    defaultConfig.StatusInterval,
		KeepaliveInterval: DefaultKeepaliveInterval,
		failsafe:          defaultConfig.Failsafe,
	}
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvControl, c)
	loop.AddController(fx.PrLvAcuate, fx.ControlFunc(c.actuate))
	loop.AddController(fx.PrLvPostProc, fx.ControlFunc(c.reportStatus))
}

// Caps returns the Nav2D capabilities.
func (c *Controller) Caps() *l1msgs.Nav2DCaps {
	return &l1msgs.Nav2DCaps{
		DriveSpeedMax: float32(c.Drive.DriveSpeedMax),
		TurnSpeedMax:  float32(degreesToRadians(c.Drive.TurnSpeedMax)),
	}
}

// Powers returns the last motor powers written to the board.
func (c *Controller) Powers() (float64, float64) {
	return c.powers[0], c.powers[1]
}

// Control implements Controller.
func (c *Controller) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		cmdMsg, ok := mctx.CurrentMessage().(*l1.CommandMsg)
		if !ok {
			return
		}
		reply := c.execute(cc, cmdMsg.Command.Msg())
		if reply == nil {
			return
		}
		mctx.MessageTaken()
		if err := cmdMsg.Command.Done(reply); err != nil {
			glog.Warningf("reply error: %v", err)
		}
	}))
	return nil
}

// execute runs a command and returns the reply, nil if the command isn't
// served by the controller.
func (c *Controller) execute(cc fx.ControlContext, msg fx.Message) fx.Message {
	var err error
	switch m := msg.(type) {
	case *msgs.BorgStatusQuery:
		status, err := c.Device.Status()
		if err != nil {
			return l1msgs.NewCommandErr(err)
		}
		return &msgs.BorgStatusReply{Status: statusMsg(status)}
	case *msgs.BorgSetLED:
		err = c.Device.SetLED(m.On)
	case *msgs.BorgSetMotor:
		err = c.setMotor(cc.Time(), picoborg.Motor(m.Motor), float64(m.Power))
	case *msgs.BorgStop:
		c.stopNav()
		err = c.write(cc.Time(), 0, 0)
	case *msgs.BorgResetEPO:
		err = c.Device.ResetEPO()
	case *msgs.BorgSetEPOIgnore:
		err = c.Device.SetEPOIgnore(m.Ignore)
	case *msgs.BorgSetFailsafe:
		if err = c.Device.SetCommsFailsafe(m.Enable); err == nil {
			c.failsafe = m.Enable
		}
	case *l1msgs.Nav2DCapsQuery:
		return c.Caps()
	case *l1msgs.Nav2DDrive:
		now := cc.Time()
		c.drive = newSpeedRamp(c.drive.speed(now), now, float64(m.Speed), float64(m.Accelation))
		c.nav = true
	case *l1msgs.Nav2DTurn:
		c.turn = float64(m.Speed)
		c.nav = true
	default:
		return nil
	}
	if err != nil {
		return l1msgs.NewCommandErr(err)
	}
	return l1msgs.NewCommandOK()
}

func (c *Controller) setMotor(now time.Time, motor picoborg.Motor, power float64) error {
	power = picoborg.ClampPower(power)
	c.stopNav()
	switch motor {
	case picoborg.MotorAll:
		return c.write(now, power, power)
	case picoborg.Motor1:
		return c.write(now, power, c.powers[1])
	case picoborg.Motor2:
		return c.write(now, c.powers[0], power)
	}
	return ErrInvalidMotor
}

func (c *Controller) stopNav() {
	c.nav, c.drive, c.turn = false, nil, 0
}

// mix converts drive speed (mm/s) and turn speed (radians/s) into motor
// powers.
func (c *Controller) mix(drive, turn float64) (float64, float64) {
	d := drive / c.Drive.DriveSpeedMax
	t := turn / degreesToRadians(c.Drive.TurnSpeedMax)
	left, right := picoborg.ClampPower(d-t), picoborg.ClampPower(d+t)
	if c.Drive.Invert1 {
		left = -left
	}
	if c.Drive.Invert2 {
		right = -right
	}
	return left, right
}

func (c *Controller) write(now time.Time, m1, m2 float64) (err error) {
	switch {
	case m1 == 0 && m2 == 0:
		err = c.Device.StopMotors()
	case m1 == m2:
		err = c.Device.SetMotors(m1)
	default:
		if err = c.Device.SetMotor1(m1); err != nil {
			return err
		}
		// motor 1 runs at m1 even if motor 2 fails.
		c.powers[0] = m1
		err = c.Device.SetMotor2(m2)
	}
	if err != nil {
		return err
	}
	c.powers[0], c.powers[1], c.lastWrite = m1, m2, now
	glog.V(3).Infof("motors %.3f %.3f", m1, m2)
	return nil
}

func (c *Controller) actuate(cc fx.ControlContext) error {
	now := cc.Time()
	m1, m2 := c.powers[0], c.powers[1]
	if c.nav {
		m1, m2 = c.mix(c.drive.speed(now), c.turn)
		if c.drive.done(now) && c.drive.speed(now) == 0 && c.turn == 0 {
			c.stopNav()
		}
	}
	changed := m1 != c.powers[0] || m2 != c.powers[1]
	keepalive := c.failsafe && (m1 != 0 || m2 != 0) &&
		now.Sub(c.lastWrite) >= c.KeepaliveInterval
	if changed || keepalive {
		return c.write(now, m1, m2)
	}
	return nil
}

func (c *Controller) reportStatus(cc fx.ControlContext) error {
	now := cc.Time()
	if c.status != nil && now.Sub(c.lastStatus) < c.StatusInterval {
		return nil
	}
	c.lastStatus = now
	status, err := c.Device.Status()
	if err != nil {
		return err
	}
	msg := statusMsg(status)
	if c.status != nil && *c.status == *msg {
		return nil
	}
	c.status = msg
	if c.Registrar == nil {
		return nil
	}
	return c.Registrar.SendEvent(cc.Context(), msg)
}

// Stop implements Stopper. It stops the motors and closes the board.
func (c *Controller) Stop(ctx context.Context) error {
	var errs fx.AggregatedError
	errs.Add(c.Device.StopMotors(), c.Device.Close())
	return errs.Aggregate()
}

func statusMsg(s picoborg.Status) *msgs.BorgStatus {
	return &msgs.BorgStatus{
		Led:        s.LED,
		Motor1:     float32(s.Motor1),
		Motor2:     float32(s.Motor2),
		Epo:        s.EPO,
		EpoIgnore:  s.EPOIgnore,
		Failsafe:   s.Failsafe,
		DriveFault: s.DriveFault,
	}
}

var _ fx.Stopper = (*Controller)(nil)
