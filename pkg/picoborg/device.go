// Package picoborg drives a PicoBorg Reverse dual motor controller over I2C.
//
// Every transaction is either a write of an opcode with an optional payload
// byte, or a read: the opcode is written, the board is given SettleDelay to
// prepare its reply and then exactly ResponseLen bytes are read back.
// A Device is only handed out after the board answered the identity query
// with IdentityPicoBorgRev.
//
// A Device is not safe for concurrent use. Callers needing shared access
// must serialize it.
package picoborg

import (
	"time"
)

// Protocol constants.
const (
	// DefaultAddress is the factory I2C address of the board.
	DefaultAddress uint16 = 0x44
	// DefaultBusPath is the I2C bus the board is attached to on a Raspberry Pi.
	DefaultBusPath = "/dev/i2c-1"
	// IdentityPicoBorgRev is the identity byte reported by the board.
	IdentityPicoBorgRev byte = 0x15
	// SettleDelay is the wait between writing a read command and reading the reply.
	SettleDelay = 10 * time.Millisecond
	// ResponseLen is the length of every reply.
	ResponseLen = 4
)

// Motor selects a motor output.
type Motor int

// Motors.
const (
	MotorAll Motor = iota
	Motor1
	Motor2
)

// Device is a verified session with one board.
type Device struct {
	bus Bus
	buf [ResponseLen]byte
}

// Status is a snapshot of the board state.
type Status struct {
	LED        bool
	Motor1     float64
	Motor2     float64
	EPO        bool
	EPOIgnore  bool
	Failsafe   bool
	DriveFault bool
}

// Open opens the transport named by locator and verifies the board at addr.
func Open(locator string, addr uint16) (*Device, error) {
	bus, err := OpenBus(locator, addr)
	if err != nil {
		return nil, err
	}
	return New(bus)
}

// New verifies the identity of the board behind bus and returns a Device owning it.
// The bus is closed if verification fails.
func New(bus Bus) (*Device, error) {
	d := &Device{bus: bus}
	if err := d.rawRead(OpGetID); err != nil {
		bus.Close()
		return nil, err
	}
	if id := d.buf[1]; id != IdentityPicoBorgRev {
		bus.Close()
		return nil, &IdentityError{Got: id}
	}
	return d, nil
}

// Close releases the transport. Nothing is sent to the board.
func (d *Device) Close() error {
	return d.bus.Close()
}

// SetLED turns the LED on or off.
func (d *Device) SetLED(on bool) error {
	return d.rawWrite(OpSetLED.Byte(), onOff(on).Byte())
}

// LED reads the LED state.
func (d *Device) LED() (bool, error) {
	return d.readFlag(OpGetLED)
}

// SetMotor1 sets the drive level of motor 1, power is clamped to [-1, 1].
func (d *Device) SetMotor1(power float64) error {
	return d.setPower(power, OpSetMotor1Fwd, OpSetMotor1Rev)
}

// Motor1 reads the drive level of motor 1.
func (d *Device) Motor1() (float64, error) {
	return d.readPower(OpGetMotor1)
}

// SetMotor2 sets the drive level of motor 2, power is clamped to [-1, 1].
func (d *Device) SetMotor2(power float64) error {
	return d.setPower(power, OpSetMotor2Fwd, OpSetMotor2Rev)
}

// Motor2 reads the drive level of motor 2.
func (d *Device) Motor2() (float64, error) {
	return d.readPower(OpGetMotor2)
}

// SetMotors sets the drive level of both motors.
func (d *Device) SetMotors(power float64) error {
	return d.setPower(power, OpSetAllFwd, OpSetAllRev)
}

// SetMotor sets the drive level of the selected motor.
func (d *Device) SetMotor(motor Motor, power float64) error {
	switch motor {
	case Motor1:
		return d.SetMotor1(power)
	case Motor2:
		return d.SetMotor2(power)
	}
	return d.SetMotors(power)
}

// MotorPower reads the drive level of Motor1 or Motor2.
func (d *Device) MotorPower(motor Motor) (float64, error) {
	if motor == Motor2 {
		return d.Motor2()
	}
	return d.Motor1()
}

// StopMotors switches both motors off.
func (d *Device) StopMotors() error {
	return d.rawWrite(OpAllOff.Byte(), 0)
}

// ResetEPO clears the EPO latch after the safety switch is clear again.
func (d *Device) ResetEPO() error {
	return d.rawWrite(OpResetEPO.Byte(), 0)
}

// EPO reads the EPO latch. true means the EPO tripped and movement is
// blocked unless the EPO is ignored.
func (d *Device) EPO() (bool, error) {
	return d.readFlag(OpGetEPO)
}

// SetEPOIgnore makes the board ignore the EPO latch, for boards without an EPO switch.
func (d *Device) SetEPOIgnore(ignore bool) error {
	return d.rawWrite(OpSetEPOIgnore.Byte(), onOff(ignore).Byte())
}

// EPOIgnore reads whether the EPO latch is ignored.
func (d *Device) EPOIgnore() (bool, error) {
	return d.readFlag(OpGetEPOIgnore)
}

// SetCommsFailsafe enables or disables the communications failsafe.
// When enabled the board turns the motors off unless it is commanded
// at least every 1/4 of a second. It is disabled at power on.
func (d *Device) SetCommsFailsafe(enable bool) error {
	return d.rawWrite(OpSetFailsafe.Byte(), onOff(enable).Byte())
}

// CommsFailsafe reads whether the communications failsafe is enabled.
func (d *Device) CommsFailsafe() (bool, error) {
	return d.readFlag(OpGetFailsafe)
}

// DriveFault reads the drive fault flag, raised on faults like short
// circuits or under voltage. Faults clear by themselves, the flag may be
// set at power up until both motors have been driven.
func (d *Device) DriveFault() (bool, error) {
	return d.readFlag(OpGetDriveFault)
}

// Status reads the whole board state, stopping at the first error.
func (d *Device) Status() (s Status, err error) {
	if s.LED, err = d.LED(); err != nil {
		return
	}
	if s.Motor1, err = d.Motor1(); err != nil {
		return
	}
	if s.Motor2, err = d.Motor2(); err != nil {
		return
	}
	if s.EPO, err = d.EPO(); err != nil {
		return
	}
	if s.EPOIgnore, err = d.EPOIgnore(); err != nil {
		return
	}
	if s.Failsafe, err = d.CommsFailsafe(); err != nil {
		return
	}
	s.DriveFault, err = d.DriveFault()
	return
}

func (d *Device) setPower(power float64, fwd, rev Opcode) error {
	return d.rawWrite(motorOpcode(power, fwd, rev).Byte(), PowerToDuty(power))
}

func (d *Device) readFlag(op Opcode) (bool, error) {
	if err := d.rawRead(op); err != nil {
		return false, err
	}
	switch d.buf[1] {
	case ValueOn.Byte():
		return true, nil
	case ValueOff.Byte():
		return false, nil
	}
	return false, &CorruptedDataError{Op: op, Value: d.buf[1]}
}

func (d *Device) readPower(op Opcode) (float64, error) {
	if err := d.rawRead(op); err != nil {
		return 0, err
	}
	power, err := DutyToPower(d.buf[1], d.buf[2])
	if err != nil {
		return 0, &CorruptedDataError{Op: op, Value: d.buf[1]}
	}
	return power, nil
}

func (d *Device) rawWrite(frame ...byte) error {
	if err := d.bus.Write(frame); err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	return nil
}

func (d *Device) rawRead(op Opcode) error {
	d.buf = [ResponseLen]byte{}
	if err := d.bus.Write([]byte{op.Byte()}); err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	time.Sleep(SettleDelay)
	if err := d.bus.Read(d.buf[:]); err != nil {
		d.buf = [ResponseLen]byte{}
		return &TransportError{Op: "read", Err: err}
	}
	return nil
}
