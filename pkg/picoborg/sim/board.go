// Package sim emulates a PicoBorg Reverse board behind the picoborg.Bus interface.
//
// The emulation follows the board's register map: LED, two motor outputs,
// the EPO latch and its ignore flag, the communications failsafe and the
// drive fault flag. A reply is only ready picoborg.SettleDelay after the
// read command was written, earlier reads return zeros like an unprepared
// board does.
package sim

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robotalks/picoborg.go/pkg/picoborg"
)

// FailsafeTimeout is how long the board waits for a command before it
// stops the motors when the failsafe is enabled.
const FailsafeTimeout = 250 * time.Millisecond

var (
	// ErrClosed indicates the bus was closed.
	ErrClosed = errors.New("bus closed")
	// ErrEmptyFrame indicates an empty write.
	ErrEmptyFrame = errors.New("empty frame")
	// ErrNoAck is returned by every transfer to an address without a board.
	ErrNoAck = errors.New("no ack")
)

type motorState struct {
	dir  byte
	duty byte
}

// Board is an emulated board.
type Board struct {
	// ID is the identity byte reported for GetID.
	ID byte
	// Now is the clock, defaults to time.Now.
	Now func() time.Time

	lock       sync.Mutex
	led        bool
	motors     [2]motorState
	epo        bool
	epoIgnore  bool
	failsafe   bool
	driveFault bool
	lastCmd    time.Time

	reply    [picoborg.ResponseLen]byte
	replyAt  time.Time
	hasReply bool

	frames   [][]byte
	failNext error
	closed   bool
}

// NewBoard creates a board reporting the PicoBorg Reverse identity.
func NewBoard() *Board {
	b := &Board{ID: picoborg.IdentityPicoBorgRev}
	b.motors[0].dir, b.motors[1].dir = picoborg.ValueForward.Byte(), picoborg.ValueForward.Byte()
	return b
}

func (b *Board) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// Write implements picoborg.Bus.
func (b *Board) Write(p []byte) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if err := b.checkLocked(); err != nil {
		return err
	}
	if len(p) == 0 {
		return ErrEmptyFrame
	}
	frame := append([]byte(nil), p...)
	b.frames = append(b.frames, frame)
	now := b.now()
	b.expireFailsafeLocked(now)
	b.lastCmd = now
	b.hasReply = false

	var payload byte
	if len(frame) > 1 {
		payload = frame[1]
	}
	switch op := frame[0]; op {
	case picoborg.OpSetLED.Byte():
		b.led = payload == picoborg.ValueOn.Byte()
	case picoborg.OpSetMotor1Fwd.Byte():
		b.setMotorLocked(0, picoborg.ValueForward, payload)
	case picoborg.OpSetMotor1Rev.Byte():
		b.setMotorLocked(0, picoborg.ValueReverse, payload)
	case picoborg.OpSetMotor2Fwd.Byte():
		b.setMotorLocked(1, picoborg.ValueForward, payload)
	case picoborg.OpSetMotor2Rev.Byte():
		b.setMotorLocked(1, picoborg.ValueReverse, payload)
	case picoborg.OpSetAllFwd.Byte():
		b.setMotorLocked(0, picoborg.ValueForward, payload)
		b.setMotorLocked(1, picoborg.ValueForward, payload)
	case picoborg.OpSetAllRev.Byte():
		b.setMotorLocked(0, picoborg.ValueReverse, payload)
		b.setMotorLocked(1, picoborg.ValueReverse, payload)
	case picoborg.OpAllOff.Byte():
		b.stopLocked()
	case picoborg.OpResetEPO.Byte():
		b.epo = false
	case picoborg.OpSetEPOIgnore.Byte():
		b.epoIgnore = payload == picoborg.ValueOn.Byte()
	case picoborg.OpSetFailsafe.Byte():
		b.failsafe = payload == picoborg.ValueOn.Byte()
	default:
		b.prepareReplyLocked(op, now)
	}
	return nil
}

// Read implements picoborg.Bus.
func (b *Board) Read(p []byte) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if err := b.checkLocked(); err != nil {
		return err
	}
	for i := range p {
		p[i] = 0
	}
	if b.hasReply && !b.now().Before(b.replyAt) {
		copy(p, b.reply[:])
		b.hasReply = false
	}
	return nil
}

// Close implements picoborg.Bus.
func (b *Board) Close() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.closed = true
	return nil
}

// Closed tells whether the bus was closed.
func (b *Board) Closed() bool {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.closed
}

// FailNext makes the next Write or Read fail with err.
func (b *Board) FailNext(err error) {
	b.lock.Lock()
	b.failNext = err
	b.lock.Unlock()
}

// Frames returns all frames written so far.
func (b *Board) Frames() [][]byte {
	b.lock.Lock()
	defer b.lock.Unlock()
	return append([][]byte(nil), b.frames...)
}

// LastFrame returns the most recent frame written, nil if none.
func (b *Board) LastFrame() []byte {
	b.lock.Lock()
	defer b.lock.Unlock()
	if len(b.frames) == 0 {
		return nil
	}
	return b.frames[len(b.frames)-1]
}

// TripEPO simulates the EPO switch being tripped, the motors stop unless
// the EPO is ignored.
func (b *Board) TripEPO() {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.epo = true
	if !b.epoIgnore {
		b.stopLocked()
	}
}

// SetDriveFault sets the drive fault flag.
func (b *Board) SetDriveFault(fault bool) {
	b.lock.Lock()
	b.driveFault = fault
	b.lock.Unlock()
}

// Outputs returns the effective signed power of both motors.
func (b *Board) Outputs() (float64, float64) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.expireFailsafeLocked(b.now())
	m1, _ := picoborg.DutyToPower(b.motors[0].dir, b.motors[0].duty)
	m2, _ := picoborg.DutyToPower(b.motors[1].dir, b.motors[1].duty)
	return m1, m2
}

func (b *Board) checkLocked() error {
	if b.closed {
		return ErrClosed
	}
	if err := b.failNext; err != nil {
		b.failNext = nil
		return err
	}
	return nil
}

func (b *Board) setMotorLocked(index int, dir picoborg.ValueCode, duty byte) {
	if b.epo && !b.epoIgnore {
		return
	}
	if duty == 0 {
		dir = picoborg.ValueForward
	}
	b.motors[index] = motorState{dir: dir.Byte(), duty: duty}
}

func (b *Board) stopLocked() {
	for i := range b.motors {
		b.motors[i] = motorState{dir: picoborg.ValueForward.Byte()}
	}
}

func (b *Board) expireFailsafeLocked(now time.Time) {
	if b.failsafe && !b.lastCmd.IsZero() && now.Sub(b.lastCmd) > FailsafeTimeout {
		b.stopLocked()
	}
}

func (b *Board) prepareReplyLocked(op byte, now time.Time) {
	var v1, v2 byte
	switch op {
	case picoborg.OpGetLED.Byte():
		v1 = flag(b.led)
	case picoborg.OpGetMotor1.Byte():
		v1, v2 = b.motors[0].dir, b.motors[0].duty
	case picoborg.OpGetMotor2.Byte():
		v1, v2 = b.motors[1].dir, b.motors[1].duty
	case picoborg.OpGetEPO.Byte():
		v1 = flag(b.epo)
	case picoborg.OpGetEPOIgnore.Byte():
		v1 = flag(b.epoIgnore)
	case picoborg.OpGetFailsafe.Byte():
		v1 = flag(b.failsafe)
	case picoborg.OpGetDriveFault.Byte():
		v1 = flag(b.driveFault)
	case picoborg.OpGetID.Byte():
		v1 = b.ID
	default:
		return
	}
	b.reply = [picoborg.ResponseLen]byte{op, v1, v2, 0}
	b.replyAt = now.Add(picoborg.SettleDelay)
	b.hasReply = true
}

func flag(on bool) byte {
	if on {
		return picoborg.ValueOn.Byte()
	}
	return picoborg.ValueOff.Byte()
}

// String implements fmt.Stringer.
func (b *Board) String() string {
	return fmt.Sprintf("sim-board(id=0x%02x)", b.ID)
}
