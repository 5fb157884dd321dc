package picoborg

import "fmt"

// Opcode is a PicoBorg Reverse command, sent as the first byte of a frame.
type Opcode int

// Opcodes understood by the board.
// On the board motor A is Motor2 and motor B is Motor1.
const (
	OpSetLED Opcode = iota + 1
	OpGetLED
	OpSetMotor2Fwd
	OpSetMotor2Rev
	OpGetMotor2
	OpSetMotor1Fwd
	OpSetMotor1Rev
	OpGetMotor1
	OpAllOff
	OpResetEPO
	OpGetEPO
	OpSetEPOIgnore
	OpGetEPOIgnore
	OpGetDriveFault
	OpSetAllFwd
	OpSetAllRev
	OpSetFailsafe
	OpGetFailsafe
	OpGetID
)

// Byte returns the wire value of the opcode.
func (o Opcode) Byte() byte {
	switch o {
	case OpSetLED:
		return 0x01
	case OpGetLED:
		return 0x02
	case OpSetMotor2Fwd:
		return 0x03
	case OpSetMotor2Rev:
		return 0x04
	case OpGetMotor2:
		return 0x05
	case OpSetMotor1Fwd:
		return 0x06
	case OpSetMotor1Rev:
		return 0x07
	case OpGetMotor1:
		return 0x08
	case OpAllOff:
		return 0x09
	case OpResetEPO:
		return 0x0a
	case OpGetEPO:
		return 0x0b
	case OpSetEPOIgnore:
		return 0x0c
	case OpGetEPOIgnore:
		return 0x0d
	case OpGetDriveFault:
		return 0x0e
	case OpSetAllFwd:
		return 0x0f
	case OpSetAllRev:
		return 0x10
	case OpSetFailsafe:
		return 0x11
	case OpGetFailsafe:
		return 0x12
	case OpGetID:
		return 0x99
	}
	return 0
}

var opcodeNames = map[Opcode]string{
	OpSetLED:        "SetLED",
	OpGetLED:        "GetLED",
	OpSetMotor2Fwd:  "SetMotor2Fwd",
	OpSetMotor2Rev:  "SetMotor2Rev",
	OpGetMotor2:     "GetMotor2",
	OpSetMotor1Fwd:  "SetMotor1Fwd",
	OpSetMotor1Rev:  "SetMotor1Rev",
	OpGetMotor1:     "GetMotor1",
	OpAllOff:        "AllOff",
	OpResetEPO:      "ResetEPO",
	OpGetEPO:        "GetEPO",
	OpSetEPOIgnore:  "SetEPOIgnore",
	OpGetEPOIgnore:  "GetEPOIgnore",
	OpGetDriveFault: "GetDriveFault",
	OpSetAllFwd:     "SetAllFwd",
	OpSetAllRev:     "SetAllRev",
	OpSetFailsafe:   "SetFailsafe",
	OpGetFailsafe:   "GetFailsafe",
	OpGetID:         "GetID",
}

// String implements fmt.Stringer.
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Opcode(%d)", int(o))
}

// Opcodes lists all opcodes in wire order.
func Opcodes() []Opcode {
	ops := make([]Opcode, 0, len(opcodeNames))
	for op := OpSetLED; op <= OpGetID; op++ {
		ops = append(ops, op)
	}
	return ops
}

// ValueCode is a payload or response value.
// On and Forward share the same wire value, the opcode tells them apart.
type ValueCode int

// Value codes.
const (
	ValueOff ValueCode = iota
	ValueOn
	ValueForward
	ValueReverse
)

// Byte returns the wire value of the value code.
func (v ValueCode) Byte() byte {
	switch v {
	case ValueOff:
		return 0x00
	case ValueOn:
		return 0x01
	case ValueForward:
		return 0x01
	case ValueReverse:
		return 0x02
	}
	return 0
}

// String implements fmt.Stringer.
func (v ValueCode) String() string {
	switch v {
	case ValueOff:
		return "Off"
	case ValueOn:
		return "On"
	case ValueForward:
		return "Forward"
	case ValueReverse:
		return "Reverse"
	}
	return fmt.Sprintf("ValueCode(%d)", int(v))
}

func onOff(on bool) ValueCode {
	if on {
		return ValueOn
	}
	return ValueOff
}
