package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/picoborg.go/pkg/framework"
)

// Groups of type IDs.
const (
	GroupCommand uint32 = 0x00000000
	GroupNav2D   uint32 = 0x00020000
	// GroupCustom is the first group for messages defined outside this
	// package.
	GroupCustom uint32 = 0x7f000000
)

// Type IDs.
const (
	CommandOKTypeID      uint32 = GroupCommand | TypeIDMaskReply | 0x0000
	CommandErrTypeID     uint32 = GroupCommand | TypeIDMaskReply | 0x0001
	Nav2DCapsQueryTypeID uint32 = GroupNav2D | 0x0000
	Nav2DCapsTypeID      uint32 = Nav2DCapsQueryTypeID | TypeIDMaskReply
	Nav2DDriveTypeID     uint32 = GroupNav2D | 0x0001
	Nav2DTurnTypeID      uint32 = GroupNav2D | 0x0002
)

// CommandOK is the reply of a command which succeeded without result.
type CommandOK struct{}

// NewCommandOK creates a CommandOK.
func NewCommandOK() *CommandOK {
	return &CommandOK{}
}

func (m *CommandOK) NewMessage() fx.Message      { return &CommandOK{} }
func (m *CommandOK) TypeID() uint32              { return CommandOKTypeID }
func (m *CommandOK) Serializable() proto.Message { return m }
func (m *CommandOK) ProtoMessage()               {}
func (m *CommandOK) Reset()                      { *m = CommandOK{} }
func (m *CommandOK) String() string              { return proto.CompactTextString(m) }

// CommandErr is the reply of a failed command. It's also an error, so
// a ControllerConn reports it as Result.Err.
type CommandErr struct {
	Message string `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
}

// NewCommandErr creates a CommandErr from an error.
func NewCommandErr(err error) *CommandErr {
	return &CommandErr{Message: err.Error()}
}

// NewCommandErrFromMsg creates a CommandErr.
func NewCommandErrFromMsg(message string) *CommandErr {
	return &CommandErr{Message: message}
}

func (m *CommandErr) NewMessage() fx.Message      { return &CommandErr{} }
func (m *CommandErr) TypeID() uint32              { return CommandErrTypeID }
func (m *CommandErr) Serializable() proto.Message { return m }
func (m *CommandErr) ProtoMessage()               {}
func (m *CommandErr) Reset()                      { *m = CommandErr{} }
func (m *CommandErr) String() string              { return proto.CompactTextString(m) }

// Error implements error.
func (m *CommandErr) Error() string { return m.Message }

// Nav2DCapsQuery asks for the Nav2DCaps of a controller.
type Nav2DCapsQuery struct{}

func (m *Nav2DCapsQuery) NewMessage() fx.Message      { return &Nav2DCapsQuery{} }
func (m *Nav2DCapsQuery) TypeID() uint32              { return Nav2DCapsQueryTypeID }
func (m *Nav2DCapsQuery) Serializable() proto.Message { return m }
func (m *Nav2DCapsQuery) ProtoMessage()               {}
func (m *Nav2DCapsQuery) Reset()                      { *m = Nav2DCapsQuery{} }
func (m *Nav2DCapsQuery) String() string              { return proto.CompactTextString(m) }

// Nav2DCaps replies Nav2DCapsQuery.
type Nav2DCaps struct {
	// DriveSpeedMax is in mm/s.
	DriveSpeedMax float32 `protobuf:"fixed32,1,opt,name=drive_speed_max,proto3" json:"drive_speed_max,omitempty"`
	// TurnSpeedMax is in radians/s.
	TurnSpeedMax float32 `protobuf:"fixed32,2,opt,name=turn_speed_max,proto3" json:"turn_speed_max,omitempty"`
}

func (m *Nav2DCaps) NewMessage() fx.Message      { return &Nav2DCaps{} }
func (m *Nav2DCaps) TypeID() uint32              { return Nav2DCapsTypeID }
func (m *Nav2DCaps) Serializable() proto.Message { return m }
func (m *Nav2DCaps) ProtoMessage()               {}
func (m *Nav2DCaps) Reset()                      { *m = Nav2DCaps{} }
func (m *Nav2DCaps) String() string              { return proto.CompactTextString(m) }

// Nav2DDrive drives straight, it replaces any ongoing turn.
type Nav2DDrive struct {
	// Speed is in mm/s, negative for backward.
	Speed float32 `protobuf:"fixed32,1,opt,name=speed,proto3" json:"speed,omitempty"`
	// Accelation is in mm/s^2, 0 reaches Speed immediately.
	Accelation float32 `protobuf:"fixed32,2,opt,name=accelation,proto3" json:"accelation,omitempty"`
}

func (m *Nav2DDrive) NewMessage() fx.Message      { return &Nav2DDrive{} }
func (m *Nav2DDrive) TypeID() uint32              { return Nav2DDriveTypeID }
func (m *Nav2DDrive) Serializable() proto.Message { return m }
func (m *Nav2DDrive) ProtoMessage()               {}
func (m *Nav2DDrive) Reset()                      { *m = Nav2DDrive{} }
func (m *Nav2DDrive) String() string              { return proto.CompactTextString(m) }

// Nav2DTurn spins in place, it replaces any ongoing drive.
type Nav2DTurn struct {
	// Speed is in radians/s, positive turns left.
	Speed float32 `protobuf:"fixed32,1,opt,name=speed,proto3" json:"speed,omitempty"`
}

func (m *Nav2DTurn) NewMessage() fx.Message      { return &Nav2DTurn{} }
func (m *Nav2DTurn) TypeID() uint32              { return Nav2DTurnTypeID }
func (m *Nav2DTurn) Serializable() proto.Message { return m }
func (m *Nav2DTurn) ProtoMessage()               {}
func (m *Nav2DTurn) Reset()                      { *m = Nav2DTurn{} }
func (m *Nav2DTurn) String() string              { return proto.CompactTextString(m) }
