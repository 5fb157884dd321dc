package msgs

import (
	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/picoborg.go/pkg/framework"
	"github.com/robotalks/picoborg.go/pkg/l1/msgs"
)

// BorgStatusQuery queries the board status.
type BorgStatusQuery struct {
}

// NewMessage implements Message.
func (m *BorgStatusQuery) NewMessage() fx.Message { return &BorgStatusQuery{} }

// TypeID implements SerializableMessage.
func (m *BorgStatusQuery) TypeID() uint32 { return BorgStatusQueryTypeID }

// Serializable implements SerializableMessage.
func (m *BorgStatusQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *BorgStatusQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *BorgStatusQuery) Reset() { *m = BorgStatusQuery{} }

// String implements proto.Message.
func (m *BorgStatusQuery) String() string { return proto.CompactTextString(m) }

// BorgStatusReply is the response for BorgStatusQuery.
type BorgStatusReply struct {
	Status *BorgStatus `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
}

// NewMessage implements Message.
func (m *BorgStatusReply) NewMessage() fx.Message { return &BorgStatusReply{} }

// TypeID implements SerializableMessage.
func (m *BorgStatusReply) TypeID() uint32 { return BorgStatusReplyTypeID }

// Serializable implements SerializableMessage.
func (m *BorgStatusReply) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *BorgStatusReply) ProtoMessage() {}

// Reset implements proto.Message.
func (m *BorgStatusReply) Reset() { *m = BorgStatusReply{} }

// String implements proto.Message.
func (m *BorgStatusReply) String() string { return proto.CompactTextString(m) }

// BorgStatus is the board status. It's also sent as an event when it changes.
// Motor powers are in [-1, 1], Epo is set when the emergency power off
// latch tripped.
type BorgStatus struct {
	Led        bool    `protobuf:"varint,1,opt,name=led,proto3" json:"led,omitempty"`
	Motor1     float32 `protobuf:"fixed32,2,opt,name=motor1,proto3" json:"motor1,omitempty"`
	Motor2     float32 `protobuf:"fixed32,3,opt,name=motor2,proto3" json:"motor2,omitempty"`
	Epo        bool    `protobuf:"varint,4,opt,name=epo,proto3" json:"epo,omitempty"`
	EpoIgnore  bool    `protobuf:"varint,5,opt,name=epo_ignore,proto3" json:"epo_ignore,omitempty"`
	Failsafe   bool    `protobuf:"varint,6,opt,name=failsafe,proto3" json:"failsafe,omitempty"`
	DriveFault bool    `protobuf:"varint,7,opt,name=drive_fault,proto3" json:"drive_fault,omitempty"`
}

// NewMessage implements Message.
func (m *BorgStatus) NewMessage() fx.Message { return &BorgStatus{} }

// TypeID implements SerializableMessage.
func (m *BorgStatus) TypeID() uint32 { return BorgStatusTypeID }

// Serializable implements SerializableMessage.
func (m *BorgStatus) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *BorgStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *BorgStatus) Reset() { *m = BorgStatus{} }

// String implements proto.Message.
func (m *BorgStatus) String() string { return proto.CompactTextString(m) }

// BorgSetLED turns the LED on or off.
type BorgSetLED struct {
	On bool `protobuf:"varint,1,opt,name=on,proto3" json:"on,omitempty"`
}

// NewMessage implements Message.
func (m *BorgSetLED) NewMessage() fx.Message { return &BorgSetLED{} }

// TypeID implements SerializableMessage.
func (m *BorgSetLED) TypeID() uint32 { return BorgSetLEDTypeID }

// Serializable implements SerializableMessage.
func (m *BorgSetLED) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *BorgSetLED) ProtoMessage() {}

// Reset implements proto.Message.
func (m *BorgSetLED) Reset() { *m = BorgSetLED{} }

// String implements proto.Message.
func (m *BorgSetLED) String() string { return proto.CompactTextString(m) }

// BorgSetMotor sets the power of a motor.
// Motor is 1 or 2, 0 for both. Power is in [-1, 1], negative for reverse.
type BorgSetMotor struct {
	Motor uint32  `protobuf:"varint,1,opt,name=motor,proto3" json:"motor,omitempty"`
	Power float32 `protobuf:"fixed32,2,opt,name=power,proto3" json:"power,omitempty"`
}

// NewMessage implements Message.
func (m *BorgSetMotor) NewMessage() fx.Message { return &BorgSetMotor{} }

// TypeID implements SerializableMessage.
func (m *BorgSetMotor) TypeID() uint32 { return BorgSetMotorTypeID }

// Serializable implements SerializableMessage.
func (m *BorgSetMotor) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *BorgSetMotor) ProtoMessage() {}

// Reset implements proto.Message.
func (m *BorgSetMotor) Reset() { *m = BorgSetMotor{} }

// String implements proto.Message.
func (m *BorgSetMotor) String() string { return proto.CompactTextString(m) }

// BorgStop stops both motors.
type BorgStop struct {
}

// NewMessage implements Message.
func (m *BorgStop) NewMessage() fx.Message { return &BorgStop{} }

// TypeID implements SerializableMessage.
func (m *BorgStop) TypeID() uint32 { return BorgStopTypeID }

// Serializable implements SerializableMessage.
func (m *BorgStop) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *BorgStop) ProtoMessage() {}

// Reset implements proto.Message.
func (m *BorgStop) Reset() { *m = BorgStop{} }

// String implements proto.Message.
func (m *BorgStop) String() string { return proto.CompactTextString(m) }

// BorgResetEPO resets the emergency power off latch.
type BorgResetEPO struct {
}

// NewMessage implements Message.
func (m *BorgResetEPO) NewMessage() fx.Message { return &BorgResetEPO{} }

// TypeID implements SerializableMessage.
func (m *BorgResetEPO) TypeID() uint32 { return BorgResetEPOTypeID }

// Serializable implements SerializableMessage.
func (m *BorgResetEPO) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *BorgResetEPO) ProtoMessage() {}

// Reset implements proto.Message.
func (m *BorgResetEPO) Reset() { *m = BorgResetEPO{} }

// String implements proto.Message.
func (m *BorgResetEPO) String() string { return proto.CompactTextString(m) }

// BorgSetEPOIgnore makes the board ignore the EPO latch.
type BorgSetEPOIgnore struct {
	Ignore bool `protobuf:"varint,1,opt,name=ignore,proto3" json:"ignore,omitempty"`
}

// NewMessage implements Message.
func (m *BorgSetEPOIgnore) NewMessage() fx.Message { return &BorgSetEPOIgnore{} }

// TypeID implements SerializableMessage.
func (m *BorgSetEPOIgnore) TypeID() uint32 { return BorgSetEPOIgnoreTypeID }

// Serializable implements SerializableMessage.
func (m *BorgSetEPOIgnore) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *BorgSetEPOIgnore) ProtoMessage() {}

// Reset implements proto.Message.
func (m *BorgSetEPOIgnore) Reset() { *m = BorgSetEPOIgnore{} }

// String implements proto.Message.
func (m *BorgSetEPOIgnore) String() string { return proto.CompactTextString(m) }

// BorgSetFailsafe enables the communication failsafe.
type BorgSetFailsafe struct {
	Enable bool `protobuf:"varint,1,opt,name=enable,proto3" json:"enable,omitempty"`
}

// NewMessage implements Message.
func (m *BorgSetFailsafe) NewMessage() fx.Message { return &BorgSetFailsafe{} }

// TypeID implements SerializableMessage.
func (m *BorgSetFailsafe) TypeID() uint32 { return BorgSetFailsafeTypeID }

// Serializable implements SerializableMessage.
func (m *BorgSetFailsafe) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *BorgSetFailsafe) ProtoMessage() {}

// Reset implements proto.Message.
func (m *BorgSetFailsafe) Reset() { *m = BorgSetFailsafe{} }

// String implements proto.Message.
func (m *BorgSetFailsafe) String() string { return proto.CompactTextString(m) }

// GroupBorg is the TypeID group of board messages.
const GroupBorg uint32 = msgs.GroupCustom | 0x00010000

// TypeIDs
const (
	BorgStatusQueryTypeID  uint32 = GroupBorg | 0x0000
	BorgStatusReplyTypeID  uint32 = BorgStatusQueryTypeID | msgs.TypeIDMaskReply
	BorgSetLEDTypeID       uint32 = GroupBorg | 0x0001
	BorgSetMotorTypeID     uint32 = GroupBorg | 0x0002
	BorgStopTypeID         uint32 = GroupBorg | 0x0003
	BorgResetEPOTypeID     uint32 = GroupBorg | 0x0004
	BorgSetEPOIgnoreTypeID uint32 = GroupBorg | 0x0005
	BorgSetFailsafeTypeID  uint32 = GroupBorg | 0x0006
	BorgStatusTypeID       uint32 = msgs.TypeIDKindEvent | GroupBorg | 0x0000
)

func init() {
	msgs.RegisterTypes(
		(*BorgStatusQuery)(nil),
		(*BorgStatusReply)(nil),
		(*BorgStatus)(nil),
		(*BorgSetLED)(nil),
		(*BorgSetMotor)(nil),
		(*BorgStop)(nil),
		(*BorgResetEPO)(nil),
		(*BorgSetEPOIgnore)(nil),
		(*BorgSetFailsafe)(nil),
	)
}
