package msgs

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/picoborg.go/pkg/framework"
)

// A type ID is laid out as
//
//	bit 31     kind, 0 for commands (and their replies), 1 for events
//	bits 16-30 group
//	bit 15     set on replies
//	bits 0-14  ID within the group
const (
	TypeIDMaskKind  uint32 = 0x80000000
	TypeIDMaskGroup uint32 = 0x7fff0000
	TypeIDMaskID    uint32 = 0x0000ffff
	TypeIDMaskReply uint32 = 0x00008000
)

// Message kinds.
const (
	TypeIDKindCommand uint32 = 0x00000000
	TypeIDKindEvent   uint32 = 0x80000000
)

var (
	// ErrNotSerializable indicates the message is not serializable.
	ErrNotSerializable = errors.New("not serializable message")
	// ErrUnsupportedCommand is replied to commands nobody handles.
	ErrUnsupportedCommand = errors.New("unsupported command")
)

// ErrUnknownType indicates a type ID not registered.
type ErrUnknownType struct {
	TypeID uint32
}

// Error implements error.
func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %x", e.TypeID)
}

// SerializableMessage can be sent on the wire.
type SerializableMessage interface {
	fx.Message
	TypeID() uint32
	Serializable() proto.Message
}

var (
	typesLock sync.RWMutex
	types     = map[uint32]SerializableMessage{}
)

func init() {
	RegisterTypes(
		(*CommandOK)(nil),
		(*CommandErr)(nil),
		(*Nav2DCapsQuery)(nil),
		(*Nav2DCaps)(nil),
		(*Nav2DDrive)(nil),
		(*Nav2DTurn)(nil),
	)
}

// RegisterTypes adds message types, usually from init. It panics if a
// type ID is taken.
func RegisterTypes(msgs ...SerializableMessage) {
	typesLock.Lock()
	defer typesLock.Unlock()
	for _, msg := range msgs {
		id := msg.TypeID()
		if exist, ok := types[id]; ok {
			panic(fmt.Sprintf("type id %x of %T already registered by %T", id, msg, exist))
		}
		types[id] = msg
	}
}

// LookupType returns the prototype registered for id.
func LookupType(id uint32) (SerializableMessage, bool) {
	typesLock.RLock()
	defer typesLock.RUnlock()
	msg, ok := types[id]
	return msg, ok
}

// TypeName returns the type name of msg without package.
func TypeName(msg fx.Message) string {
	return reflect.Indirect(reflect.ValueOf(msg)).Type().Name()
}

// Typed is the envelope of every packet on the wire.
type Typed struct {
	TypeId   uint32 `protobuf:"varint,1,opt,name=type_id,proto3" json:"type_id,omitempty"`
	Sequence uint32 `protobuf:"varint,2,opt,name=sequence,proto3" json:"sequence,omitempty"`
	Message  []byte `protobuf:"bytes,3,opt,name=message,proto3" json:"message,omitempty"`
}

// ProtoMessage implements proto.Message.
func (p *Typed) ProtoMessage() {}

// Reset implements proto.Message.
func (p *Typed) Reset() { *p = Typed{} }

// String implements proto.Message.
func (p *Typed) String() string { return proto.CompactTextString(p) }

// TypedFrom wraps msg in an envelope, Sequence is left 0.
func TypedFrom(msg fx.Message) (*Typed, error) {
	s, ok := msg.(SerializableMessage)
	if !ok {
		return nil, ErrNotSerializable
	}
	data, err := proto.Marshal(s.Serializable())
	if err != nil {
		return nil, err
	}
	return &Typed{TypeId: s.TypeID(), Message: data}, nil
}

// DecodeTyped decodes an envelope.
func DecodeTyped(data []byte) (*Typed, error) {
	typed := &Typed{}
	if err := proto.Unmarshal(data, typed); err != nil {
		return nil, err
	}
	return typed, nil
}

// Encode encodes the envelope.
func (p *Typed) Encode() ([]byte, error) {
	return proto.Marshal(p)
}

// Decode decodes the wrapped message by its registered type.
func (p *Typed) Decode() (fx.Message, error) {
	prototype, ok := LookupType(p.TypeId)
	if !ok {
		return nil, &ErrUnknownType{TypeID: p.TypeId}
	}
	msg := prototype.NewMessage()
	if err := proto.Unmarshal(p.Message, msg.(SerializableMessage).Serializable()); err != nil {
		return nil, err
	}
	return msg, nil
}

// Kind returns TypeIDKindCommand or TypeIDKindEvent.
func (p *Typed) Kind() uint32 {
	return p.TypeId & TypeIDMaskKind
}

// IsCommand is true for commands and replies.
func (p *Typed) IsCommand() bool {
	return p.Kind() == TypeIDKindCommand
}

// IsReply is true for replies to commands.
func (p *Typed) IsReply() bool {
	return p.IsCommand() && p.TypeId&TypeIDMaskReply != 0
}

// IsEvent is true for events.
func (p *Typed) IsEvent() bool {
	return p.Kind() == TypeIDKindEvent
}

// TypedMsgHandler handles a decoded message along with its envelope.
type TypedMsgHandler interface {
	HandleTypedMsg(context.Context, fx.Message, *Typed) error
}

// HandleTypedMsgFunc is the func form of TypedMsgHandler.
type HandleTypedMsgFunc func(context.Context, fx.Message, *Typed) error

// HandleTypedMsg implements TypedMsgHandler.
func (f HandleTypedMsgFunc) HandleTypedMsg(ctx context.Context, msg fx.Message, typed *Typed) error {
	return f(ctx, msg, typed)
}
