package msgs

import (
	"testing"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/picoborg.go/pkg/framework"
)

func TestTypedCodec(t *testing.T) {
	typed, err := TypedFrom(&Nav2DDrive{Speed: 120, Accelation: 40})
	require.NoError(t, err)
	require.True(t, typed.IsCommand())
	typed.Sequence = 7
	data, err := typed.Encode()
	require.NoError(t, err)

	decoded, err := DecodeTyped(data)
	require.NoError(t, err)
	require.Equal(t, Nav2DDriveTypeID, decoded.TypeId)
	require.Equal(t, uint32(7), decoded.Sequence)
	msg, err := decoded.Decode()
	require.NoError(t, err)
	require.Equal(t, &Nav2DDrive{Speed: 120, Accelation: 40}, msg)
}

func TestTypedReply(t *testing.T) {
	typed, err := TypedFrom(NewCommandErrFromMsg("boom"))
	require.NoError(t, err)
	require.True(t, typed.IsCommand())
	require.NotZero(t, typed.TypeId&TypeIDMaskReply)
	msg, err := typed.Decode()
	require.NoError(t, err)
	require.EqualError(t, msg.(*CommandErr), "boom")
}

func TestTypedUnknown(t *testing.T) {
	_, err := (&Typed{TypeId: GroupCustom | 0xfff0}).Decode()
	require.Equal(t, &ErrUnknownType{TypeID: GroupCustom | 0xfff0}, err)

	_, err = TypedFrom(&notSerializable{})
	require.Equal(t, ErrNotSerializable, err)

	require.True(t, (&Typed{TypeId: TypeIDKindEvent | GroupCustom}).IsEvent())
}

func TestRegisterTypesDuplicate(t *testing.T) {
	require.Panics(t, func() { RegisterTypes((*Nav2DTurn)(nil)) })
}

type notSerializable struct{}

func (m *notSerializable) NewMessage() fx.Message { return &notSerializable{} }

func TestTypedKinds(t *testing.T) {
	testCases := []struct {
		id      uint32
		command bool
		reply   bool
		event   bool
	}{
		{id: Nav2DDriveTypeID, command: true},
		{id: Nav2DCapsTypeID, command: true, reply: true},
		{id: CommandErrTypeID, command: true, reply: true},
		{id: TypeIDKindEvent | GroupCustom | TypeIDMaskReply | 1, event: true},
	}
	for _, tc := range testCases {
		typed := &Typed{TypeId: tc.id}
		require.Equal(t, tc.command, typed.IsCommand(), "%x", tc.id)
		require.Equal(t, tc.reply, typed.IsReply(), "%x", tc.id)
		require.Equal(t, tc.event, typed.IsEvent(), "%x", tc.id)
	}
}

func TestLookupType(t *testing.T) {
	msg, ok := LookupType(Nav2DTurnTypeID)
	require.True(t, ok)
	require.IsType(t, &Nav2DTurn{}, msg.NewMessage())
	_, ok = LookupType(GroupCustom | 0xfff1)
	require.False(t, ok)
}
