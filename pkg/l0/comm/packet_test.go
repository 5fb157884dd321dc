package comm

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPacketSeq(t *testing.T) {
	testCases := []struct {
		seq   PacketSeq
		valid bool
		next  PacketSeq
	}{
		{0x00, false, 0x01},
		{0x01, true, 0x02},
		{0x7f, true, 0x80},
		{0xee, true, 0xef},
		{0xef, true, 0x01},
		{0xf0, false, 0x01},
		{0xfe, false, 0x01},
		{0xff, false, 0x01},
	}
	for _, tc := range testCases {
		require.Equalf(t, tc.valid, tc.seq.IsValid(), "0x%02x", byte(tc.seq))
		require.Equalf(t, tc.next, tc.seq.Next(), "0x%02x", byte(tc.seq))
	}
	require.True(t, NewPacketSeq().IsValid())
}

func TestPacketEncoding(t *testing.T) {
	testCases := []struct {
		name   string
		packet Packet
		expect []byte
	}{
		{"write led on", Packet{Seq: 1, Code: CodeI2CWrite, Data: []byte{0x44, 0x01, 0x01}},
			[]byte{0x01, 0x32, 0x44, 0x01, 0x01}},
		{"read id", Packet{Seq: 2, Code: CodeI2CRead, Data: []byte{0x44, 4}},
			[]byte{0x02, 0x24, 0x44, 0x04}},
		{"empty reply", Packet{Seq: 3, Data: []byte{1}},
			[]byte{0x03, 0x10, 0x01}},
		{"read reply", Packet{Seq: 4, Data: []byte{2, 0x99, 0x15, 0, 0}},
			[]byte{0x04, 0x50, 0x02, 0x99, 0x15, 0x00, 0x00}},
		{"nack", Packet{Seq: 5, Code: 0x03, Data: []byte{3}},
			[]byte{0x05, 0x13, 0x03}},
		{"long write", Packet{Seq: 6, Code: CodeI2CWrite, Data: []byte{0x44, 1, 2, 3, 4, 5, 6}},
			[]byte{0x06, 0x72, 0x07, 0x44, 1, 2, 3, 4, 5, 6}},
		{"event", Packet{Seq: 7, Code: 0x82}, []byte{0x07, 0x82}},
		{"event with data", Packet{Seq: 8, Code: 0x82, Data: []byte{9}}, []byte{0x08, 0x92, 0x09}},
		{"code bits masked", Packet{Seq: 9, Code: 0x7f}, []byte{0x09, 0x0f}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, tc.packet.Bytes())
			var buf bytes.Buffer
			n, err := tc.packet.WriteTo(&buf)
			require.NoError(t, err)
			require.Equal(t, tc.expect, buf.Bytes())
			require.Equal(t, int64(len(tc.expect)), n)
			require.Equal(t, tc.packet.Code&0x80 != 0, tc.packet.IsEvent())
		})
	}
}

func TestPacketParsesBack(t *testing.T) {
	var p Parser
	p.Reset()
	p.Parse(syncACK)
	p.Parse(0x20)
	pkt := &Packet{Seq: 0x20, Code: CodeI2CWrite, Data: []byte{0x44, 0x0d, 0x01, 0x0e, 0x02, 0x80, 0x7f, 0x00}}
	var pr ParseResult
	for _, b := range pkt.Bytes() {
		pr = p.Parse(b)
	}
	require.Equal(t, pkt, pr.Packet)
	require.Equal(t, SyncStateReady, pr.State)
}
