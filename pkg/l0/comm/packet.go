package comm

import (
	"io"
	"time"
)

// Bits of the code byte. Data shorter than inlineLenMax bytes carries its
// length in the code byte, longer data is preceded by a length byte.
const (
	codeMask      byte = 0x8f
	codeEventFlag byte = 0x80
	codeErrorFlag byte = 0x01
	inlineLenMask byte = 0x70
	inlineLenMax       = 7
	seqLimit           = 0xf0
)

// PacketSeq numbers the packets sent in one direction, valid values are
// 1 to 0xef, larger values are reserved for sync bytes.
type PacketSeq byte

// NewPacketSeq picks a random starting sequence number.
func NewPacketSeq() PacketSeq {
	return PacketSeq(byte(time.Now().UnixNano())).Next()
}

// Next returns the sequence number following s, wrapping to 1.
func (s PacketSeq) Next() PacketSeq {
	if n := s + 1; n.IsValid() {
		return n
	}
	return 1
}

// IsValid checks if it's a valid sequence number.
func (s PacketSeq) IsValid() bool {
	return s > 0 && s < seqLimit
}

// Packet is one framed message on the link.
type Packet struct {
	Seq  PacketSeq
	Code byte
	Data []byte
}

// IsEvent reports whether the packet is sent unsolicited by the peer.
func (p *Packet) IsEvent() bool {
	return p.Code&codeEventFlag != 0
}

func (p *Packet) header() []byte {
	code, n := p.Code&codeMask, len(p.Data)
	if n < inlineLenMax {
		return []byte{byte(p.Seq), code | byte(n)<<4}
	}
	return []byte{byte(p.Seq), code | inlineLenMask, byte(n)}
}

// Bytes returns the encoded packet.
func (p *Packet) Bytes() []byte {
	return append(p.header(), p.Data...)
}

// WriteTo implements io.WriterTo.
func (p *Packet) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(p.header())
	if err != nil || len(p.Data) == 0 {
		return int64(n), err
	}
	m, err := w.Write(p.Data)
	return int64(n + m), err
}
