// Package stream frames packets on byte streams, e.g. TCP connections.
package stream

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
)

// MaxPacketSize bounds the length prefix accepted by ReadPacket.
const MaxPacketSize = 1 << 20

// ReadWriter implements PacketReadWriter. Each packet is preceded by its
// length as a 32-bit little-endian integer.
type ReadWriter struct {
	conn io.ReadWriter

	writeLock sync.Mutex
	header    [4]byte
}

// New creates a ReadWriter on conn.
func New(conn io.ReadWriter) *ReadWriter {
	return &ReadWriter{conn: conn}
}

// ReadPacket implements comm.PacketReadWriter.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(p.conn, header[:]); err != nil {
		return nil, err
	}
	size := binary.LittleEndian.Uint32(header[:])
	if size > MaxPacketSize {
		return nil, fmt.Errorf("packet size %d exceeds %d", size, MaxPacketSize)
	}
	pkt := make([]byte, size)
	if _, err := io.ReadFull(p.conn, pkt); err != nil {
		return nil, err
	}
	return pkt, nil
}

// WritePacket implements comm.PacketReadWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	p.writeLock.Lock()
	defer p.writeLock.Unlock()
	binary.LittleEndian.PutUint32(p.header[:], uint32(len(pkt)))
	if _, err := p.conn.Write(p.header[:]); err != nil {
		return err
	}
	_, err := p.conn.Write(pkt)
	return err
}

// Close closes the stream if it's an io.Closer.
func (p *ReadWriter) Close() error {
	if closer, ok := p.conn.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
