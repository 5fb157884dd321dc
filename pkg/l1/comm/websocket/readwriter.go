// Package websocket carries packets as binary websocket frames, for
// browsers and other HTTP-only peers.
package websocket

import "golang.org/x/net/websocket"

// ReadWriter implements PacketReadWriter, one frame per packet.
type ReadWriter struct {
	conn *websocket.Conn
}

// New wraps conn.
func New(conn *websocket.Conn) *ReadWriter {
	return &ReadWriter{conn: conn}
}

// ReadPacket implements comm.PacketReadWriter. Text frames are accepted as well.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	var pkt []byte
	if err := websocket.Message.Receive(p.conn, &pkt); err != nil {
		return nil, err
	}
	return pkt, nil
}

// WritePacket implements comm.PacketReadWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send(p.conn, pkt)
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return p.conn.Close()
}
