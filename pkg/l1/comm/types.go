// Package comm carries L1 messages between controllers and their clients
// over any packet transport.
package comm

// PacketReadWriter is a packet transport. Every call reads or writes
// exactly one whole packet. ReadPacket is only called from one goroutine,
// WritePacket may be called concurrently by the Pipe's users but a Pipe
// serializes them.
type PacketReadWriter interface {
	ReadPacket() ([]byte, error)
	WritePacket([]byte) error
}
