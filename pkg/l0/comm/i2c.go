package comm

import (
	"context"
	"fmt"
)

// I2C bridge command codes.
// Request data of CodeI2CWrite is [addr, bytes...], the reply has no data.
// Request data of CodeI2CRead is [addr, count], the reply carries count bytes.
const (
	CodeI2CWrite byte = 0x02
	CodeI2CRead  byte = 0x04
)

// Error codes replied by the bridge firmware.
const (
	ErrCodeNack    byte = 0x02
	ErrCodeBusy    byte = 0x04
	ErrCodeInvalid byte = 0x06
)

var errorCodeNames = map[byte]string{
	ErrCodeNack:    "nack",
	ErrCodeBusy:    "bus busy",
	ErrCodeInvalid: "invalid request",
}

// CommandError is a failure reported by the bridge.
type CommandError struct {
	Code byte
}

func (e *CommandError) Error() string {
	if name, ok := errorCodeNames[e.Code]; ok {
		return "i2c bridge: " + name
	}
	return fmt.Sprintf("i2c bridge: error code %#x", e.Code)
}

// MaxI2CData is the max number of bytes in one bridged transaction.
const MaxI2CData = 0x7e

// I2CWrite writes data to the peripheral at addr through the bridge.
func (c *Client) I2CWrite(ctx context.Context, addr byte, data []byte) error {
	if len(data) > MaxI2CData {
		return fmt.Errorf("i2c write of %d bytes exceeds %d", len(data), MaxI2CData)
	}
	pkt := &Packet{Code: CodeI2CWrite, Data: make([]byte, len(data)+1)}
	pkt.Data[0] = addr
	copy(pkt.Data[1:], data)
	_, err := c.Exchange(ctx, pkt)
	return err
}

// I2CRead fills p from the peripheral at addr through the bridge.
func (c *Client) I2CRead(ctx context.Context, addr byte, p []byte) error {
	if len(p) > MaxI2CData {
		return fmt.Errorf("i2c read of %d bytes exceeds %d", len(p), MaxI2CData)
	}
	r, err := c.Exchange(ctx, &Packet{Code: CodeI2CRead, Data: []byte{addr, byte(len(p))}})
	if err != nil {
		return err
	}
	if len(r.Data) < len(p) {
		return ErrShortReply
	}
	copy(p, r.Data)
	return nil
}

// ReplyTo builds the reply packet for a request.
// A non-zero errCode makes it an error reply.
func ReplyTo(req *Packet, errCode byte, data ...byte) *Packet {
	reply := &Packet{Data: make([]byte, len(data)+1)}
	reply.Data[0] = byte(req.Seq)
	copy(reply.Data[1:], data)
	if errCode != 0 {
		reply.Code = (errCode & 0x0e) | codeErrorFlag
	}
	return reply
}
