package picoborg

import (
	"errors"
	"fmt"
)

var (
	// ErrIdentityMismatch indicates the peripheral at the address is not a PicoBorg Reverse.
	ErrIdentityMismatch = errors.New("identity mismatch")
	// ErrCorruptedData indicates a response byte outside the expected value codes.
	ErrCorruptedData = errors.New("corrupted data")
)

// TransportError wraps a failure of the underlying bus.
type TransportError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying bus error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IdentityError reports the identity byte read during the handshake.
type IdentityError struct {
	Got byte
}

// Error implements error.
func (e *IdentityError) Error() string {
	return fmt.Sprintf("%v: expected id 0x%02x, got 0x%02x", ErrIdentityMismatch, IdentityPicoBorgRev, e.Got)
}

// Unwrap returns ErrIdentityMismatch.
func (e *IdentityError) Unwrap() error {
	return ErrIdentityMismatch
}

// CorruptedDataError reports an unexpected response value.
type CorruptedDataError struct {
	Op    Opcode
	Value byte
}

// Error implements error.
func (e *CorruptedDataError) Error() string {
	return fmt.Sprintf("%v: %s replied 0x%02x", ErrCorruptedData, e.Op, e.Value)
}

// Unwrap returns ErrCorruptedData.
func (e *CorruptedDataError) Unwrap() error {
	return ErrCorruptedData
}
