// Package msgs defines the L1 envelope and the messages shared by every
// controller type.
//
// L1 is spoken between a controller owning some hardware and its clients,
// it's independent of the hardware. Each packet is a protobuf encoded
// Typed wrapping one message. Controller types register their own
// messages with RegisterTypes, in groups starting at GroupCustom.
package msgs
