// Package msgs defines L1 messages of the PicoBorg Reverse controller.
//
// Commands are replied with msgs.CommandOK, or msgs.CommandErr when the
// board fails. BorgStatusQuery is replied with BorgStatusReply.
// BorgStatus is also sent as an event.
package msgs
