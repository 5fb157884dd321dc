package comm

import "errors"

// Errors reported in Result.Err besides CommandError.
var (
	// ErrNotReady is returned while the FIFO hasn't synchronized with the
	// peer yet.
	ErrNotReady = errors.New("not ready")
	// ErrNoReply fails a command whose reply was skipped, i.e. the peer
	// replied a command sent after it.
	ErrNoReply = errors.New("no reply")
	ErrShortReply = errors.New("short reply")
)
