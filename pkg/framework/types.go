package framework

import (
	"context"
	"time"
)

// Named is implemented by Runnables with a name for logging.
type Named interface {
	Name() string
}

// Runnable runs in background until ctx is done or it fails.
type Runnable interface {
	Run(context.Context) error
}

// Message is anything posted into the loop.
type Message interface {
	// NewMessage creates an empty message of the same type.
	NewMessage() Message
}

// Controller runs once per iteration at its priority level.
type Controller interface {
	Control(ControlContext) error
}

// ControlFunc is the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(cc ControlContext) error {
	return f(cc)
}

// Stopper is implemented by controllers which must release resources
// after the loop stops. Stop is called on the loop goroutine once no more
// iterations run, in reverse order of registration.
type Stopper interface {
	Stop(context.Context) error
}

// ControlContext is what a Controller sees of the current iteration.
type ControlContext interface {
	Context() context.Context
	// Time is the same for all controllers of an iteration.
	Time() time.Time
	PriorityLevel() int
	// Messages holds the messages not yet taken in this iteration.
	Messages() MessageStore
	// PostRun adds one-shot hooks after the controllers of the current
	// level. Added from a post-run hook, they run in the next iteration.
	PostRun(hooks ...Controller)

	LoopControl
}

// PriorityLevels is the number of priority levels, lower runs first.
const PriorityLevels int = 16

// Priority levels.
const (
	PrLvSense    int = 4
	PrLvControl  int = 8
	PrLvAcuate   int = 12
	PrLvIdle     int = PriorityLevels - 1
	PrLvPostProc int = PrLvIdle - 1
)

// LoopControl is usable from any goroutine.
type LoopControl interface {
	// PreRunAt adds one-shot hooks before the controllers of a level.
	PreRunAt(priorityLevel int, controllers ...Controller)
	// PostRunAt adds one-shot hooks after the controllers of a level.
	PostRunAt(priorityLevel int, controllers ...Controller)
	// PostMessage queues msg for the next iteration.
	PostMessage(Message)
	// TriggerNext runs the next iteration without waiting for the
	// interval.
	TriggerNext()
}

// MessageStore is visited by controllers in priority order, a message
// taken by one is not seen by the following ones.
type MessageStore interface {
	ProcessMessages(MessageProcessor)
	// AddMessages appends messages visible to the remaining controllers
	// of the iteration.
	AddMessages(msgs ...Message)
}

// MessageProcessor visits messages in a MessageStore.
type MessageProcessor interface {
	ProcessMessage(MessageProcessingContext)
}

// ProcessMessageFunc is the func form of MessageProcessor.
type ProcessMessageFunc func(MessageProcessingContext)

// ProcessMessage implements MessageProcessor.
func (f ProcessMessageFunc) ProcessMessage(mc MessageProcessingContext) {
	f(mc)
}

// MessageProcessingContext is passed to MessageProcessor per message.
type MessageProcessingContext interface {
	CurrentMessage() Message
	// MessageTaken removes the current message from the store.
	MessageTaken()
	// StopProcessing skips the remaining messages.
	StopProcessing()
	AddMessages(msgs ...Message)
}
