package framework

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the iteration interval of a new Loop.
const DefaultInterval = 100 * time.Millisecond

// Loop runs controllers periodically by priority level, feeding them the
// messages posted since the previous iteration. Runnables added to the
// loop run along with it and see LoopControl in their context.
type Loop struct {
	Interval time.Duration
	// Now is the clock of iterations, defaults to time.Now.
	Now func() time.Time

	levels   [PriorityLevels]level
	runners  []Runnable
	stoppers []Stopper

	lock     sync.Mutex
	posted   []Message
	wakeUpCh chan struct{}
}

// LoopAdder knows how to add itself to a Loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type level struct {
	controllers []Controller

	lock      sync.Mutex
	preHooks  []Controller
	postHooks []Controller
}

type loopCtxKeyType struct{}

var loopCtxKey loopCtxKeyType

// LoopCtlFrom gets LoopControl from the context passed to Runnables
// added to a Loop, or to a Controller.
func LoopCtlFrom(ctx context.Context) LoopControl {
	return ctx.Value(loopCtxKey).(LoopControl)
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval, wakeUpCh: make(chan struct{}, 1)}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController adds controllers at priorityLevel. A controller which is
// also a Runnable or a Stopper is registered as such.
func (l *Loop) AddController(priorityLevel int, ctls ...Controller) *Loop {
	lv := &l.levels[priorityLevel]
	lv.controllers = append(lv.controllers, ctls...)
	for _, ctl := range ctls {
		if runnable, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runnable)
		}
		if stopper, ok := ctl.(Stopper); ok {
			l.stoppers = append(l.stoppers, stopper)
		}
	}
	return l
}

// AddStopper adds Stoppers which are not controllers.
func (l *Loop) AddStopper(stoppers ...Stopper) *Loop {
	l.stoppers = append(l.stoppers, stoppers...)
	return l
}

// AddRunnable adds Runnables.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Run implements Runnable. It returns ctx.Err() after the Runnables
// returned and the Stoppers were called.
func (l *Loop) Run(ctx context.Context) error {
	if l.wakeUpCh == nil {
		l.wakeUpCh = make(chan struct{}, 1)
	}
	runner := NewRunnerWith(context.WithValue(ctx, loopCtxKey, LoopControl(l)))
	runner.Go(l.runners...)
	defer func() {
		l.stop()
		if err := runner.Wait(); err != nil {
			glog.Errorf("loop runners: %v", err)
		}
	}()

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-l.wakeUpCh:
		}
		l.runIteration(ctx)
	}
}

// RunOrFail runs the loop until SIGINT or SIGTERM, for use in main.
func (l *Loop) RunOrFail() {
	if err := NewRunner().HandleSignals().Go(l).Wait(); err != nil {
		glog.Fatal(err)
	}
}

// RunOnce runs a single iteration, to drive a loop which is not running,
// e.g. in tests.
func (l *Loop) RunOnce(ctx context.Context) {
	l.runIteration(ctx)
}

func (l *Loop) stop() {
	ctx := context.WithValue(context.Background(), loopCtxKey, LoopControl(l))
	for i := len(l.stoppers) - 1; i >= 0; i-- {
		if err := l.stoppers[i].Stop(ctx); err != nil {
			glog.Errorf("stop error: %v", err)
		}
	}
}

func (l *Loop) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// PreRunAt implements LoopControl.
func (l *Loop) PreRunAt(priorityLevel int, hooks ...Controller) {
	lv := &l.levels[priorityLevel]
	lv.lock.Lock()
	lv.preHooks = append(lv.preHooks, hooks...)
	lv.lock.Unlock()
}

// PostRunAt implements LoopControl.
func (l *Loop) PostRunAt(priorityLevel int, hooks ...Controller) {
	lv := &l.levels[priorityLevel]
	lv.lock.Lock()
	lv.postHooks = append(lv.postHooks, hooks...)
	lv.lock.Unlock()
}

// PostMessage implements LoopControl.
func (l *Loop) PostMessage(msg Message) {
	l.lock.Lock()
	l.posted = append(l.posted, msg)
	l.lock.Unlock()
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

func (l *Loop) runIteration(ctx context.Context) {
	iter := &iteration{Loop: l, time: l.now()}
	l.lock.Lock()
	iter.messages, l.posted = l.posted, nil
	l.lock.Unlock()
	iter.ctx = context.WithValue(ctx, loopCtxKey, LoopControl(iter))
	for i := range l.levels {
		iter.priorityLevel = i
		iter.runLevel(&l.levels[i])
	}
}

// iteration implements ControlContext and MessageStore.
type iteration struct {
	*Loop
	ctx           context.Context
	time          time.Time
	priorityLevel int
	messages      []Message
}

func (t *iteration) Context() context.Context { return t.ctx }
func (t *iteration) Time() time.Time          { return t.time }
func (t *iteration) PriorityLevel() int       { return t.priorityLevel }
func (t *iteration) Messages() MessageStore   { return t }

func (t *iteration) PostRun(hooks ...Controller) {
	t.PostRunAt(t.priorityLevel, hooks...)
}

func (t *iteration) AddMessages(msgs ...Message) {
	t.messages = append(t.messages, msgs...)
}

func (t *iteration) ProcessMessages(proc MessageProcessor) {
	pending := t.messages
	t.messages = nil
	remains := make([]Message, 0, len(pending))
	for n, msg := range pending {
		mctx := &messageContext{iter: t, msg: msg}
		proc.ProcessMessage(mctx)
		if !mctx.taken {
			remains = append(remains, msg)
		}
		if mctx.stop {
			remains = append(remains, pending[n+1:]...)
			break
		}
	}
	// messages added during processing go last
	t.messages = append(remains, t.messages...)
}

func (t *iteration) runLevel(lv *level) {
	lv.lock.Lock()
	hooks := lv.preHooks
	lv.preHooks = nil
	lv.lock.Unlock()
	t.runControllers(hooks)
	t.runControllers(lv.controllers)
	lv.lock.Lock()
	hooks, lv.postHooks = lv.postHooks, nil
	lv.lock.Unlock()
	t.runControllers(hooks)
}

func (t *iteration) runControllers(ctls []Controller) {
	for _, ctl := range ctls {
		if err := ctl.Control(t); err != nil {
			glog.Errorf("controller error: %v", err)
		}
	}
}

type messageContext struct {
	iter  *iteration
	msg   Message
	taken bool
	stop  bool
}

func (c *messageContext) CurrentMessage() Message     { return c.msg }
func (c *messageContext) MessageTaken()               { c.taken = true }
func (c *messageContext) StopProcessing()             { c.stop = true }
func (c *messageContext) AddMessages(msgs ...Message) { c.iter.AddMessages(msgs...) }
