package framework

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/golang/glog"
)

// ErrForcedExit is returned by Runner.Wait when a second stop signal
// arrives before all Runnables stopped.
var ErrForcedExit = errors.New("forced exit")

// Runner runs Runnables in goroutines sharing one context and collects
// their errors.
type Runner struct {
	Context context.Context

	wg     sync.WaitGroup
	lock   sync.Mutex
	errs   AggregatedError
	exitCh chan struct{}
}

// NewRunner creates a runner with a background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a runner with ctx.
func NewRunnerWith(ctx context.Context) *Runner {
	return &Runner{Context: ctx, exitCh: make(chan struct{})}
}

// HandleSignals cancels the context on SIGINT or SIGTERM. A second
// signal makes Wait return ErrForcedExit right away.
func (r *Runner) HandleSignals() *Runner {
	ctx, cancel := context.WithCancel(r.Context)
	r.Context = ctx
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		glog.Infof("%v: stopping", sig)
		cancel()
		<-sigCh
		glog.Error("stop requested again, force exit")
		close(r.exitCh)
	}()
	return r
}

// Go starts runnables with the runner's context.
func (r *Runner) Go(runnables ...Runnable) *Runner {
	for _, runnable := range runnables {
		r.wg.Add(1)
		go r.run(runnable)
	}
	return r
}

func (r *Runner) run(runnable Runnable) {
	defer r.wg.Done()
	name := fmt.Sprintf("%T", runnable)
	if named, ok := runnable.(Named); ok {
		name = named.Name()
	}
	glog.V(4).Infof("runner %s started", name)
	err := runnable.Run(r.Context)
	glog.V(4).Infof("runner %s stopped: %v", name, err)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	r.lock.Lock()
	r.errs.Add(err)
	r.lock.Unlock()
}

// Wait waits for all Runnables to stop and aggregates their errors,
// context.Canceled is not an error.
func (r *Runner) Wait() error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-r.exitCh:
		return ErrForcedExit
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.errs.Aggregate()
}

// RunWithContextCancel runs fn which doesn't accept a context. onCancel
// is called when ctx is done before fn returns, it must make fn return.
func RunWithContextCancel(ctx context.Context, onCancel func(), fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	if onCancel != nil {
		onCancel()
	}
	<-errCh
	return ctx.Err()
}

// RunWithContextCloser runs fn and closes closer either on cancellation
// or after fn returns, exactly once.
func RunWithContextCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	var once sync.Once
	closeOnce := func() { once.Do(func() { closer.Close() }) }
	defer closeOnce()
	return RunWithContextCancel(ctx, closeOnce, fn)
}
