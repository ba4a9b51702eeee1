package reactor

import (
	"context"
	"errors"
	"sync"
)

// submitBuffer is the loop's pending-function queue size. Submit blocks
// once it fills, which back-pressures producers instead of growing without
// bound.
const submitBuffer = 256

// Compile-time interface satisfaction check.
var _ Reactor = (*Loop)(nil)

// Loop is a single-goroutine reactor. All bound callbacks and submitted
// functions run on the goroutine that calls Run, which is what lets the
// scheduler mutate its state without locks.
type Loop struct {
	fns  chan func()
	quit chan struct{}
	once sync.Once
}

// NewLoop creates a loop. It does nothing until Run is called.
func NewLoop() *Loop {
	return &Loop{
		fns:  make(chan func(), submitBuffer),
		quit: make(chan struct{}),
	}
}

// Run processes submitted functions until ctx is cancelled or Stop is
// called. It returns ctx.Err on cancellation and nil on Stop.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.quit:
			return nil
		case fn := <-l.fns:
			fn()
		}
	}
}

// Stop terminates Run. Functions still queued are dropped.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.quit) })
}

// Submit schedules fn on the loop goroutine. Safe to call from any
// goroutine; a no-op after Stop.
func (l *Loop) Submit(fn func()) {
	select {
	case <-l.quit:
	case l.fns <- fn:
	}
}

// Bind registers a binding for src and starts its watcher goroutine.
func (l *Loop) Bind(src Source) (Binding, error) {
	if src.Readiness == nil && src.Period <= 0 {
		return nil, errors.New("reactor: source has neither readiness channel nor timer period")
	}

	b := &binding{
		loop:  l,
		state: BindingOpen,
		stop:  make(chan struct{}),
	}

	if src.Readiness != nil {
		go b.watchReadiness(src.Readiness)
	} else {
		go b.watchTimer(src.Period)
	}

	return b, nil
}
