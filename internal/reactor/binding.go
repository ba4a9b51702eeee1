package reactor

import (
	"sync"
	"time"
)

// binding is the Loop's Binding implementation. One watcher goroutine per
// binding feeds callbacks onto the loop; the mutex guards the seam between
// the watcher, the loop goroutine, and Close callers.
type binding struct {
	loop *Loop
	stop chan struct{}

	mu    sync.Mutex
	state BindingState
	armed bool
	cb    func(error)
	done  func()
}

// Arm installs the callback. Fails once close has been requested.
func (b *binding) Arm(cb func(error)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != BindingOpen {
		return ErrBindingClosed
	}
	b.armed = true
	b.cb = cb
	return nil
}

// Disarm stops callback delivery until the next Arm.
func (b *binding) Disarm() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.armed = false
	b.cb = nil
}

// Close requests asynchronous shutdown of the watcher. The done callback
// is retained and invoked on the loop goroutine after the watcher exits;
// a second Close is ignored.
func (b *binding) Close(done func()) {
	b.mu.Lock()
	if b.state != BindingOpen {
		b.mu.Unlock()
		return
	}
	b.state = BindingCloseRequested
	b.armed = false
	b.cb = nil
	b.done = done
	b.mu.Unlock()

	close(b.stop)
}

// State reports the lifecycle state.
func (b *binding) State() BindingState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// watchReadiness forwards readiness signals to the armed callback until
// close is requested. A closed readiness channel is reported once as an
// error, after which the watcher waits for Close.
func (b *binding) watchReadiness(ready <-chan struct{}) {
	for {
		select {
		case <-b.stop:
			b.finishClose()
			return
		case _, ok := <-ready:
			if !ok {
				b.deliver(ErrReadinessClosed)
				<-b.stop
				b.finishClose()
				return
			}
			b.deliver(nil)
		}
	}
}

// watchTimer ticks the armed callback at the given period until close is
// requested.
func (b *binding) watchTimer(period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-b.stop:
			b.finishClose()
			return
		case <-ticker.C:
			b.deliver(nil)
		}
	}
}

// deliver schedules one callback invocation on the loop. The armed check
// happens on the loop goroutine so a Disarm that has already run there is
// always respected.
func (b *binding) deliver(err error) {
	b.loop.Submit(func() {
		b.mu.Lock()
		if b.state != BindingOpen || !b.armed || b.cb == nil {
			b.mu.Unlock()
			return
		}
		cb := b.cb
		b.mu.Unlock()

		cb(err)
	})
}

// finishClose marks the binding closed and runs the retained done callback
// on the loop goroutine. Runs exactly once, after the watcher has exited.
func (b *binding) finishClose() {
	b.loop.Submit(func() {
		b.mu.Lock()
		b.state = BindingClosed
		done := b.done
		b.done = nil
		b.mu.Unlock()

		if done != nil {
			done()
		}
	})
}
