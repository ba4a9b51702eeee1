package reactor

import (
	"errors"
	"time"
)

// ErrBindingClosed is returned when arming a binding whose close has been
// requested or completed.
var ErrBindingClosed = errors.New("reactor binding is closed")

// ErrReadinessClosed is delivered to an armed callback when the readiness
// channel is closed underneath the binding.
var ErrReadinessClosed = errors.New("readiness source closed")

// BindingState tracks a binding's resource lifecycle.
type BindingState int

const (
	// BindingOpen means the binding is live and may be armed.
	BindingOpen BindingState = iota + 1
	// BindingCloseRequested means Close was called but the watcher has not
	// yet stopped.
	BindingCloseRequested
	// BindingClosed means the watcher has stopped and the done callback
	// has run (or is about to run on the loop).
	BindingClosed
)

// String returns a human-readable state name.
func (s BindingState) String() string {
	switch s {
	case BindingOpen:
		return "open"
	case BindingCloseRequested:
		return "close_requested"
	case BindingClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Source describes what a binding watches. Exactly one variant applies:
// a readiness channel if Readiness is non-nil, otherwise a periodic timer
// with the given period.
type Source struct {
	Readiness <-chan struct{}
	Period    time.Duration
}

// Binding is one registration with the reactor. A binding only delivers
// callbacks while armed; it is created once per holder and re-armed for
// each dispatch rather than re-created.
type Binding interface {
	// Arm installs cb to be invoked on the loop goroutine on each
	// readiness signal (or timer tick) until Disarm. The error argument
	// is non-nil when the readiness source itself failed.
	Arm(cb func(error)) error

	// Disarm stops callback delivery. Signals arriving while disarmed
	// are dropped.
	Disarm()

	// Close requests asynchronous shutdown. done runs on the loop
	// goroutine strictly after the watcher has stopped; it is ignored on
	// a second Close.
	Close(done func())

	// State reports the binding's lifecycle state.
	State() BindingState
}

// Reactor creates bindings and runs functions on its loop goroutine.
type Reactor interface {
	// Bind registers a new binding for the given source.
	Bind(src Source) (Binding, error)

	// Submit schedules fn to run on the loop goroutine.
	Submit(fn func())
}
