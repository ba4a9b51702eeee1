package session_test

import (
	"github.com/rburnham/asq/internal/driver"
	"github.com/rburnham/asq/internal/reactor"
)

// fakeResult is a scripted driver result.
type fakeResult struct {
	status   driver.ResultStatus
	errMsg   string
	value    string
	released bool
}

func (r *fakeResult) Status() driver.ResultStatus { return r.status }
func (r *fakeResult) ErrorMessage() string        { return r.errMsg }
func (r *fakeResult) Columns() []string           { return []string{"value"} }
func (r *fakeResult) Rows() [][]*string           { v := r.value; return [][]*string{{&v}} }
func (r *fakeResult) RowsAffected() int64         { return 0 }
func (r *fakeResult) Release()                    { r.released = true }

func okResult(value string) *fakeResult {
	return &fakeResult{status: driver.ResultTuplesOK, value: value}
}

func fatalResult(msg string) *fakeResult {
	return &fakeResult{status: driver.ResultFatalError, errMsg: msg}
}

// sentQuery records one dispatched statement.
type sentQuery struct {
	sql    string
	params []*string
}

// batch scripts the driver's behavior for one dispatched statement: how
// many readiness callbacks it stays busy for and which results it yields.
type batch struct {
	busyFor int
	results []*fakeResult
}

// fakeConn is a scripted driver.Conn. The test drives the state machine by
// firing the fake binding; the conn replays one batch per SendQuery in
// dispatch order.
type fakeConn struct {
	status     driver.Status
	batches    []batch
	sent       []sentQuery
	pending    []*fakeResult
	busyLeft   int
	sendErr    error
	consumeErr error
	cancelErr  error
	cancels    int
	closed     bool
}

func newFakeConn(batches ...batch) *fakeConn {
	return &fakeConn{status: driver.StatusReady, batches: batches}
}

func (c *fakeConn) Status() driver.Status { return c.status }

func (c *fakeConn) SendQuery(sql string, params []*string) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, sentQuery{sql: sql, params: params})

	idx := len(c.sent) - 1
	if idx < len(c.batches) {
		b := c.batches[idx]
		c.busyLeft = b.busyFor
		c.pending = append([]*fakeResult(nil), b.results...)
	} else {
		c.busyLeft = 0
		c.pending = nil
	}
	return nil
}

func (c *fakeConn) ConsumeInput() error { return c.consumeErr }

func (c *fakeConn) Busy() bool {
	if c.busyLeft > 0 {
		c.busyLeft--
		return true
	}
	return false
}

func (c *fakeConn) NextResult() (driver.Result, bool) {
	if len(c.pending) == 0 {
		return nil, false
	}
	r := c.pending[0]
	c.pending = c.pending[1:]
	return r, true
}

func (c *fakeConn) Cancel() error {
	c.cancels++
	return c.cancelErr
}

func (c *fakeConn) Close() error {
	c.closed = true
	c.status = driver.StatusBad
	return nil
}

// fakeBinding is a reactor binding the test fires by hand. Close may be
// deferred to model the asynchronous close-completion window.
type fakeBinding struct {
	state      reactor.BindingState
	armed      bool
	cb         func(error)
	lastCB     func(error)
	done       func()
	deferClose bool
	armCount   int
	closeCalls int
}

func (b *fakeBinding) Arm(cb func(error)) error {
	if b.state != reactor.BindingOpen {
		return reactor.ErrBindingClosed
	}
	b.armed = true
	b.cb = cb
	b.lastCB = cb
	b.armCount++
	return nil
}

func (b *fakeBinding) Disarm() {
	b.armed = false
	b.cb = nil
}

func (b *fakeBinding) Close(done func()) {
	b.closeCalls++
	if b.state != reactor.BindingOpen {
		return
	}
	b.state = reactor.BindingCloseRequested
	b.armed = false
	b.cb = nil
	if b.deferClose {
		b.done = done
		return
	}
	b.state = reactor.BindingClosed
	if done != nil {
		done()
	}
}

func (b *fakeBinding) State() reactor.BindingState { return b.state }

// fire delivers one readiness callback if the binding is armed.
func (b *fakeBinding) fire(err error) {
	if b.armed && b.cb != nil {
		b.cb(err)
	}
}

// forceFire delivers a callback that was already in flight when the
// binding was disarmed or closed, modeling a racing notification.
func (b *fakeBinding) forceFire(err error) {
	if b.lastCB != nil {
		b.lastCB(err)
	}
}

// completeClose finishes a deferred close.
func (b *fakeBinding) completeClose() {
	if b.state != reactor.BindingCloseRequested {
		return
	}
	b.state = reactor.BindingClosed
	if b.done != nil {
		done := b.done
		b.done = nil
		done()
	}
}

// fakeReactor hands out fake bindings and runs submissions inline; tests
// drive everything from a single goroutine, as the session contract
// requires.
type fakeReactor struct {
	bindings   []*fakeBinding
	deferClose bool
	bindErr    error
}

func (r *fakeReactor) Bind(src reactor.Source) (reactor.Binding, error) {
	if r.bindErr != nil {
		return nil, r.bindErr
	}
	b := &fakeBinding{state: reactor.BindingOpen, deferClose: r.deferClose}
	r.bindings = append(r.bindings, b)
	return b, nil
}

func (r *fakeReactor) Submit(fn func()) { fn() }
