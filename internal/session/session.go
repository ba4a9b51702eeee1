package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/rburnham/asq/internal/driver"
	"github.com/rburnham/asq/internal/model"
	"github.com/rburnham/asq/internal/reactor"
)

// defaultPollPeriod is the timer cadence for connections that cannot
// signal readiness.
const defaultPollPeriod = 10 * time.Millisecond

// Session coordinates the operation queue, dispatch, and lifecycle for one
// connection. Exactly one operation is in flight at a time; queued
// operations are inert data until popped.
//
// All methods must be called on the reactor loop goroutine. The session
// holds no locks; the single-threaded contract is what makes the state
// machine safe.
type Session struct {
	id       string
	conn     driver.Conn
	ownsConn bool
	reactor  reactor.Reactor
	log      *slog.Logger
	userData any

	onDestroyed func(*Session)

	connected  bool
	executing  bool
	destroying bool

	head    *operation
	tail    *operation
	current *operation // in flight, never in the queue

	// binding is created lazily on first dispatch and re-armed, never
	// re-created, for subsequent dispatches. nil means never initialized,
	// which lets destruction skip the deferred-close phase.
	binding reactor.Binding

	ctx     context.Context
	lastErr string
	reason  string
}

// Option configures a Session at construction.
type Option func(*Session)

// WithUserData attaches opaque caller data retrievable via UserData.
func WithUserData(data any) Option {
	return func(s *Session) { s.userData = data }
}

// WithOwnedConn transfers connection ownership to the session: the
// connection is closed during destruction. Without it the connection is
// borrowed and the caller must close it.
func WithOwnedConn() Option {
	return func(s *Session) { s.ownsConn = true }
}

// WithLogger sets the session's structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithOnDestroyed sets a hook invoked exactly once when the session is
// fully destroyed, strictly after the reactor binding's close completes if
// one was ever created. The session must not be used from or after the
// hook.
func WithOnDestroyed(fn func(*Session)) Option {
	return func(s *Session) { s.onDestroyed = fn }
}

// New creates a session over an established, ready connection. No I/O and
// no reactor registration happens here.
func New(r reactor.Reactor, conn driver.Conn, opts ...Option) (*Session, error) {
	if r == nil {
		return nil, ErrNilReactor
	}
	if conn == nil {
		return nil, ErrNilConn
	}
	if conn.Status() != driver.StatusReady {
		return nil, ErrConnNotReady
	}

	s := &Session{
		id:        model.NewID(),
		conn:      conn,
		reactor:   r,
		log:       slog.Default(),
		connected: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("session_id", s.id)

	activeSessions.Inc()
	return s, nil
}

// ID returns the session's identifier.
func (s *Session) ID() string { return s.id }

// UserData returns the opaque data attached at construction.
func (s *Session) UserData() any { return s.userData }

// Err returns the last recorded error message. It is cleared when the
// session is finalized.
func (s *Session) Err() string { return s.lastErr }

// Queue appends an operation to the tail of the queue. The SQL text and
// parameters are copied into session-owned storage. Queueing is legal
// while a previous Execute is still running, which allows pipelined
// submission; operations always run in strict FIFO order.
func (s *Session) Queue(sql string, params []*string, fn ResultFunc, userData any) error {
	if s.destroying {
		return ErrDestroyed
	}
	if sql == "" {
		return ErrEmptySQL
	}

	op := &operation{
		sql:      sql,
		params:   copyParams(params),
		fn:       fn,
		userData: userData,
	}

	if s.tail == nil {
		s.head, s.tail = op, op
	} else {
		s.tail.next = op
		s.tail = op
	}
	return nil
}

// Execute starts draining the queue. It returns synchronously: a nil
// return means the session is progressing toward completion (outcomes are
// delivered through result callbacks) or, if the queue was empty, has
// already been destroyed.
//
// ctx is the cancellation token for the whole batch; it is polled before
// every dispatch and re-arm. Cancelling it stops the batch with a
// best-effort driver cancel and destroys the session.
func (s *Session) Execute(ctx context.Context) error {
	if s.destroying {
		return ErrDestroyed
	}
	if !s.connected {
		return ErrNotConnected
	}
	if s.executing {
		return ErrBusy
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx = ctx

	if s.head == nil {
		// No work: terminal path, not an error.
		s.destroy(reasonDrained)
		return nil
	}

	s.executing = true
	s.dispatchNext()
	return nil
}
