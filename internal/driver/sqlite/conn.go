// Package sqlite adapts an embedded SQLite database to the non-blocking
// driver contract. Statement batches run on a worker goroutine; completed
// results are buffered on the connection and progress is signalled on a
// readiness channel, so the scheduler never blocks on the database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rburnham/asq/internal/driver"

	_ "modernc.org/sqlite"
)

// ErrCommandInProgress is returned by SendQuery when a previous batch has
// not been fully drained yet.
var ErrCommandInProgress = errors.New("another command is already in progress")

// ErrConnClosed is returned when the connection has been closed or has
// entered a bad state.
var ErrConnClosed = errors.New("connection is closed")

// Compile-time interface satisfaction checks.
var (
	_ driver.Conn              = (*Conn)(nil)
	_ driver.ReadinessNotifier = (*Conn)(nil)
)

// Conn is a driver.Conn backed by an embedded SQLite database.
//
// The driver contract is single-consumer: the scheduler serializes all
// method calls. The mutex here only guards the seam between the consumer
// and the internal worker goroutine.
type Conn struct {
	db    *sql.DB
	ready chan struct{}

	mu       sync.Mutex
	status   driver.Status
	inflight bool // batch sent, not yet fully drained
	busy     bool // worker still producing results
	results  []*result
	cancel   context.CancelFunc
}

// Open opens (or creates) the SQLite database at path and returns a
// connection in the ready state. Use ":memory:" for an in-memory database.
func Open(path string) (*Conn, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	// A single underlying connection keeps statement ordering strict and
	// makes in-memory databases behave like a session.
	db.SetMaxOpenConns(1)

	return &Conn{
		db:     db,
		ready:  make(chan struct{}, 1),
		status: driver.StatusReady,
	}, nil
}

// Status reports connection health.
func (c *Conn) Status() driver.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// ReadinessC returns the channel signalled whenever the worker makes
// progress. Signals are coalesced.
func (c *Conn) ReadinessC() <-chan struct{} {
	return c.ready
}

// SendQuery starts a statement batch on the worker goroutine and returns
// immediately. Parameters may only be combined with a single-statement
// batch; a nil parameter is bound as SQL NULL.
func (c *Conn) SendQuery(sqlText string, params []*string) error {
	stmts := splitStatements(sqlText)
	if len(stmts) == 0 {
		return errors.New("no statement to send")
	}
	if len(params) > 0 && len(stmts) > 1 {
		return errors.New("parameters cannot be combined with a multi-statement batch")
	}

	args := make([]any, len(params))
	for i, p := range params {
		if p != nil {
			args[i] = *p
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != driver.StatusReady {
		return ErrConnClosed
	}
	if c.inflight {
		return ErrCommandInProgress
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.inflight = true
	c.busy = true
	c.cancel = cancel

	go c.run(ctx, stmts, args)
	return nil
}

// ConsumeInput absorbs server input. For an embedded database there is no
// socket to read; the call only reports connection failure.
func (c *Conn) ConsumeInput() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != driver.StatusReady {
		return ErrConnClosed
	}
	return nil
}

// Busy reports whether the worker is still producing results for the
// current batch.
func (c *Conn) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// NextResult pops the next buffered result. Once the batch has been fully
// drained it returns false and the connection accepts a new batch.
func (c *Conn) NextResult() (driver.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.results) > 0 {
		r := c.results[0]
		c.results[0] = nil
		c.results = c.results[1:]
		return r, true
	}
	if c.inflight && !c.busy {
		c.inflight = false
	}
	return nil, false
}

// Cancel requests cancellation of the in-flight batch by cancelling the
// worker's context. Statements already completed keep their results.
func (c *Conn) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	return nil
}

// Close tears down the connection. Any in-flight batch is cancelled.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.status == driver.StatusBad {
		c.mu.Unlock()
		return nil
	}
	c.status = driver.StatusBad
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()

	return c.db.Close()
}

// run executes the batch statements in order, buffering one result per
// statement. A failed statement ends the batch; later statements are not
// executed, matching simple-query protocol behavior.
func (c *Conn) run(ctx context.Context, stmts []string, args []any) {
	for _, stmt := range stmts {
		res := c.execOne(ctx, stmt, args)

		c.mu.Lock()
		c.results = append(c.results, res)
		c.mu.Unlock()
		c.signal()

		if !res.status.Succeeded() || ctx.Err() != nil {
			break
		}
	}

	c.mu.Lock()
	c.busy = false
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
	c.signal()
}

// execOne runs a single statement and converts its outcome to a result.
func (c *Conn) execOne(ctx context.Context, stmt string, args []any) *result {
	if !returnsRows(stmt) {
		res, err := c.db.ExecContext(ctx, stmt, args...)
		if err != nil {
			return &result{status: driver.ResultFatalError, errMsg: err.Error()}
		}
		affected, _ := res.RowsAffected()
		return &result{status: driver.ResultCommandOK, affected: affected}
	}

	rows, err := c.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return &result{status: driver.ResultFatalError, errMsg: err.Error()}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return &result{status: driver.ResultBadResponse, errMsg: err.Error()}
	}

	out := &result{status: driver.ResultTuplesOK, cols: cols}
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return &result{status: driver.ResultBadResponse, errMsg: err.Error()}
		}

		row := make([]*string, len(cols))
		for i, v := range vals {
			if v.Valid {
				s := v.String
				row[i] = &s
			}
		}
		out.rows = append(out.rows, row)
	}
	if err := rows.Err(); err != nil {
		return &result{status: driver.ResultFatalError, errMsg: err.Error()}
	}

	return out
}

// signal coalesces a readiness notification.
func (c *Conn) signal() {
	select {
	case c.ready <- struct{}{}:
	default:
	}
}

// rowKeywords lead statements that produce rows.
var rowKeywords = map[string]bool{
	"SELECT":  true,
	"VALUES":  true,
	"WITH":    true,
	"PRAGMA":  true,
	"EXPLAIN": true,
}

// returnsRows classifies a statement by its leading keyword.
func returnsRows(stmt string) bool {
	fields := strings.Fields(stmt)
	if len(fields) == 0 {
		return false
	}
	return rowKeywords[strings.ToUpper(fields[0])]
}
