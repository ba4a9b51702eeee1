package driver

// Status reports the health of a connection.
type Status int

const (
	// StatusBad indicates the connection is unusable.
	StatusBad Status = iota
	// StatusReady indicates the connection is established and idle or in use.
	StatusReady
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	default:
		return "bad"
	}
}

// ResultStatus classifies the outcome of a single result object.
type ResultStatus int

const (
	// ResultCommandOK is a successful statement that returns no rows.
	ResultCommandOK ResultStatus = iota + 1
	// ResultTuplesOK is a successful statement that returns rows.
	ResultTuplesOK
	// ResultBadResponse indicates the driver could not understand the
	// server's response.
	ResultBadResponse
	// ResultFatalError is a statement that failed.
	ResultFatalError
)

// Succeeded reports whether the status is one of the success statuses.
func (s ResultStatus) Succeeded() bool {
	return s == ResultCommandOK || s == ResultTuplesOK
}

// String returns a human-readable result status name.
func (s ResultStatus) String() string {
	switch s {
	case ResultCommandOK:
		return "command_ok"
	case ResultTuplesOK:
		return "tuples_ok"
	case ResultBadResponse:
		return "bad_response"
	case ResultFatalError:
		return "fatal_error"
	default:
		return "unknown"
	}
}

// Result is one result object produced by the driver. A single statement
// batch may produce several results; each must be released by the consumer
// when it is done with it.
type Result interface {
	// Status classifies the outcome of this result.
	Status() ResultStatus

	// ErrorMessage returns the driver's error text for a failed result,
	// or the empty string for a successful one.
	ErrorMessage() string

	// Columns returns the column names for a row-returning result.
	Columns() []string

	// Rows returns all row values as text. A nil cell is a SQL NULL.
	Rows() [][]*string

	// RowsAffected returns the number of rows changed by a command result.
	RowsAffected() int64

	// Release frees the result's buffered data. The result must not be
	// used after Release.
	Release()
}

// Conn is an established database connection driven in non-blocking mode.
// None of its methods block on network or disk I/O.
//
// Implementations are not required to be safe for concurrent use; the
// scheduler serializes all calls on a single goroutine.
type Conn interface {
	// Status reports connection health.
	Status() Status

	// SendQuery dispatches a statement batch without waiting for results.
	// Parameters are passed as text; a nil value is sent as SQL NULL,
	// never as an empty string. Returns an error if a batch is already
	// in progress or the connection is bad.
	SendQuery(sql string, params []*string) error

	// ConsumeInput absorbs any input that has arrived from the server.
	// An error here means the connection has failed.
	ConsumeInput() error

	// Busy reports whether NextResult would have to wait for more input.
	Busy() bool

	// NextResult pops the next buffered result for the current batch.
	// It returns false when the batch is fully drained, after which a new
	// batch may be sent.
	NextResult() (Result, bool)

	// Cancel requests cancellation of the in-flight batch. Best effort:
	// the batch may still complete, and an error only means the request
	// could not be issued.
	Cancel() error

	// Close tears down the connection.
	Close() error
}

// ReadinessNotifier is implemented by connections that can signal when
// non-blocking I/O may make progress. Connections without it are polled on
// a periodic timer instead.
type ReadinessNotifier interface {
	// ReadinessC returns a channel that receives a signal whenever the
	// connection may have made progress. Signals may be coalesced.
	ReadinessC() <-chan struct{}
}
