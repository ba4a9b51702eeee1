package session

import "errors"

var (
	// ErrNilConn is returned by New when no connection is given.
	ErrNilConn = errors.New("connection is nil")

	// ErrConnNotReady is returned by New when the connection is not in the
	// ready state.
	ErrConnNotReady = errors.New("connection is not ready")

	// ErrNilReactor is returned by New when no reactor is given.
	ErrNilReactor = errors.New("reactor is nil")

	// ErrEmptySQL is returned by Queue for an empty statement.
	ErrEmptySQL = errors.New("sql text is empty")

	// ErrBusy is returned by Execute while a previous Execute is still
	// running. The call is rejected outright; no retry is queued.
	ErrBusy = errors.New("session is already executing")

	// ErrNotConnected is returned by Execute after the connection has been
	// torn down.
	ErrNotConnected = errors.New("session is not connected")

	// ErrDestroyed is returned once destruction has begun.
	ErrDestroyed = errors.New("session is destroyed")
)
