// Package session implements the asynchronous query-execution scheduler.
// A Session drives a FIFO queue of SQL operations over one established
// connection without blocking: each operation is dispatched in
// non-blocking mode, the session suspends on a reactor binding until the
// connection signals readiness, and buffered results are drained to the
// operation's callback before the next operation is dispatched.
//
// Sessions are single-threaded by contract: every method and every
// callback runs on the reactor loop goroutine. Callers off the loop must
// marshal calls with the reactor's Submit.
//
// A session always destroys itself: when its queue is exhausted, when any
// runtime error occurs, or when the Execute context is cancelled. Callers
// observe the end of life through the OnDestroyed hook and must not touch
// the session afterwards.
package session
