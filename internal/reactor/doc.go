// Package reactor provides the readiness-notification loop the scheduler
// suspends on between dispatching a statement and its results arriving.
// A Loop runs submitted functions on a single goroutine; a Binding watches
// one readiness source (a notification channel, or a periodic timer for
// connections that cannot signal readiness) and delivers callbacks on the
// loop goroutine while armed.
//
// Bindings close asynchronously: Close only requests shutdown, and the
// done callback runs on the loop goroutine once the binding's watcher has
// fully stopped. Holders must not release state the binding references
// until then.
package reactor
