// Package driver defines the non-blocking database driver contract the
// scheduler drives. The interfaces mirror an asynchronous wire-protocol
// client: a statement is sent without blocking, progress is signalled by
// readiness notifications or polling, and buffered results are pulled one
// at a time once the connection reports it is no longer busy.
package driver
