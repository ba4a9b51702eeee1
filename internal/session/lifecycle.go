package session

import (
	"github.com/rburnham/asq/internal/driver"
	"github.com/rburnham/asq/internal/reactor"
)

// dispatchNext pops the head operation and sends it to the driver in
// non-blocking mode, then arms the reactor binding to wait for results.
// With an empty queue it clears the executing flag and destroys the
// session: the whole batch completed.
func (s *Session) dispatchNext() {
	if err := s.ctx.Err(); err != nil {
		s.log.Info("execution cancelled", "error", err)
		s.destroy(reasonCancelled)
		return
	}

	if s.head == nil {
		s.executing = false
		s.destroy(reasonDrained)
		return
	}

	s.current = s.head
	s.head = s.head.next
	if s.head == nil {
		s.tail = nil
	}
	s.current.next = nil

	if err := s.conn.SendQuery(s.current.sql, s.current.params); err != nil {
		s.releaseCurrent()
		s.fail("send query: " + err.Error())
		return
	}
	operationsDispatched.Inc()
	s.log.Debug("operation dispatched", "sql", s.current.sql)

	if s.binding == nil {
		src := reactor.Source{Period: defaultPollPeriod}
		if rn, ok := s.conn.(driver.ReadinessNotifier); ok {
			src = reactor.Source{Readiness: rn.ReadinessC()}
		}
		b, err := s.reactor.Bind(src)
		if err != nil {
			s.releaseCurrent()
			s.fail("bind reactor: " + err.Error())
			return
		}
		s.binding = b
	}

	if err := s.binding.Arm(s.onReady); err != nil {
		s.releaseCurrent()
		s.fail("arm reactor binding: " + err.Error())
	}
}

// onReady is the reactor callback: consume whatever input has arrived and,
// once the driver is no longer busy, drain every buffered result for the
// current operation.
func (s *Session) onReady(rerr error) {
	if s.destroying {
		// Late notification after logical destruction; drop it.
		return
	}
	if rerr != nil {
		s.fail("reactor: " + rerr.Error())
		return
	}
	if err := s.ctx.Err(); err != nil {
		s.log.Info("execution cancelled", "error", err)
		s.releaseCurrent()
		s.destroy(reasonCancelled)
		return
	}

	if err := s.conn.ConsumeInput(); err != nil {
		s.fail("consume input: " + err.Error())
		return
	}

	if s.conn.Busy() {
		// Incomplete response: stay armed and yield back to the reactor.
		return
	}

	s.binding.Disarm()

	for {
		res, ok := s.conn.NextResult()
		if !ok {
			break
		}

		if s.current != nil && s.current.fn != nil {
			s.current.fn(s, res, s.current.userData)
		}
		resultsDrained.Inc()

		if !res.Status().Succeeded() {
			// A failed result aborts the whole operation; results still
			// buffered behind it are never delivered.
			msg := res.ErrorMessage()
			res.Release()
			s.releaseCurrent()
			s.fail(msg)
			return
		}
		res.Release()
	}

	s.releaseCurrent()
	s.dispatchNext()
}

// fail is the single error funnel: every dispatch or runtime error ends
// here. It stops result delivery, records the error, cancels outstanding
// work, and destroys the session. There is no retry and no partial
// recovery.
func (s *Session) fail(msg string) {
	operationFailures.Inc()

	if s.binding != nil {
		s.binding.Disarm()
	}
	s.executing = false
	s.lastErr = msg
	s.log.Error("operation batch failed", "error", msg)

	s.destroy(reasonError)
}

// cancelOutstanding stops the in-flight operation (best-effort driver
// cancel) and releases every operation still queued. The current operation
// is released by whichever path triggered cancellation, not here.
func (s *Session) cancelOutstanding() {
	if s.executing {
		if s.binding != nil {
			s.binding.Disarm()
		}
		if err := s.conn.Cancel(); err != nil {
			// Best effort only: never surfaced, never blocks destruction.
			s.log.Warn("cancel in-flight statement", "error", err)
		}
		s.executing = false
	}

	for op := s.head; op != nil; {
		next := op.next
		op.release()
		op = next
	}
	s.head, s.tail = nil, nil
}

// destroy tears the session down. Phase 1 cancels outstanding work and
// closes an owned connection. If the reactor binding was ever initialized
// the reactor may still reference the session, so finalization is deferred
// until the binding's close completion; otherwise the session is finalized
// in the same call.
func (s *Session) destroy(reason string) {
	if s.destroying {
		return
	}
	s.destroying = true
	s.reason = reason

	s.cancelOutstanding()

	if s.conn != nil && s.ownsConn {
		if err := s.conn.Close(); err != nil {
			s.log.Warn("close connection", "error", err)
		}
	}
	s.connected = false

	if s.binding == nil {
		s.finalize()
		return
	}
	s.binding.Close(s.finalize)
}

// finalize is phase 2 of destruction: release the stored error and notify
// the owner. Runs exactly once, and only after the binding (if any)
// reports its close complete.
func (s *Session) finalize() {
	s.lastErr = ""
	s.log.Debug("session destroyed", "reason", s.reason)

	sessionsDestroyed.WithLabelValues(s.reason).Inc()
	activeSessions.Dec()

	if s.onDestroyed != nil {
		hook := s.onDestroyed
		s.onDestroyed = nil
		hook(s)
	}
}

// releaseCurrent frees the in-flight operation, if any.
func (s *Session) releaseCurrent() {
	if s.current != nil {
		s.current.release()
		s.current = nil
	}
}
