package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rburnham/asq/internal/driver"
	"github.com/rburnham/asq/internal/session"
)

// runTimeout bounds how long a batch may take before the handler gives up
// waiting. The session keeps running toward destruction on its own.
const runTimeout = 30 * time.Second

// runOperation is one statement in a batch request. A nil parameter is
// bound as SQL NULL.
type runOperation struct {
	SQL    string    `json:"sql"`
	Params []*string `json:"params,omitempty"`
}

type runRequest struct {
	Operations []runOperation `json:"operations"`
}

// operationResult mirrors one driver result delivered to the batch.
type operationResult struct {
	Status       string      `json:"status"`
	Error        string      `json:"error,omitempty"`
	Columns      []string    `json:"columns,omitempty"`
	Rows         [][]*string `json:"rows,omitempty"`
	RowsAffected int64       `json:"rows_affected,omitempty"`
}

type runResponse struct {
	SessionID string            `json:"session_id"`
	Failed    bool              `json:"failed"`
	Results   []operationResult `json:"results"`
}

// handleRun executes a batch of operations on a fresh session and returns
// the collected results once the session has destroyed itself. The request
// context is the batch's cancellation token: a dropped client cancels the
// in-flight statement.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Operations) == 0 {
		s.writeError(w, http.StatusBadRequest, "operations required")
		return
	}
	for _, op := range req.Operations {
		if op.SQL == "" {
			s.writeError(w, http.StatusBadRequest, "operation sql must not be empty")
			return
		}
	}

	conn, err := s.newConn()
	if err != nil {
		s.logger.Error("open connection", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to open connection")
		return
	}

	var (
		results   []operationResult
		failed    bool
		sessionID string
	)
	done := make(chan struct{})
	errCh := make(chan error, 1)

	collect := func(_ *session.Session, res driver.Result, _ any) {
		or := operationResult{
			Status:       res.Status().String(),
			Error:        res.ErrorMessage(),
			RowsAffected: res.RowsAffected(),
			Columns:      append([]string(nil), res.Columns()...),
			Rows:         append([][]*string(nil), res.Rows()...),
		}
		if !res.Status().Succeeded() {
			failed = true
		}
		results = append(results, or)
	}

	s.loop.Submit(func() {
		sess, err := session.New(s.loop, conn,
			session.WithOwnedConn(),
			session.WithLogger(s.logger),
			session.WithOnDestroyed(func(*session.Session) { close(done) }),
		)
		if err != nil {
			conn.Close()
			errCh <- err
			return
		}
		sessionID = sess.ID()

		for _, op := range req.Operations {
			// SQL was validated above; Queue cannot fail on a live session.
			if err := sess.Queue(op.SQL, op.Params, collect, nil); err != nil {
				errCh <- err
				return
			}
		}
		if err := sess.Execute(r.Context()); err != nil {
			errCh <- err
			return
		}
	})

	select {
	case err := <-errCh:
		s.logger.Error("run batch", "error", err)
		s.stats.record(false)
		s.writeError(w, http.StatusInternalServerError, err.Error())
	case <-done:
		s.stats.record(!failed)
		s.writeJSON(w, http.StatusOK, runResponse{
			SessionID: sessionID,
			Failed:    failed,
			Results:   results,
		})
	case <-time.After(runTimeout):
		s.stats.record(false)
		s.writeError(w, http.StatusGatewayTimeout, "batch timed out")
	}
}
