package session

import "github.com/rburnham/asq/internal/driver"

// ResultFunc receives one result object for an operation. It is invoked
// synchronously on the reactor loop, zero or more times per operation, in
// the order the driver produces results, and strictly before the
// operation's completion or failure is finalized. The result is released
// after the callback returns; callbacks must not retain it.
type ResultFunc func(s *Session, res driver.Result, userData any)

// operation is one queued unit of work: owned SQL text, owned parameter
// copies, the result callback, and the caller's opaque data. Pure data;
// all behavior lives on the Session.
type operation struct {
	sql      string
	params   []*string
	fn       ResultFunc
	userData any
	next     *operation
}

// release drops the operation's owned data and callback references.
func (op *operation) release() {
	op.params = nil
	op.fn = nil
	op.userData = nil
	op.next = nil
}

// copyParams clones the parameter list into owned storage, preserving nil
// values (SQL NULL) as nil rather than coercing them to empty strings.
func copyParams(params []*string) []*string {
	if len(params) == 0 {
		return nil
	}
	owned := make([]*string, len(params))
	for i, p := range params {
		if p != nil {
			v := *p
			owned[i] = &v
		}
	}
	return owned
}
