package sqlite

import "github.com/rburnham/asq/internal/driver"

// result is one buffered statement outcome.
type result struct {
	status   driver.ResultStatus
	errMsg   string
	cols     []string
	rows     [][]*string
	affected int64
}

func (r *result) Status() driver.ResultStatus { return r.status }
func (r *result) ErrorMessage() string        { return r.errMsg }
func (r *result) Columns() []string           { return r.cols }
func (r *result) Rows() [][]*string           { return r.rows }
func (r *result) RowsAffected() int64         { return r.affected }

// Release drops the buffered row data.
func (r *result) Release() {
	r.cols = nil
	r.rows = nil
}
