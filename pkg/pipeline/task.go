package pipeline

import (
	"github.com/gardar/ocrbatch/pkg/hocr"
)

// TaskState is the lifecycle state of a page task.
type TaskState int

const (
	Pending TaskState = iota
	Running
	Retrying
	Succeeded
	Failed
)

func (s TaskState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Retrying:
		return "retrying"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether no further transition can happen.
func (s TaskState) Terminal() bool { return s == Succeeded || s == Failed }

// Document is one source document of a batch.
type Document struct {
	Source    string // Path of the source PDF
	PageCount int
	Output    string // Path the searchable PDF is published to
}

// PageTask is the unit of work for one page. It is owned by exactly one
// worker once dequeued.
type PageTask struct {
	Index    int // 0-based
	Attempts int
	State    TaskState
}

// PageResult is the terminal outcome of a page task.
type PageResult struct {
	Index    int
	State    TaskState // Succeeded or Failed
	Attempts int
	PDF      []byte    // One-page searchable PDF, set on success
	Page     hocr.Page // Recognized layout, set on success
	Err      error     // Last error, set on failure
}

// OK reports whether the page made it through recognition.
func (r PageResult) OK() bool { return r.State == Succeeded }
