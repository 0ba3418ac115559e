package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrLogDesync means the day log's size no longer matches the cursor,
	// so an in-place rewrite would land on the wrong bytes. The record is
	// left as written; continuity starts over.
	ErrLogDesync = errors.New("day log tail does not match cursor")

	// ErrNoOpenRecord means UpdatePrevious was called although no record
	// written in this run is amendable.
	ErrNoOpenRecord = errors.New("no amendable record in the current log")

	// ErrBadName means the application identifier cannot be stored
	// without corrupting the record format.
	ErrBadName = errors.New("application identifier not representable in the log format")
)

// Queries a SampleError can originate from.
const (
	QueryActiveWindow = "active-window"
	QueryWMClass      = "wm-class"
	QueryDesktopPath  = "desktop-path"
)

// SampleError reports a failed focus observation. Query names the property
// lookup that failed so the daemon can log what kind of sampling trouble it
// is having without treating any of them as fatal.
type SampleError struct {
	Query string
	Err   error
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("sample %s: %v", e.Query, e.Err)
}

func (e *SampleError) Unwrap() error {
	return e.Err
}

// NewSampleError wraps err as a sampling failure for the given query.
func NewSampleError(query string, err error) *SampleError {
	return &SampleError{Query: query, Err: err}
}
