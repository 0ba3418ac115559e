// Package domain contains core business entities and interfaces.
// This is the innermost layer in Clean Architecture - no external dependencies.
package domain

// Frame represents one contiguous stretch of focus on a single application.
// Start and End are unix timestamps in seconds. A frame whose End equals its
// Start has never been persisted; it only exists as loop state until a second
// sample of the same application arrives.
type Frame struct {
	Name  string
	Start int64
	End   int64
}

// Confirmed reports whether the frame has been observed more than once and
// therefore exists as a record in the day log.
func (f Frame) Confirmed() bool {
	return f.End != f.Start
}

// Observation is a single sample of the focused application.
// WindowID carries the X11 window handle (e.g. "0x3200042") so that callers
// can ask follow-up questions about the same window; it may be empty when the
// sampler cannot provide one.
type Observation struct {
	App      string
	WindowID string
}
