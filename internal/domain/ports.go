package domain

import (
	"context"
	"time"
)

// Sampler observes which application currently holds input focus.
// Implementations: native X11 connection, xprop subprocess.
type Sampler interface {
	// FocusedApp returns the identifier of the focused application.
	// Failures are reported as *SampleError so the caller can tell which
	// query failed.
	FocusedApp(ctx context.Context) (Observation, error)
}

// DesktopResolver looks up the desktop entry advertised by a window.
// Kept separate from Sampler: resolving is optional enrichment and only
// needed for applications not yet present in the side table.
type DesktopResolver interface {
	// DesktopPath returns the .desktop file path for the window, or an
	// error when the window does not advertise one.
	DesktopPath(ctx context.Context, windowID string) (string, error)
}

// FrameWriter persists frames to the current day log.
// Implementation: positioned writes against a CSV-like file, with a cursor
// index tracking where the last record's end field lives.
type FrameWriter interface {
	// WriteNew appends the frame as a new record and makes it the
	// amendable record.
	WriteNew(f Frame) error

	// UpdatePrevious rewrites the amendable record's end timestamp in
	// place. Returns ErrNoOpenRecord when nothing is amendable and
	// ErrLogDesync when the file tail no longer matches the cursor.
	UpdatePrevious(end int64) error

	// Rollover switches to the log file for the given day. The previous
	// file stays active if the switch fails.
	Rollover(day time.Time) error

	// Day returns the day the writer is currently bound to.
	Day() time.Time

	// Close releases the underlying file handle.
	Close() error
}

// AppInfoStore persists the application name to desktop entry side table.
// Implementation: full-rewrite CSV file next to the day logs.
type AppInfoStore interface {
	// Has reports whether the application is already known.
	Has(name string) bool

	// Learn records the desktop entry path for the application.
	Learn(name, path string) error
}

// IgnorePolicy decides which observed identifiers are never logged.
type IgnorePolicy interface {
	// Ignored reports whether the identifier should be discarded.
	Ignored(name string) bool
}

// Retention removes day logs that fell out of the retention window.
type Retention interface {
	// Sweep deletes expired day logs and returns the removed file names.
	Sweep(now time.Time) ([]string, error)
}

// Recorder runs one complete sample-decide-persist step.
type Recorder interface {
	// RecordSample observes the focused application and applies the
	// resulting operation to the day log. It returns the frame that
	// becomes the loop's continuity state: nil when the cycle produced
	// nothing to track (ignored identifier). On error the caller must
	// drop its continuity state.
	RecordSample(ctx context.Context, last *Frame, now int64) (*Frame, error)
}
