// Package infra implements infrastructure concerns (storage, sampling, retention).
package infra

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// Everything the daemon persists lives in one flat directory under the
// user's home: one CSV file per day, the application side table, the cursor
// index and the pid file.
const (
	StorageDirName = ".screen-time"

	// Record format shared by the day logs and the side table.
	delim = ";"

	// Day file names render the local date, e.g. "Aug-21-2026.csv".
	dayFileLayout = "Jan-02-2006"
	dayFileExt    = ".csv"
)

// StorageDir returns the storage directory path without creating it.
func StorageDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve home directory")
	}
	return filepath.Join(home, StorageDirName), nil
}

// EnsureStorageDir creates the storage directory if needed and returns it.
func EnsureStorageDir() (string, error) {
	dir, err := StorageDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", errors.Wrap(err, "failed to create storage directory")
	}
	return dir, nil
}

// DayFileName returns the log file name for the given day.
func DayFileName(day time.Time) string {
	return day.Format(dayFileLayout) + dayFileExt
}

// ParseDayFileName recovers the day from a log file name. The second return
// is false for files that are not day logs (side table, cursor, pid file).
func ParseDayFileName(name string) (time.Time, bool) {
	if filepath.Ext(name) != dayFileExt {
		return time.Time{}, false
	}
	day, err := time.Parse(dayFileLayout, name[:len(name)-len(dayFileExt)])
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
