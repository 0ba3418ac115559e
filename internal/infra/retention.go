package infra

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/konchunas/screen-time-daemon/internal/domain"
)

// DefaultRetentionDays is how long day logs are kept.
const DefaultRetentionDays = 14

// FileRetention implements domain.Retention by deleting day logs whose date
// fell out of the retention window. Files that do not parse as day logs
// (side table, cursor index, pid file) are never touched.
type FileRetention struct {
	dir    string
	days   int
	logger *zap.Logger
}

// NewRetention creates a retention sweeper with the default window.
func NewRetention(dir string, logger *zap.Logger) *FileRetention {
	return NewRetentionWithDays(dir, DefaultRetentionDays, logger)
}

// NewRetentionWithDays creates a retention sweeper with a custom window (for testing).
func NewRetentionWithDays(dir string, days int, logger *zap.Logger) *FileRetention {
	return &FileRetention{dir: dir, days: days, logger: logger}
}

// Sweep deletes expired day logs and returns the removed file names.
// Individual removal failures are logged and skipped; the sweep goes on.
func (r *FileRetention) Sweep(now time.Time) ([]string, error) {
	dirEntries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list storage directory")
	}

	// Compare calendar dates only; parsed file names are midnight UTC.
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -r.days)

	var removed []string
	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		day, ok := ParseDayFileName(entry.Name())
		if !ok {
			r.logger.Debug("skipping non day log file", zap.String("file", entry.Name()))
			continue
		}
		if !day.Before(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(r.dir, entry.Name())); err != nil {
			r.logger.Warn("failed to remove expired day log",
				zap.String("file", entry.Name()),
				zap.Error(err))
			continue
		}

		r.logger.Info("removed expired day log", zap.String("file", entry.Name()))
		removed = append(removed, entry.Name())
	}

	return removed, nil
}

// Ensure FileRetention implements domain.Retention.
var _ domain.Retention = (*FileRetention)(nil)
