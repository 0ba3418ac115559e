package infra

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/konchunas/screen-time-daemon/internal/domain"
)

const appInfoFileName = "app-names.csv"

// FileAppInfo implements domain.AppInfoStore using a "name;desktop-path" CSV
// side table next to the day logs. The whole table lives in memory and the
// file is rewritten in full on every change; it stays tiny (one line per
// distinct application ever seen).
type FileAppInfo struct {
	path    string
	entries map[string]string
	logger  *zap.Logger
}

// OpenAppInfo loads the side table, tolerating a missing file and skipping
// lines it cannot parse.
func OpenAppInfo(dir string, logger *zap.Logger) (*FileAppInfo, error) {
	s := &FileAppInfo{
		path:    filepath.Join(dir, appInfoFileName),
		entries: make(map[string]string),
		logger:  logger,
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, errors.Wrap(err, "failed to read application side table")
	}

	for i, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		name, path, ok := strings.Cut(line, delim)
		if !ok || name == "" {
			logger.Warn("skipping malformed side table line", zap.Int("line", i+1))
			continue
		}
		s.entries[name] = path
	}

	logger.Info("loaded application side table", zap.Int("entries", len(s.entries)))
	return s, nil
}

// Has reports whether the application is already known.
func (s *FileAppInfo) Has(name string) bool {
	_, ok := s.entries[name]
	return ok
}

// Get returns the stored desktop path for the application.
func (s *FileAppInfo) Get(name string) (string, bool) {
	path, ok := s.entries[name]
	return path, ok
}

// Len returns the number of known applications.
func (s *FileAppInfo) Len() int {
	return len(s.entries)
}

// Learn records the desktop entry path for the application and rewrites the
// table on disk.
func (s *FileAppInfo) Learn(name, path string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if strings.ContainsAny(path, "\r\n") {
		return errors.Wrapf(domain.ErrBadName, "desktop path %q", path)
	}

	s.entries[name] = path
	return s.save()
}

// save rewrites the table atomically (write + rename), sorted by name so the
// file is stable across runs.
func (s *FileAppInfo) save() error {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteString(delim)
		b.WriteString(s.entries[name])
		b.WriteString("\n")
	}

	tmpPath := fmt.Sprintf("%s.%d.tmp", s.path, os.Getpid())
	if err := os.WriteFile(tmpPath, []byte(b.String()), 0600); err != nil {
		return errors.Wrap(err, "failed to write application side table")
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath) // Clean up on failure
		return errors.Wrap(err, "failed to replace application side table")
	}
	return nil
}

// Ensure FileAppInfo implements domain.AppInfoStore.
var _ domain.AppInfoStore = (*FileAppInfo)(nil)
