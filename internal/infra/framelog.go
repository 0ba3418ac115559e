package infra

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/konchunas/screen-time-daemon/internal/domain"
)

// FrameLog implements domain.FrameWriter against one CSV file per day.
//
// Records are appended as "name;start;end\n". Extending a frame rewrites the
// end field of the last record in place, which is only safe while that field
// is still the tail of the file. The writer therefore tracks the field's
// offset and length, mirrors them into the cursor index, and refuses to
// rewrite whenever the file size disagrees with them.
type FrameLog struct {
	dir    string
	day    time.Time
	file   *os.File
	endOff int64 // offset of the amendable end field, -1 when none
	endLen int64
	logger *zap.Logger
}

// OpenFrameLog opens (creating if needed) the log file for the given day.
// Records already in the file are never amendable; only records written
// through this writer are.
func OpenFrameLog(dir string, day time.Time, logger *zap.Logger) (*FrameLog, error) {
	file, size, err := openDayFile(dir, day)
	if err != nil {
		return nil, err
	}

	l := &FrameLog{
		dir:    dir,
		day:    day,
		file:   file,
		endOff: -1,
		logger: logger,
	}

	if err := l.persistCursor(size); err != nil {
		file.Close()
		return nil, err
	}

	logger.Info("opened day log",
		zap.String("file", DayFileName(day)),
		zap.Int64("size", size))

	return l, nil
}

func openDayFile(dir string, day time.Time) (*os.File, int64, error) {
	path := filepath.Join(dir, DayFileName(day))

	// No O_APPEND: extending a frame needs positioned writes.
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to open day log")
	}

	st, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, errors.Wrap(err, "failed to stat day log")
	}

	return file, st.Size(), nil
}

// WriteNew appends the frame as a new record and makes it the amendable one.
func (l *FrameLog) WriteNew(f domain.Frame) error {
	if err := validateName(f.Name); err != nil {
		return err
	}

	st, err := l.file.Stat()
	if err != nil {
		return errors.Wrap(err, "failed to stat day log")
	}
	size := st.Size()

	endField := strconv.FormatInt(f.End, 10) + "\n"
	record := f.Name + delim + strconv.FormatInt(f.Start, 10) + delim + endField

	if _, err := l.file.WriteAt([]byte(record), size); err != nil {
		l.invalidate()
		return errors.Wrap(err, "failed to append record")
	}
	if err := l.file.Sync(); err != nil {
		l.invalidate()
		return errors.Wrap(err, "failed to flush day log")
	}

	l.endOff = size + int64(len(record)) - int64(len(endField))
	l.endLen = int64(len(endField))

	return l.persistCursor(size + int64(len(record)))
}

// UpdatePrevious rewrites the amendable record's end timestamp in place.
func (l *FrameLog) UpdatePrevious(end int64) error {
	if l.endOff < 0 {
		return domain.ErrNoOpenRecord
	}

	st, err := l.file.Stat()
	if err != nil {
		return errors.Wrap(err, "failed to stat day log")
	}
	if st.Size() != l.endOff+l.endLen {
		l.invalidate()
		return errors.Wrapf(domain.ErrLogDesync,
			"file size %d, cursor expects %d", st.Size(), l.endOff+l.endLen)
	}

	endField := strconv.FormatInt(end, 10) + "\n"

	if _, err := l.file.WriteAt([]byte(endField), l.endOff); err != nil {
		l.invalidate()
		return errors.Wrap(err, "failed to rewrite end timestamp")
	}
	if err := l.file.Sync(); err != nil {
		l.invalidate()
		return errors.Wrap(err, "failed to flush day log")
	}

	l.endLen = int64(len(endField))

	return l.persistCursor(l.endOff + l.endLen)
}

// Rollover switches to the log file for the given day. On failure the
// current file stays active so no record ever lands in the wrong day.
func (l *FrameLog) Rollover(day time.Time) error {
	file, size, err := openDayFile(l.dir, day)
	if err != nil {
		return err
	}

	if l.file != nil {
		if err := l.file.Close(); err != nil {
			l.logger.Warn("failed to close previous day log", zap.Error(err))
		}
	}

	l.file = file
	l.day = day
	l.invalidate()

	if err := l.persistCursor(size); err != nil {
		return err
	}

	l.logger.Info("opened day log",
		zap.String("file", DayFileName(day)),
		zap.Int64("size", size))

	return nil
}

// Day returns the day the writer is currently bound to.
func (l *FrameLog) Day() time.Time {
	return l.day
}

// Close releases the log file handle.
func (l *FrameLog) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// invalidate forgets the amendable record. Called whenever the bytes on disk
// can no longer be trusted to match the tracked offsets.
func (l *FrameLog) invalidate() {
	l.endOff = -1
	l.endLen = 0
}

// persistCursor mirrors the writer's position into the cursor index. The
// tail argument is where the file ends; with no amendable record the cursor
// degenerates to (tail, 0) so the size invariant still holds.
func (l *FrameLog) persistCursor(tail int64) error {
	c := Cursor{File: DayFileName(l.day), EndOffset: tail, EndLength: 0}
	if l.endOff >= 0 {
		c.EndOffset = l.endOff
		c.EndLength = l.endLen
	}
	if err := writeCursor(l.dir, c); err != nil {
		l.invalidate()
		return err
	}
	return nil
}

func validateName(name string) error {
	if name == "" || strings.Contains(name, delim) || strings.ContainsAny(name, "\r\n") {
		return errors.Wrapf(domain.ErrBadName, "%q", name)
	}
	return nil
}

// Ensure FrameLog implements domain.FrameWriter.
var _ domain.FrameWriter = (*FrameLog)(nil)
