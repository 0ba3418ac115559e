package infra

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const cursorFileName = ".cursor.json"

// Cursor records where the amendable record's end field lives inside the
// current day log. Rewrites of that field are only allowed while the file
// still ends exactly at EndOffset+EndLength; anything else means some other
// writer touched the log and rewriting would corrupt it.
type Cursor struct {
	File      string `json:"file"`
	EndOffset int64  `json:"end_offset"`
	EndLength int64  `json:"end_length"`
}

// CursorPath returns the cursor index path inside the storage directory.
func CursorPath(dir string) string {
	return filepath.Join(dir, cursorFileName)
}

// ReadCursor loads the cursor index. Returns nil without error when no
// cursor has been written yet.
func ReadCursor(dir string) (*Cursor, error) {
	data, err := os.ReadFile(CursorPath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to read cursor index")
	}

	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "failed to decode cursor index")
	}
	return &c, nil
}

// writeCursor persists the cursor index atomically (write + rename).
func writeCursor(dir string, c Cursor) error {
	data, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to encode cursor index")
	}

	path := CursorPath(dir)
	tmpPath := fmt.Sprintf("%s.%d.tmp", path, os.Getpid())
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write cursor index")
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Clean up on failure
		return errors.Wrap(err, "failed to replace cursor index")
	}
	return nil
}
