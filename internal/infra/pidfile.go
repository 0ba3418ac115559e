package infra

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"
)

const pidFileName = "screentimed.pid"

// PIDFile records the daemon's process id inside the storage directory so
// start, stop and status can find a running instance.
type PIDFile struct {
	path string
}

// NewPIDFile creates a pid file handle for the given storage directory.
func NewPIDFile(dir string) *PIDFile {
	return &PIDFile{path: filepath.Join(dir, pidFileName)}
}

// Path returns the pid file location.
func (p *PIDFile) Path() string {
	return p.path
}

// Write records the current process id.
func (p *PIDFile) Write() error {
	data := strconv.Itoa(os.Getpid()) + "\n"
	if err := os.WriteFile(p.path, []byte(data), 0600); err != nil {
		return errors.Wrap(err, "failed to write pid file")
	}
	return nil
}

// Read returns the recorded pid, or 0 when no pid file exists.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "failed to read pid file")
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, errors.Wrap(err, "corrupt pid file")
	}
	return pid, nil
}

// Remove deletes the pid file. A missing file is not an error.
func (p *PIDFile) Remove() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove pid file")
	}
	return nil
}

// Alive reports whether the recorded process is still running, along with
// the recorded pid. A missing, corrupt or stale pid file counts as not
// running; the caller is free to overwrite it.
func (p *PIDFile) Alive() (bool, int) {
	pid, err := p.Read()
	if err != nil || pid == 0 {
		return false, 0
	}

	running, err := process.PidExists(int32(pid))
	if err != nil {
		return false, pid
	}
	return running, pid
}
