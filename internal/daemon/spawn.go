package daemon

import (
	"os"
	"os/exec"
	"syscall"
)

// SpawnDetached re-executes the current binary's run command in a new
// session, detached from the terminal, and returns the child pid. The child
// writes its own pid file once it is up.
func SpawnDetached() (int, error) {
	executable, err := os.Executable()
	if err != nil {
		return 0, err
	}

	cmd := exec.Command(executable, "run")

	// Detach from parent process
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true, // Create new session (detach from terminal)
	}

	// No stdin/stdout/stderr - fully detached
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return 0, err
	}
	return cmd.Process.Pid, nil
}
