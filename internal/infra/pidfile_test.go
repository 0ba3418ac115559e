package infra

import (
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPIDFile_WriteRead verifies the pid round-trips
func TestPIDFile_WriteRead(t *testing.T) {
	p := NewPIDFile(t.TempDir())

	require.NoError(t, p.Write())

	pid, err := p.Read()
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

// TestPIDFile_ReadMissing verifies a missing file reads as pid 0
func TestPIDFile_ReadMissing(t *testing.T) {
	p := NewPIDFile(t.TempDir())

	pid, err := p.Read()

	require.NoError(t, err)
	assert.Zero(t, pid)
}

// TestPIDFile_AliveOwnProcess verifies liveness detection against this test process
func TestPIDFile_AliveOwnProcess(t *testing.T) {
	p := NewPIDFile(t.TempDir())
	require.NoError(t, p.Write())

	alive, pid := p.Alive()

	assert.True(t, alive)
	assert.Equal(t, os.Getpid(), pid)
}

// TestPIDFile_AliveStalePID verifies a dead pid counts as not running
func TestPIDFile_AliveStalePID(t *testing.T) {
	p := NewPIDFile(t.TempDir())

	// Beyond the kernel's pid_max, so it can never be a live process.
	require.NoError(t, os.WriteFile(p.Path(), []byte(strconv.Itoa(1<<22+7)), 0600))

	alive, _ := p.Alive()

	assert.False(t, alive)
}

// TestPIDFile_AliveCorruptFile verifies garbage content counts as not running
func TestPIDFile_AliveCorruptFile(t *testing.T) {
	p := NewPIDFile(t.TempDir())
	require.NoError(t, os.WriteFile(p.Path(), []byte("not-a-pid"), 0600))

	alive, pid := p.Alive()

	assert.False(t, alive)
	assert.Zero(t, pid)
}

// TestPIDFile_Remove verifies removal is idempotent
func TestPIDFile_Remove(t *testing.T) {
	p := NewPIDFile(t.TempDir())
	require.NoError(t, p.Write())

	require.NoError(t, p.Remove())
	assert.NoFileExists(t, p.Path())

	assert.NoError(t, p.Remove())
}
