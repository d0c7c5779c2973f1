//go:build !windows

package launcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/initmaster/USBPlugEvent/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultShell(t *testing.T) {
	assert.Equal(t, "/bin/sh", New("", nil).Shell())
	assert.Equal(t, "/bin/bash", New("/bin/bash", nil).Shell())
}

func TestLaunchRunsCommandThroughShell(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	l := New("", nil)

	require.NoError(t, l.Launch("echo removed > "+out))

	require.Eventually(t, func() bool {
		b, err := os.ReadFile(out)
		return err == nil && string(b) == "removed\n"
	}, 5*time.Second, 10*time.Millisecond)
}

func TestLaunchDoesNotWaitForCommand(t *testing.T) {
	l := New("", nil)

	start := time.Now()
	require.NoError(t, l.Launch("sleep 3"))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestLaunchFailureIsReported(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "no-such-shell"), nil)

	err := l.Launch("echo hi")
	assert.ErrorIs(t, err, model.ErrLaunchFailed)
}
