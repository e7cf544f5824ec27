package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunner(t *testing.T) {
	requireShell(t)
	runner := NewExecRunner("sh")
	dir := t.TempDir()

	t.Run("captures output in dir", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "marker"), []byte("here\n"), 0o644))

		res, err := runner.Run(context.Background(), dir, "-c", "cat marker; echo oops >&2")
		require.NoError(t, err)
		assert.Equal(t, 0, res.ExitCode)
		assert.Equal(t, "here\n", string(res.Stdout))
		assert.Equal(t, "oops\n", string(res.Stderr))
	})

	t.Run("non-zero exit is not an error", func(t *testing.T) {
		res, err := runner.Run(context.Background(), dir, "-c", "echo fatal >&2; exit 128")
		require.NoError(t, err)
		assert.Equal(t, 128, res.ExitCode)
		assert.Equal(t, "fatal\n", string(res.Stderr))
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err := runner.Run(ctx, dir, "-c", "exec sleep 5")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestExecRunnerMissingBinary(t *testing.T) {
	runner := NewExecRunner("definitely-not-a-git-binary")
	_, err := runner.Run(context.Background(), t.TempDir(), "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "definitely-not-a-git-binary")

	assert.Equal(t, "git", NewExecRunner("").Binary)
}
