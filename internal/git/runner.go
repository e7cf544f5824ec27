package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Result is the captured outcome of one git invocation
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes git with args inside dir.
// A non-zero exit is reported through Result.ExitCode, not as an error;
// the error is reserved for invocations that could not run at all.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (*Result, error)
}

// ExecRunner runs a git binary as a child process
type ExecRunner struct {
	Binary string
}

// NewExecRunner creates a runner for the given binary, "git" when empty
func NewExecRunner(binary string) *ExecRunner {
	if binary == "" {
		binary = "git"
	}
	return &ExecRunner{Binary: binary}
}

// Run implements Runner
func (r *ExecRunner) Run(ctx context.Context, dir string, args ...string) (*Result, error) {
	cmd := exec.CommandContext(ctx, r.Binary, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}
	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return nil, fmt.Errorf("failed to run %s: %w", r.Binary, err)
}
