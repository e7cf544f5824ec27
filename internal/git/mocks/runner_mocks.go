package mocks

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Kamar-Folarin/repostats/internal/git"
)

// Runner mock
type Runner struct {
	mock.Mock
}

func (m *Runner) Run(ctx context.Context, dir string, args ...string) (*git.Result, error) {
	ret := m.Called(ctx, dir, args)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}
	return ret.Get(0).(*git.Result), ret.Error(1)
}

// ScriptedRunner answers from a fixed table keyed by the joined argument
// list and records how many invocations overlap.
type ScriptedRunner struct {
	Delay time.Duration

	mu        sync.Mutex
	responses map[string]*git.Result
	errs      map[string]error
	calls     []string

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

// NewScriptedRunner creates an empty ScriptedRunner
func NewScriptedRunner() *ScriptedRunner {
	return &ScriptedRunner{
		responses: make(map[string]*git.Result),
		errs:      make(map[string]error),
	}
}

// OK scripts a successful invocation
func (r *ScriptedRunner) OK(stdout string, args ...string) *ScriptedRunner {
	return r.Result(&git.Result{Stdout: []byte(stdout)}, args...)
}

// Fail scripts an invocation that exits with code
func (r *ScriptedRunner) Fail(code int, stderr string, args ...string) *ScriptedRunner {
	return r.Result(&git.Result{Stderr: []byte(stderr), ExitCode: code}, args...)
}

// Error scripts an invocation that cannot start
func (r *ScriptedRunner) Error(err error, args ...string) *ScriptedRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[strings.Join(args, " ")] = err
	return r
}

// Result scripts an arbitrary result
func (r *ScriptedRunner) Result(res *git.Result, args ...string) *ScriptedRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[strings.Join(args, " ")] = res
	return r
}

// Run implements git.Runner. Unscripted commands exit with status 128.
func (r *ScriptedRunner) Run(ctx context.Context, dir string, args ...string) (*git.Result, error) {
	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		peak := r.maxInFlight.Load()
		if n <= peak || r.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}

	key := strings.Join(args, " ")
	r.mu.Lock()
	r.calls = append(r.calls, key)
	res, hasRes := r.responses[key]
	err, hasErr := r.errs[key]
	r.mu.Unlock()

	if r.Delay > 0 {
		select {
		case <-time.After(r.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if hasErr {
		return nil, err
	}
	if hasRes {
		return res, nil
	}
	return &git.Result{Stderr: []byte("fatal: unscripted command: " + key), ExitCode: 128}, nil
}

// Calls returns every argument list seen so far
func (r *ScriptedRunner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// MaxInFlight returns the highest number of overlapping invocations observed
func (r *ScriptedRunner) MaxInFlight() int {
	return int(r.maxInFlight.Load())
}
