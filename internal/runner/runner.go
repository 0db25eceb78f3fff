// Package runner executes external commands synchronously.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"
)

const (
	// stderrTail is how much of a failed command's stderr is kept in ExitError.
	stderrTail = 4 << 10
	// waitDelay bounds how long Run waits for output pipes after the process
	// is killed, in case a grandchild still holds them open.
	waitDelay = 2 * time.Second
)

// Runner runs one external command and blocks until it exits. A nil error
// means the command exited with status zero.
type Runner interface {
	Run(ctx context.Context, name string, args []string) error
}

// Option configures an ExecRunner.
type Option func(*ExecRunner)

// WithOutput copies the command's stdout and stderr to w as they are produced.
func WithOutput(w io.Writer) Option {
	return func(r *ExecRunner) {
		if w != nil {
			r.output = w
		}
	}
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct {
	output io.Writer
}

// NewExecRunner creates an ExecRunner. Command output is discarded unless
// WithOutput is given.
func NewExecRunner(opts ...Option) *ExecRunner {
	r := &ExecRunner{output: io.Discard}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes name with args. Failures are returned as *ExitError, except
// context cancellation which is returned wrapped as is.
func (r *ExecRunner) Run(ctx context.Context, name string, args []string) error {
	// #nosec G204 - name comes from the tool locator, args from the command builder
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay

	// exec copies stdout and stderr from separate goroutines.
	out := &lockedWriter{w: r.output}
	var stderr bytes.Buffer
	cmd.Stdout = out
	cmd.Stderr = io.MultiWriter(out, &stderr)

	err := cmd.Run()
	if err != nil {
		// Check if context was cancelled
		if ctx.Err() != nil {
			return fmt.Errorf("%s cancelled: %w", name, ctx.Err())
		}
		return &ExitError{
			Name:   name,
			Args:   args,
			Stderr: tail(stderr.Bytes(), stderrTail),
			Err:    err,
		}
	}

	return nil
}

// Verify interface implementation at compile time.
var _ Runner = (*ExecRunner)(nil)

// ExitError represents a command that could not be started or exited with a
// non-zero status.
type ExitError struct {
	Name   string
	Args   []string
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s error: %v\nargs: %v", e.Name, e.Err, e.Args)
	}
	return fmt.Sprintf("%s error: %v\nargs: %v\nstderr: %s", e.Name, e.Err, e.Args, e.Stderr)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode returns the command's exit status, or -1 when it never ran to
// completion (for example the binary could not be started).
func (e *ExitError) ExitCode() int {
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Started reports whether the process was spawned at all.
func (e *ExitError) Started() bool {
	var exitErr *exec.ExitError
	return errors.As(e.Err, &exitErr)
}

// lockedWriter serializes writes to w.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func tail(b []byte, n int) string {
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(bytes.TrimSpace(b))
}
