// Package command provides the external command execution adapter implementation.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"wireguard-subnets/internal/port"
)

// DefaultTimeout bounds a single command when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// scopePrefix wraps a command in a transient systemd scope.
var scopePrefix = []string{"systemd-run", "--scope", "--quiet"}

// RunnerAdapter is an adapter that implements the CommandRunner port using os/exec.
type RunnerAdapter struct {
	scoped  bool
	timeout time.Duration
}

// Ensure RunnerAdapter implements the CommandRunner port
var _ port.CommandRunner = (*RunnerAdapter)(nil)

// NewRunnerAdapter creates a new command runner adapter.
// When scoped is true every command is wrapped in a systemd scope.
func NewRunnerAdapter(scoped bool, timeout time.Duration) *RunnerAdapter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &RunnerAdapter{scoped: scoped, timeout: timeout}
}

// Scoped reports whether commands are wrapped in a systemd scope.
func (r *RunnerAdapter) Scoped() bool {
	return r.scoped
}

// Run executes the command in its own session and captures its output.
func (r *RunnerAdapter) Run(ctx context.Context, name string, args ...string) (port.CommandResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	argv := r.argv(name, args)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := port.CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return result, nil
	case ctx.Err() != nil:
		result.ExitCode = -1
		return result, fmt.Errorf("command %s timed out after %s: %w", name, r.timeout, ctx.Err())
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	default:
		result.ExitCode = -1
		return result, fmt.Errorf("failed to run command %s: %w", name, err)
	}
}

func (r *RunnerAdapter) argv(name string, args []string) []string {
	argv := make([]string, 0, len(scopePrefix)+1+len(args))
	if r.scoped {
		argv = append(argv, scopePrefix...)
	}
	argv = append(argv, name)
	return append(argv, args...)
}
