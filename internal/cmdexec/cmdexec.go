// Package cmdexec abstracts external command execution for testability.
// Production code uses the Commander interface; tests inject FakeCommander from testutil.
package cmdexec

import (
	"context"
	"io"
	"os"
	"os/exec"
	"sort"
)

// Commander abstracts external command execution.
type Commander interface {
	// Run executes an external command and returns its combined output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)

	// Attach runs the command with env merged in and its stdio wired to the
	// given streams, the way a sourcing script hands its session to a child step.
	Attach(ctx context.Context, env map[string]string, stdio Stdio, name string, args ...string) error
}

// Stdio bundles the standard streams handed to an attached child.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// RealCommander executes actual external commands via os/exec.
type RealCommander struct{}

// Run executes the command using os/exec.CommandContext.
func (c *RealCommander) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Attach executes the command with inherited-style stdio.
func (c *RealCommander) Attach(ctx context.Context, env map[string]string, stdio Stdio, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = MergeEnv(os.Environ(), env)
	cmd.Stdin = stdio.In
	cmd.Stdout = stdio.Out
	cmd.Stderr = stdio.Err
	return cmd.Run()
}

// MergeEnv appends env on top of base. Keys are sorted so the result is
// deterministic; os/exec keeps the last value for duplicate keys.
func MergeEnv(base []string, env map[string]string) []string {
	if len(env) == 0 {
		return base
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]string, 0, len(base)+len(env))
	result = append(result, base...)
	for _, k := range keys {
		result = append(result, k+"="+env[k])
	}
	return result
}
