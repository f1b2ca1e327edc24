package util

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// CommandOutput holds what an external command wrote.
type CommandOutput struct {
	Stdout []byte
	Stderr []byte
}

// StderrString returns stderr with surrounding whitespace removed.
func (o CommandOutput) StderrString() string {
	return strings.TrimSpace(string(o.Stderr))
}

// RunCommand runs an external command to completion and captures both
// output streams. A non-zero exit status is returned as an *exec.ExitError
// alongside whatever output was produced.
func RunCommand(ctx context.Context, executable string, args ...string) (CommandOutput, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, executable, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := CommandOutput{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return out, err
		}
		return out, fmt.Errorf("failed to run %s: %w", executable, err)
	}
	return out, nil
}

// LookupCommand resolves an executable name against PATH.
// Absolute paths are returned unchanged if they exist.
func LookupCommand(name string) (string, error) {
	return exec.LookPath(name)
}

// IsCommandNotFound reports whether err means the executable is missing.
func IsCommandNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}
