package video

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes external tools. ExecRunner is the real implementation;
// tests substitute a fake that returns canned output.
type Runner interface {
	// Output runs the command and returns its stdout.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	// Stream runs the command and calls onLine for every line written to stdout.
	Stream(ctx context.Context, onLine func(string), name string, args ...string) error
}

// ExecRunner runs commands on the local machine.
type ExecRunner struct{}

func (ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, commandError(name, err, stderr.String())
	}
	return out, nil
}

func (ExecRunner) Stream(ctx context.Context, onLine func(string), name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open %s stdout: %w", name, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		onLine(scanner.Text())
	}

	if err := cmd.Wait(); err != nil {
		return commandError(name, err, stderr.String())
	}
	return scanner.Err()
}

// commandError keeps the end of stderr, which is where ffmpeg and friends
// print the actual failure.
func commandError(name string, err error, stderr string) error {
	stderr = strings.TrimSpace(stderr)
	if len(stderr) > 2000 {
		stderr = "..." + stderr[len(stderr)-2000:]
	}
	if stderr == "" {
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return fmt.Errorf("%s failed: %w, stderr: %s", name, err, stderr)
}
