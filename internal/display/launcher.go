package display

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"syscall"

	"github.com/kballard/go-shellquote"
)

// OpenOptions configures a display tool launch
type OpenOptions struct {
	// Locator is the resource locator passed to the display tool
	Locator string

	// Dir is the working directory for the display tool (empty inherits)
	Dir string

	// Stdout captures standard output (nil discards)
	Stdout io.Writer

	// Stderr captures standard error (nil discards)
	Stderr io.Writer
}

// OpenResult contains the result of a display tool run
type OpenResult struct {
	// ExitCode is the process exit code
	ExitCode int

	// Success indicates the tool exited cleanly
	Success bool
}

// Launcher opens display resources in the external display tool
type Launcher interface {
	// Open runs the display tool with the given locator and blocks
	// until it exits
	Open(ctx context.Context, opts OpenOptions) (*OpenResult, error)
}

// CLILauncher implements Launcher by spawning the display tool as a
// subprocess. The configured command line may carry fixed arguments;
// the locator is always appended as `-resource <locator>`.
type CLILauncher struct {
	command string
}

// NewCLILauncher creates a launcher for the given display command line
func NewCLILauncher(command string) *CLILauncher {
	return &CLILauncher{
		command: command,
	}
}

// Open runs the display tool with the provided options
func (l *CLILauncher) Open(ctx context.Context, opts OpenOptions) (*OpenResult, error) {
	if opts.Locator == "" {
		return nil, ErrEmptyLocator
	}

	argv, err := l.argv(opts.Locator)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = opts.Dir
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	err = cmd.Run()

	result := &OpenResult{
		ExitCode: 0,
		Success:  err == nil,
	}

	if err != nil {
		if ctx.Err() == context.Canceled {
			return result, ctx.Err()
		}

		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			// Tool never started (not found, not executable)
			return result, fmt.Errorf("start display tool: %w", err)
		}

		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			result.ExitCode = status.ExitStatus()
		}
		return result, NewExitError(result.ExitCode, err)
	}

	return result, nil
}

// argv splits the configured command line and appends the resource flag
func (l *CLILauncher) argv(locator string) ([]string, error) {
	argv, err := shellquote.Split(l.command)
	if err != nil {
		return nil, fmt.Errorf("parse display command: %w", err)
	}
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}

	return append(argv, "-resource", locator), nil
}

// MockLauncher is a test implementation of Launcher
type MockLauncher struct {
	// OpenFunc is called when Open is invoked
	OpenFunc func(ctx context.Context, opts OpenOptions) (*OpenResult, error)
}

// Open delegates to the OpenFunc
func (m *MockLauncher) Open(ctx context.Context, opts OpenOptions) (*OpenResult, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, opts)
	}
	return &OpenResult{Success: true}, nil
}
