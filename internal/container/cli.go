package container

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strings"
)

// CLIManager implements Manager using the docker/podman CLI.
type CLIManager struct {
	runtime string // "docker" or "podman"
}

// NewCLIManager creates a Manager using the specified runtime.
// Use DetectRuntime() to find an available runtime first.
func NewCLIManager(runtime string) *CLIManager {
	return &CLIManager{runtime: runtime}
}

// Runtime returns the runtime binary this manager drives.
func (m *CLIManager) Runtime() string {
	return m.runtime
}

// Build builds an image from the tar context on cfg.Context.
// Progress output (both streams) is forwarded to output as it arrives.
func (m *CLIManager) Build(ctx context.Context, cfg BuildConfig, output io.Writer) error {
	cmd := exec.CommandContext(ctx, m.runtime, m.buildArgs(cfg)...)
	cmd.Stdin = cfg.Context
	cmd.Stdout = output
	cmd.Stderr = output

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to build %s: %w", cfg.Tag, err)
	}
	return nil
}

// buildArgs constructs the command-line arguments for a build.
// Labels are emitted in sorted order so the command line is stable.
func (m *CLIManager) buildArgs(cfg BuildConfig) []string {
	args := []string{"build", "-t", cfg.Tag}

	if cfg.NoCache {
		args = append(args, "--no-cache")
	}

	keys := make([]string, 0, len(cfg.Labels))
	for k := range cfg.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--label", fmt.Sprintf("%s=%s", k, cfg.Labels[k]))
	}

	// Context comes from stdin
	args = append(args, "-")
	return args
}

// Save streams the image tarball to w.
func (m *CLIManager) Save(ctx context.Context, tag string, w io.Writer) error {
	cmd := exec.CommandContext(ctx, m.runtime, "save", tag)
	cmd.Stdout = w

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return fmt.Errorf("failed to save %s: %s", tag, strings.TrimSpace(stderr.String()))
		}
		return fmt.Errorf("failed to save %s: %w", tag, err)
	}
	return nil
}

// Run runs a container to completion and returns its combined output.
func (m *CLIManager) Run(ctx context.Context, cfg ContainerConfig) ([]byte, error) {
	cmd := exec.CommandContext(ctx, m.runtime, m.runArgs(cfg)...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return output, fmt.Errorf("failed to run %s: %w", cfg.Image, err)
	}
	return output, nil
}

// runArgs constructs the command-line arguments for a run.
func (m *CLIManager) runArgs(cfg ContainerConfig) []string {
	args := []string{"run"}

	if cfg.Remove {
		args = append(args, "--rm")
	}
	if cfg.Name != "" {
		args = append(args, "--name", cfg.Name)
	}

	keys := make([]string, 0, len(cfg.Env))
	for k := range cfg.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, cfg.Env[k]))
	}

	if cfg.WorkDir != "" {
		args = append(args, "-w", cfg.WorkDir)
	}

	// Image and command come last
	args = append(args, cfg.Image)
	args = append(args, cfg.Cmd...)
	return args
}

// ImageExists reports whether the image is present in the local store.
func (m *CLIManager) ImageExists(ctx context.Context, tag string) (bool, error) {
	cmd := exec.CommandContext(ctx, m.runtime, "image", "inspect", tag)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Inspect exits non-zero for unknown images
			return false, nil
		}
		return false, fmt.Errorf("failed to inspect %s: %w", tag, err)
	}
	return true, nil
}

// Verify CLIManager implements Manager interface
var _ Manager = (*CLIManager)(nil)
