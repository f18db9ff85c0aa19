package container

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// ErrNoRuntime is returned when no container runtime is found.
var ErrNoRuntime = errors.New("no container runtime found (need docker or podman)")

// DetectRuntime finds an available container runtime. An engine of
// "auto" (or empty) probes docker first, then podman; a concrete engine
// name is verified and used as-is. Verification runs `<runtime> version`
// to catch binaries on PATH whose daemon is unreachable.
func DetectRuntime(engine string) (string, error) {
	candidates := []string{"docker", "podman"}
	if engine != "" && engine != "auto" {
		candidates = []string{engine}
	}

	for _, bin := range candidates {
		if _, err := exec.LookPath(bin); err != nil {
			continue
		}
		cmd := exec.Command(bin, "version")
		if err := cmd.Run(); err != nil {
			continue
		}
		return bin, nil
	}
	return "", ErrNoRuntime
}

// ClientVersion reports the runtime's client version, e.g. "24.0.7".
func ClientVersion(ctx context.Context, runtime string) (string, error) {
	cmd := exec.CommandContext(ctx, runtime, "version", "--format", "{{.Client.Version}}")
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("failed to read %s version: %s", runtime, exitErr.Stderr)
		}
		return "", fmt.Errorf("failed to read %s version: %w", runtime, err)
	}
	return strings.TrimSpace(string(output)), nil
}

// CheckVersion verifies the runtime client meets the minimum version.
// An empty minimum disables the check.
func CheckVersion(ctx context.Context, runtime, minVersion string) error {
	if minVersion == "" {
		return nil
	}

	raw, err := ClientVersion(ctx, runtime)
	if err != nil {
		return err
	}
	return meetsMinimum(runtime, raw, minVersion)
}

func meetsMinimum(runtime, raw, minVersion string) error {
	got, err := goversion.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("parse %s version %q: %w", runtime, raw, err)
	}
	min, err := goversion.NewVersion(minVersion)
	if err != nil {
		return fmt.Errorf("parse minimum version %q: %w", minVersion, err)
	}

	if got.LessThan(min) {
		return fmt.Errorf("%s client %s is older than required %s", runtime, got, min)
	}
	return nil
}
