package container

import (
	"context"
	"os/exec"
	"strings"
	"testing"
)

func TestDetectRuntime_FindsDocker(t *testing.T) {
	// Skip if docker is not available
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not available")
	}

	runtime, err := DetectRuntime("auto")
	if err != nil {
		t.Fatalf("DetectRuntime() failed: %v", err)
	}

	// Docker should be preferred if both are available
	if runtime != "docker" {
		t.Errorf("expected docker, got %s", runtime)
	}
}

func TestDetectRuntime_FindsPodman(t *testing.T) {
	// This test only runs if podman is available but docker is not
	if _, err := exec.LookPath("docker"); err == nil {
		t.Skip("docker is available, podman fallback not tested")
	}
	if _, err := exec.LookPath("podman"); err != nil {
		t.Skip("podman not available")
	}

	runtime, err := DetectRuntime("auto")
	if err != nil {
		t.Fatalf("DetectRuntime() failed: %v", err)
	}

	if runtime != "podman" {
		t.Errorf("expected podman, got %s", runtime)
	}
}

func TestDetectRuntime_ExplicitEngine(t *testing.T) {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not available")
	}

	runtime, err := DetectRuntime("docker")
	if err != nil {
		t.Fatalf("DetectRuntime() failed: %v", err)
	}
	if runtime != "docker" {
		t.Errorf("expected docker, got %s", runtime)
	}
}

func TestDetectRuntime_ExplicitEngineMissing(t *testing.T) {
	_, err := DetectRuntime("no-such-engine")
	if err != ErrNoRuntime {
		t.Errorf("expected ErrNoRuntime, got %v", err)
	}
}

func TestMeetsMinimum(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		minVersion string
		wantErr    bool
	}{
		{
			name:       "newer than minimum",
			raw:        "24.0.7",
			minVersion: "20.10",
			wantErr:    false,
		},
		{
			name:       "equal to minimum",
			raw:        "20.10.0",
			minVersion: "20.10.0",
			wantErr:    false,
		},
		{
			name:       "older than minimum",
			raw:        "19.03.5",
			minVersion: "20.10",
			wantErr:    true,
		},
		{
			name:       "unparseable runtime version",
			raw:        "dev-build",
			minVersion: "20.10",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := meetsMinimum("docker", tt.raw, tt.minVersion)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestMeetsMinimum_ErrorNamesVersions(t *testing.T) {
	err := meetsMinimum("podman", "3.4.0", "4.0")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "3.4.0") || !strings.Contains(err.Error(), "4.0") {
		t.Errorf("expected both versions in error, got: %v", err)
	}
}

func TestCheckVersion_EmptyMinimumSkips(t *testing.T) {
	// No runtime calls should happen with an empty minimum
	if err := CheckVersion(context.Background(), "no-such-engine", ""); err != nil {
		t.Errorf("expected nil for empty minimum, got %v", err)
	}
}
