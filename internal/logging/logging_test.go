package logging

import (
	"testing"
)

func TestResolveLevel_Explicit(t *testing.T) {
	if got := ResolveLevel("debug"); got != "debug" {
		t.Errorf("expected level to be %q, got %q", "debug", got)
	}
}

func TestResolveLevel_Env(t *testing.T) {
	t.Setenv(EnvLogLevel, "trace")

	if got := ResolveLevel(""); got != "trace" {
		t.Errorf("expected level to be %q, got %q", "trace", got)
	}
}

func TestResolveLevel_FlagBeatsEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "trace")

	if got := ResolveLevel("warn"); got != "warn" {
		t.Errorf("expected level to be %q, got %q", "warn", got)
	}
}

func TestResolveLevel_Default(t *testing.T) {
	t.Setenv(EnvLogLevel, "")

	if got := ResolveLevel(""); got != "info" {
		t.Errorf("expected level to be %q, got %q", "info", got)
	}
}

func TestResolveLevel_Unknown(t *testing.T) {
	if got := ResolveLevel("verbose"); got != "info" {
		t.Errorf("expected unknown level to resolve to %q, got %q", "info", got)
	}
}

func TestNew_NotNil(t *testing.T) {
	logger := New("debug")
	if logger == nil {
		t.Fatal("expected logger to be non-nil")
	}
	if !logger.IsDebug() {
		t.Error("expected debug level to be enabled")
	}
}
