package config

import (
	"strings"
	"testing"
)

func TestValidateConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()

	if err := validateConfig(cfg); err != nil {
		t.Errorf("expected default config to validate, got: %v", err)
	}
}

func TestValidateConfig_EmptyDisplayCommand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Display.Command = ""

	err := validateConfig(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "display.command") {
		t.Errorf("expected display.command in error, got: %v", err)
	}
}

func TestValidateConfig_UnterminatedDisplayCommand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Display.Command = `java -jar "phoebus.jar`

	err := validateConfig(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "invalid command line") {
		t.Errorf("expected command line parse failure, got: %v", err)
	}
}

func TestValidateConfig_ScreenWithoutFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Display.Screens["camera"] = ScreenConfig{
		Macros: []Macro{{Name: "P", Value: "TA1:CT_CAM:"}},
	}

	err := validateConfig(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "display.screens[camera].file") {
		t.Errorf("expected screen file error, got: %v", err)
	}
}

func TestValidateConfig_MacroWithoutName(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Display.Screens["camera"] = ScreenConfig{
		File:   "camera.bob",
		Macros: []Macro{{Name: "", Value: "cam1:"}},
	}

	err := validateConfig(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "display.screens[camera].macros[0].name") {
		t.Errorf("expected macro name error, got: %v", err)
	}
}

func TestValidateConfig_InvalidEngine(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Runtime.Engine = "containerd"

	err := validateConfig(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "runtime.engine") {
		t.Errorf("expected runtime.engine in error, got: %v", err)
	}
}

func TestValidateConfig_InvalidMinVersion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Runtime.MinVersion = "not-a-version"

	err := validateConfig(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "runtime.min_version") {
		t.Errorf("expected runtime.min_version in error, got: %v", err)
	}
}

func TestValidateConfig_ValidMinVersion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Runtime.MinVersion = "20.10.7"

	if err := validateConfig(cfg); err != nil {
		t.Errorf("expected valid min_version to pass, got: %v", err)
	}
}

func TestValidateConfig_InvalidCompression(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Export.Compression = "zstd"

	err := validateConfig(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "export.compression") {
		t.Errorf("expected export.compression in error, got: %v", err)
	}
}

func TestValidateConfig_InvalidLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "verbose"

	err := validateConfig(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "log_level") {
		t.Errorf("expected log_level in error, got: %v", err)
	}
}

func TestValidateConfig_EmptyTagPrefix(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Images.TagPrefix = ""

	err := validateConfig(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "images.tag_prefix") {
		t.Errorf("expected images.tag_prefix in error, got: %v", err)
	}
}

func TestValidateConfig_MultipleErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Display.Command = ""
	cfg.Runtime.Engine = "lxc"
	cfg.LogLevel = "loud"

	err := validateConfig(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}

	msg := err.Error()
	for _, want := range []string{"display.command", "runtime.engine", "log_level"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %s in joined error, got: %v", want, err)
		}
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{
		Field:   "runtime.engine",
		Value:   "lxc",
		Message: "must be one of: auto, docker, podman",
	}

	want := "config.runtime.engine: must be one of: auto, docker, podman (got: lxc)"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}
