package config

import (
	"errors"
	"fmt"

	goversion "github.com/hashicorp/go-version"
	"github.com/kballard/go-shellquote"
)

// ValidationError contains details about what failed validation.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config.%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// validateConfig checks all config values for validity.
// Returns nil if valid, or joined errors for all validation failures.
func validateConfig(cfg *Config) error {
	var errs []error

	// Display.Command must not be empty and must split cleanly
	if cfg.Display.Command == "" {
		errs = append(errs, &ValidationError{
			Field:   "display.command",
			Value:   cfg.Display.Command,
			Message: "must not be empty",
		})
	} else if _, err := shellquote.Split(cfg.Display.Command); err != nil {
		errs = append(errs, &ValidationError{
			Field:   "display.command",
			Value:   cfg.Display.Command,
			Message: fmt.Sprintf("invalid command line: %v", err),
		})
	}

	// Screens must name a file; macros must be named
	for name, screen := range cfg.Display.Screens {
		if screen.File == "" {
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("display.screens[%s].file", name),
				Value:   screen.File,
				Message: "must not be empty",
			})
		}
		for i, m := range screen.Macros {
			if m.Name == "" {
				errs = append(errs, &ValidationError{
					Field:   fmt.Sprintf("display.screens[%s].macros[%d].name", name, i),
					Value:   m.Name,
					Message: "must not be empty",
				})
			}
		}
	}

	// Images.ContextDir must not be empty
	if cfg.Images.ContextDir == "" {
		errs = append(errs, &ValidationError{
			Field:   "images.context_dir",
			Value:   cfg.Images.ContextDir,
			Message: "must not be empty",
		})
	}

	// Images.TagPrefix must not be empty
	if cfg.Images.TagPrefix == "" {
		errs = append(errs, &ValidationError{
			Field:   "images.tag_prefix",
			Value:   cfg.Images.TagPrefix,
			Message: "must not be empty",
		})
	}

	// Runtime.Engine must be one of: auto, docker, podman
	switch cfg.Runtime.Engine {
	case "auto", "docker", "podman":
		// Valid
	default:
		errs = append(errs, &ValidationError{
			Field:   "runtime.engine",
			Value:   cfg.Runtime.Engine,
			Message: "must be one of: auto, docker, podman",
		})
	}

	// Runtime.MinVersion must parse as a version when set
	if cfg.Runtime.MinVersion != "" {
		if _, err := goversion.NewVersion(cfg.Runtime.MinVersion); err != nil {
			errs = append(errs, &ValidationError{
				Field:   "runtime.min_version",
				Value:   cfg.Runtime.MinVersion,
				Message: fmt.Sprintf("invalid version: %v", err),
			})
		}
	}

	// Export.Compression must be one of: gzip, bzip2
	switch cfg.Export.Compression {
	case "gzip", "bzip2":
		// Valid
	default:
		errs = append(errs, &ValidationError{
			Field:   "export.compression",
			Value:   cfg.Export.Compression,
			Message: "must be one of: gzip, bzip2",
		})
	}

	// LogLevel must be one of: trace, debug, info, warn, error (case-sensitive)
	validLogLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, &ValidationError{
			Field:   "log_level",
			Value:   cfg.LogLevel,
			Message: "must be one of: trace, debug, info, warn, error",
		})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
