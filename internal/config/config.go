package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for tomoscan.
// It is immutable after creation via LoadConfig().
type Config struct {
	// Display contains display tool and screen settings
	Display DisplayConfig `yaml:"display"`

	// Images contains image build settings
	Images ImagesConfig `yaml:"images"`

	// Runtime contains container runtime selection settings
	Runtime RuntimeConfig `yaml:"runtime"`

	// Export contains image export settings
	Export ExportConfig `yaml:"export"`

	// History contains run ledger settings
	History HistoryConfig `yaml:"history"`

	// LogLevel controls log verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`
}

// DisplayConfig controls how the external display tool is launched.
type DisplayConfig struct {
	// Command is the display tool command line. It may carry fixed
	// arguments ("java -jar /opt/phoebus/phoebus.jar") and is split
	// with shell quoting rules at launch time.
	Command string `yaml:"command"`

	// ScreensDir overrides the directory screen files are resolved
	// against. Empty means the directory containing the tomoscan
	// executable, which keeps launches working from any cwd.
	ScreensDir string `yaml:"screens_dir"`

	// Screens maps screen names to their file and macro definitions.
	// Entries here are merged over the built-in catalog; defining a
	// built-in name replaces it wholesale.
	Screens map[string]ScreenConfig `yaml:"screens"`
}

// ScreenConfig describes one display screen.
type ScreenConfig struct {
	// File is the screen file name, resolved against the screens directory
	File string `yaml:"file"`

	// Macros are substitution macros passed to the display tool.
	// Order is preserved on the wire, so this is a list, not a map.
	Macros []Macro `yaml:"macros"`
}

// Macro is a single name/value substitution pair.
type Macro struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// ImagesConfig controls image building.
type ImagesConfig struct {
	// ContextDir is the directory holding build artifacts (setup
	// scripts, catalog files). Relative paths are resolved from the
	// config root.
	ContextDir string `yaml:"context_dir"`

	// TagPrefix is prepended to image names when tagging (e.g.
	// "tomoscan" tags the interactive image as tomoscan/interactive:latest)
	TagPrefix string `yaml:"tag_prefix"`
}

// RuntimeConfig controls container runtime selection.
type RuntimeConfig struct {
	// Engine selects the container runtime: "auto", "docker" or "podman"
	Engine string `yaml:"engine"`

	// MinVersion is the minimum accepted runtime client version (optional)
	MinVersion string `yaml:"min_version"`
}

// ExportConfig controls image export.
type ExportConfig struct {
	// Dir is where export archives are written.
	// Relative paths are resolved from the config root.
	Dir string `yaml:"dir"`

	// Compression selects the archive compression: "gzip" or "bzip2"
	Compression string `yaml:"compression"`
}

// HistoryConfig controls the local run ledger.
type HistoryConfig struct {
	// Path overrides the ledger database location.
	// Empty means $XDG_STATE_HOME/tomoscan/history.db.
	Path string `yaml:"path"`

	// Disabled turns off ledger writes entirely
	Disabled bool `yaml:"disabled"`
}

// LoadConfig loads configuration from the given root directory.
// It applies defaults, then file values, then environment overrides,
// then resolves relative paths and validates.
//
// Parameters:
//   - root: directory searched for .tomoscan.yaml, and the base for
//     relative paths in the loaded config
//
// Returns the validated Config or an error if validation fails.
func LoadConfig(root string) (*Config, error) {
	cfg := DefaultConfig()

	// Try to load config file (optional)
	configPath := filepath.Join(root, ".tomoscan.yaml")
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	// Note: missing config file is not an error (use defaults)

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Resolve relative paths
	if !filepath.IsAbs(cfg.Images.ContextDir) {
		cfg.Images.ContextDir = filepath.Join(root, cfg.Images.ContextDir)
	}
	if !filepath.IsAbs(cfg.Export.Dir) {
		cfg.Export.Dir = filepath.Join(root, cfg.Export.Dir)
	}

	// Validate
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}
