package cli

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/8ryn/tomoscan/internal/config"
	"github.com/8ryn/tomoscan/internal/history"
	"github.com/8ryn/tomoscan/internal/logging"
)

// App represents the CLI application with all wired dependencies
type App struct {
	// Root command
	rootCmd *cobra.Command

	// Global flags
	logLevel string

	// Version information
	version string
	commit  string
	date    string
}

// New creates a new CLI application
func New() *App {
	app := &App{}
	app.setupRootCmd()
	return app
}

// Execute runs the CLI application
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

// SetVersion sets the version information for the version command
func (a *App) SetVersion(version, commit, date string) {
	a.version = version
	a.commit = commit
	a.date = date
}

// setupRootCmd configures the root Cobra command
func (a *App) setupRootCmd() {
	a.rootCmd = &cobra.Command{
		Use:   "tomoscan",
		Short: "Tomography beamline control screens and session images",
		Long: `tomoscan launches the beamline synoptic display and builds the
container images operators use for interactive and simulated scan
sessions.

Screens resolve against the directory the tomoscan binary lives in, so
a deployed bundle works from any working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add persistent flags
	a.rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "",
		"Log level (trace, debug, info, warn, error)")

	a.rootCmd.AddCommand(
		NewDisplayCmd(a),
		NewBuildCmd(a),
		NewVerifyCmd(a),
		NewExportCmd(a),
		NewImagesCmd(a),
		NewHistoryCmd(a),
		NewVersionCmd(a),
	)
}

// loadConfig loads the layered configuration rooted at the working
// directory.
func (a *App) loadConfig() (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.LoadConfig(wd)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// effectiveLogLevel picks the level: --log-level flag, then
// TOMOSCAN_LOG_LEVEL, then the config file, then "info".
func (a *App) effectiveLogLevel(cfg *config.Config) string {
	if a.logLevel != "" {
		return a.logLevel
	}
	if env := os.Getenv(logging.EnvLogLevel); env != "" {
		return env
	}
	return cfg.LogLevel
}

// newLogger builds the root logger for a command run.
func (a *App) newLogger(cfg *config.Config) hclog.Logger {
	return logging.New(a.effectiveLogLevel(cfg))
}

// openHistory opens the invocation ledger. Ledger trouble never fails
// a command: a nil store (with a warning) comes back instead.
func (a *App) openHistory(cfg *config.Config, logger hclog.Logger) *history.Store {
	if cfg.History.Disabled {
		return nil
	}

	path := cfg.History.Path
	if path == "" {
		var err error
		path, err = history.DefaultPath()
		if err != nil {
			logger.Warn("history disabled", "error", err)
			return nil
		}
	}

	store, err := history.Open(path)
	if err != nil {
		logger.Warn("history disabled", "path", path, "error", err)
		return nil
	}
	return store
}

// record appends to the ledger, tolerating a nil store.
func record(store *history.Store, logger hclog.Logger, r history.Record) {
	if store == nil {
		return
	}
	if err := store.Append(r); err != nil {
		logger.Warn("failed to record invocation", "kind", r.Kind, "error", err)
	}
}
