package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/8ryn/tomoscan/internal/cli/tui"
	"github.com/8ryn/tomoscan/internal/container"
	"github.com/8ryn/tomoscan/internal/events"
	"github.com/8ryn/tomoscan/internal/history"
	"github.com/8ryn/tomoscan/internal/image"
	"github.com/8ryn/tomoscan/internal/logging"
)

// BuildOptions holds flags for the build command
type BuildOptions struct {
	Runtime    string // Container runtime override (docker, podman)
	ContextDir string // Build context directory override
	NoCache    bool   // Disable the runtime layer cache
	JSON       bool   // Emit newline-delimited JSON events
	NoTUI      bool   // Disable TUI even when stdout is a TTY
}

// NewBuildCmd creates the build command
func NewBuildCmd(app *App) *cobra.Command {
	opts := BuildOptions{}

	cmd := &cobra.Command{
		Use:   "build [image...]",
		Short: "Build the beamline session images",
		Long: `Build renders each image's recipe, assembles its build context from
the deploy directory, and drives the container runtime to completion.
With no arguments every catalog image builds, in order.

Progress is shown in a TUI on interactive terminals; otherwise events
stream as log lines, or as JSON with --json.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunBuild(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Runtime, "runtime", "", "Container runtime (docker, podman; default: auto-detect)")
	cmd.Flags().StringVar(&opts.ContextDir, "context-dir", "", "Directory holding the image artifacts (default: deploy)")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Rebuild every layer")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Emit newline-delimited JSON events on stdout")
	cmd.Flags().BoolVar(&opts.NoTUI, "no-tui", false, "Disable interactive TUI (use line output)")

	return cmd
}

// RunBuild builds the named images, or the full catalog
func (a *App) RunBuild(ctx context.Context, names []string, opts BuildOptions) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	specs, err := resolveSpecs(names)
	if err != nil {
		return err
	}

	engine := cfg.Runtime.Engine
	if opts.Runtime != "" {
		engine = opts.Runtime
	}
	runtime, err := container.DetectRuntime(engine)
	if err != nil {
		return err
	}
	if err := container.CheckVersion(ctx, runtime, cfg.Runtime.MinVersion); err != nil {
		return err
	}

	contextDir := cfg.Images.ContextDir
	if opts.ContextDir != "" {
		contextDir = opts.ContextDir
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	bus := events.NewBus(1000)
	defer bus.Close()

	jsonMode := events.IsJSONMode(opts.JSON)
	useTUI := !opts.NoTUI && !jsonMode && term.IsTerminal(int(os.Stdout.Fd()))

	var logger hclog.Logger
	var program *tea.Program
	var tuiBridge *tui.Bridge
	var logWriter *tui.LogWriter
	switch {
	case useTUI:
		model := tui.NewModel(len(specs), runtime)
		program = tea.NewProgram(model, tea.WithAltScreen())
		tuiBridge = tui.NewBridge(program)
		bus.Subscribe(tuiBridge.Handler())

		logWriter = tui.NewLogWriter(program)
		logger = logging.NewWithOutput(a.effectiveLogLevel(cfg), logWriter)

		go func() {
			if _, err := program.Run(); err != nil {
				fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
			}
		}()
	case jsonMode:
		emitter := events.NewJSONEmitter(os.Stdout)
		bus.Subscribe(events.JSONEmitterHandler(emitter))
		logger = a.newLogger(cfg)
	default:
		bus.Subscribe(events.LogHandler(events.LogConfig{Writer: os.Stderr}))
		logger = a.newLogger(cfg)
	}

	handler := NewSignalHandler(cancel, logger)
	handler.Start()
	defer handler.Stop()

	store := a.openHistory(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	manager := container.NewCLIManager(runtime)
	builder := image.NewBuilder(manager, bus, logger, image.BuildOptions{
		ContextDir: contextDir,
		TagPrefix:  cfg.Images.TagPrefix,
		NoCache:    opts.NoCache,
	})

	start := time.Now()
	results, err := builder.BuildAll(ctx, specs)

	built := make(map[string]bool, len(results))
	for _, result := range results {
		built[result.Image] = true
		record(store, logger, history.Record{
			Kind:     history.KindBuild,
			Subject:  result.Image,
			Runtime:  runtime,
			Status:   history.StatusOK,
			Detail:   result.Tag,
			Duration: result.Duration,
		})
	}
	if err != nil {
		for _, spec := range specs {
			if !built[spec.Name] {
				record(store, logger, history.Record{
					Kind:    history.KindBuild,
					Subject: spec.Name,
					Runtime: runtime,
					Status:  history.StatusFailed,
					Detail:  err.Error(),
				})
			}
		}
	}

	// Take the alt screen down before the summary so it lands on the
	// operator's real terminal
	if program != nil {
		tuiBridge.SendDone()
		logWriter.Close()
		program.Wait()
	}

	if !jsonMode {
		fmt.Printf("\nBuild complete:\n")
		fmt.Printf("  Images built: %d/%d\n", len(results), len(specs))
		fmt.Printf("  Runtime:      %s\n", runtime)
		fmt.Printf("  Duration:     %s\n", time.Since(start).Round(time.Millisecond))
	}

	return err
}

// resolveSpecs maps image names onto catalog specs, defaulting to the
// whole catalog
func resolveSpecs(names []string) ([]image.Spec, error) {
	if len(names) == 0 {
		return image.Catalog(), nil
	}

	specs := make([]image.Spec, 0, len(names))
	for _, name := range names {
		spec, ok := image.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown image %q (known images: %s)", name, knownImages())
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// knownImages lists catalog image names for error messages
func knownImages() string {
	names := make([]string, 0, len(image.Catalog()))
	for _, spec := range image.Catalog() {
		names = append(names, spec.Name)
	}
	return strings.Join(names, ", ")
}
