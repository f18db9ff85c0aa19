package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/8ryn/tomoscan/internal/config"
	"github.com/8ryn/tomoscan/internal/display"
	"github.com/8ryn/tomoscan/internal/events"
	"github.com/8ryn/tomoscan/internal/history"
)

// DisplayOptions holds flags for the display command
type DisplayOptions struct {
	Print      bool   // Render the locator to stdout without launching
	ScreensDir string // Override screen file directory resolution
}

// NewDisplayCmd creates the display command
func NewDisplayCmd(app *App) *cobra.Command {
	opts := DisplayOptions{}

	cmd := &cobra.Command{
		Use:   "display [screen]",
		Short: "Launch the synoptic display for a beamline screen",
		Long: `Display opens a control screen in the configured display tool and
blocks until the tool exits, passing its exit code through.

Screen files resolve against the directory containing the tomoscan
binary unless overridden, so the deployed bundle works regardless of
the operator's working directory. With no argument the overview screen
opens.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			screen := config.OverviewScreen
			if len(args) > 0 {
				screen = args[0]
			}
			return app.RunDisplay(cmd.Context(), screen, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&opts.Print, "print", false, "Print the locator without launching the display tool")
	cmd.Flags().StringVar(&opts.ScreensDir, "screens-dir", "", "Directory containing screen files (default: the binary's directory)")

	return cmd
}

// RunDisplay resolves the screen locator and launches the display tool
func (a *App) RunDisplay(ctx context.Context, screenName string, opts DisplayOptions, stdout io.Writer) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	logger := a.newLogger(cfg)

	sc, ok := cfg.Display.Screens[screenName]
	if !ok {
		return fmt.Errorf("unknown screen %q (known screens: %s)", screenName, strings.Join(screenNames(cfg), ", "))
	}

	dir, err := display.ResolveDir(opts.ScreensDir, cfg.Display.ScreensDir)
	if err != nil {
		return err
	}

	screen := toScreen(screenName, sc)
	locator := screen.Locator(dir)

	if opts.Print {
		fmt.Fprintln(stdout, locator)
		return nil
	}

	bus := events.NewBus(64)
	defer bus.Close()
	if logger.IsDebug() {
		bus.Subscribe(events.LogHandler(events.LogConfig{Writer: os.Stderr, IncludePayload: true}))
	}

	store := a.openHistory(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	launcher := display.NewCLILauncher(cfg.Display.Command)
	logger.Info("launching display tool", "screen", screenName, "command", cfg.Display.Command, "locator", locator)
	bus.Emit(events.NewEvent(events.DisplayStarting, screenName).WithPayload(map[string]any{
		"locator": locator,
		"command": cfg.Display.Command,
	}))

	start := time.Now()
	result, err := launcher.Open(ctx, display.OpenOptions{
		Locator: locator,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	})
	duration := time.Since(start)

	if err != nil {
		var exitErr *display.ExitError
		if errors.As(err, &exitErr) {
			logger.Warn("display tool exited", "screen", screenName, "code", exitErr.Code, "duration", duration)
			bus.Emit(events.NewEvent(events.DisplayExited, screenName).WithPayload(map[string]any{
				"code": exitErr.Code,
			}))
			record(store, logger, history.Record{
				Kind:     history.KindDisplay,
				Subject:  screenName,
				Status:   history.StatusFailed,
				Detail:   fmt.Sprintf("%s (exit %d)", locator, exitErr.Code),
				Duration: duration,
			})
			return err
		}

		logger.Error("failed to launch display tool", "screen", screenName, "error", err)
		bus.Emit(events.NewEvent(events.DisplayFailed, screenName).WithError(err))
		record(store, logger, history.Record{
			Kind:     history.KindDisplay,
			Subject:  screenName,
			Status:   history.StatusFailed,
			Detail:   err.Error(),
			Duration: duration,
		})
		return err
	}

	logger.Info("display tool exited", "screen", screenName, "code", result.ExitCode, "duration", duration)
	bus.Emit(events.NewEvent(events.DisplayExited, screenName).WithPayload(map[string]any{
		"code": result.ExitCode,
	}))
	record(store, logger, history.Record{
		Kind:     history.KindDisplay,
		Subject:  screenName,
		Status:   history.StatusOK,
		Detail:   locator,
		Duration: duration,
	})
	return nil
}

// toScreen maps a configured screen onto the display layer's type
func toScreen(name string, sc config.ScreenConfig) display.Screen {
	macros := make([]display.Macro, len(sc.Macros))
	for i, m := range sc.Macros {
		macros[i] = display.Macro{Name: m.Name, Value: m.Value}
	}
	return display.Screen{
		Name:   name,
		File:   sc.File,
		Macros: macros,
	}
}

// screenNames lists configured screens in stable order
func screenNames(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.Display.Screens))
	for name := range cfg.Display.Screens {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
