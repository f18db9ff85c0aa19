package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/8ryn/tomoscan/internal/container"
	"github.com/8ryn/tomoscan/internal/events"
	"github.com/8ryn/tomoscan/internal/history"
	"github.com/8ryn/tomoscan/internal/verify"
)

// VerifyOptions holds flags for the verify command
type VerifyOptions struct {
	Runtime string // Container runtime override (docker, podman)
	Probe   bool   // Run the image and inspect the session namespace
	JSON    bool   // Emit newline-delimited JSON events
}

// NewVerifyCmd creates the verify command
func NewVerifyCmd(app *App) *cobra.Command {
	opts := VerifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify [image...]",
		Short: "Check built images against their recipes",
		Long: `Verify exports each built image and checks the baked-in metadata and
files: working directory, start command, identifying labels, and the
copied configuration and setup scripts.

--probe additionally starts a container, loads the setup script, and
confirms the expected devices and run engine appear in the session
namespace. The probe needs the script's control-system dependencies
reachable, so it is off by default.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunVerify(cmd.Context(), args, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Runtime, "runtime", "", "Container runtime (docker, podman; default: auto-detect)")
	cmd.Flags().BoolVar(&opts.Probe, "probe", false, "Run the image and check the setup script's namespace")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Emit newline-delimited JSON events on stdout")

	return cmd
}

// RunVerify checks the named images, or the full catalog
func (a *App) RunVerify(ctx context.Context, names []string, opts VerifyOptions, stdout io.Writer) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	logger := a.newLogger(cfg)

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

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	handler := NewSignalHandler(cancel, logger)
	handler.Start()
	defer handler.Stop()

	bus := events.NewBus(256)
	defer bus.Close()

	jsonMode := events.IsJSONMode(opts.JSON)
	if jsonMode {
		emitter := events.NewJSONEmitter(os.Stdout)
		bus.Subscribe(events.JSONEmitterHandler(emitter))
	}

	store := a.openHistory(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	manager := container.NewCLIManager(runtime)
	verifier := verify.NewVerifier(manager, bus, logger)
	styles := newReportStyles()

	failed := 0
	for _, spec := range specs {
		tag := spec.Tag(cfg.Images.TagPrefix)

		start := time.Now()
		report, err := verifier.Verify(ctx, spec, tag, opts.Probe)
		if err != nil {
			return err
		}

		status := history.StatusOK
		detail := tag
		if !report.Passed() {
			failed++
			status = history.StatusFailed
			detail = describeFailures(report)
		}
		record(store, logger, history.Record{
			Kind:     history.KindVerify,
			Subject:  spec.Name,
			Runtime:  runtime,
			Status:   status,
			Detail:   detail,
			Duration: time.Since(start),
		})

		if !jsonMode {
			renderReport(stdout, report, styles)
		}
	}

	if failed > 0 {
		return fmt.Errorf("verification failed for %d of %d image(s)", failed, len(specs))
	}
	return nil
}

// reportStyles color the rendered verification report
type reportStyles struct {
	header lipgloss.Style
	pass   lipgloss.Style
	fail   lipgloss.Style
	detail lipgloss.Style
}

func newReportStyles() reportStyles {
	return reportStyles{
		header: lipgloss.NewStyle().Bold(true),
		pass:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		fail:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		detail: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// renderReport writes one image's checks as a ✓/✗ list
func renderReport(w io.Writer, report *verify.Report, styles reportStyles) {
	fmt.Fprintf(w, "%s\n", styles.header.Render(fmt.Sprintf("Verifying %s", report.Tag)))

	for _, check := range report.Checks {
		if check.OK {
			fmt.Fprintf(w, "  %s %s\n", styles.pass.Render("✓"), check.Name)
			continue
		}
		fmt.Fprintf(w, "  %s %s  %s\n", styles.fail.Render("✗"), check.Name, styles.detail.Render(check.Detail))
	}

	if report.Passed() {
		fmt.Fprintf(w, "%s\n\n", styles.pass.Render(fmt.Sprintf("OK (%d checks)", len(report.Checks))))
		return
	}
	fmt.Fprintf(w, "%s\n\n", styles.fail.Render(fmt.Sprintf("FAILED (%d of %d checks)", len(report.Failed()), len(report.Checks))))
}

// describeFailures summarizes failed check names for the ledger
func describeFailures(report *verify.Report) string {
	failed := report.Failed()
	names := make([]string, 0, len(failed))
	for _, check := range failed {
		names = append(names, check.Name)
	}
	return "failed: " + strings.Join(names, ", ")
}
