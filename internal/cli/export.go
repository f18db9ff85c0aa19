package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/8ryn/tomoscan/internal/container"
	"github.com/8ryn/tomoscan/internal/events"
	"github.com/8ryn/tomoscan/internal/export"
	"github.com/8ryn/tomoscan/internal/history"
	"github.com/8ryn/tomoscan/internal/image"
)

// ExportOptions holds flags for the export command
type ExportOptions struct {
	Runtime     string // Container runtime override (docker, podman)
	OutputDir   string // Archive directory override
	Compression string // Compression override (gzip, bzip2)
	JSON        bool   // Emit newline-delimited JSON events
}

// NewExportCmd creates the export command
func NewExportCmd(app *App) *cobra.Command {
	opts := ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export <image>",
		Short: "Archive a built image for offline transfer",
		Long: `Export writes a built image as a compressed archive for copying onto
beamline hosts without registry access. The reported digest covers the
archive file, so a checksum on the far side confirms the transfer.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunExport(cmd.Context(), args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Runtime, "runtime", "", "Container runtime (docker, podman; default: auto-detect)")
	cmd.Flags().StringVarP(&opts.OutputDir, "output-dir", "o", "", "Directory to write the archive into (default: current directory)")
	cmd.Flags().StringVar(&opts.Compression, "compression", "", "Archive compression: gzip or bzip2 (default: gzip)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Emit newline-delimited JSON events on stdout")

	return cmd
}

// RunExport archives one catalog image
func (a *App) RunExport(ctx context.Context, name string, opts ExportOptions, stdout io.Writer) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	logger := a.newLogger(cfg)

	spec, ok := image.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown image %q (known images: %s)", name, knownImages())
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

	bus := events.NewBus(64)
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

	exportOpts := export.Options{
		Dir:         cfg.Export.Dir,
		Compression: cfg.Export.Compression,
	}
	if opts.OutputDir != "" {
		exportOpts.Dir = opts.OutputDir
	}
	if opts.Compression != "" {
		exportOpts.Compression = opts.Compression
	}

	manager := container.NewCLIManager(runtime)
	exporter := export.NewExporter(manager, bus, logger)

	tag := spec.Tag(cfg.Images.TagPrefix)
	result, err := exporter.Write(ctx, tag, spec.Name, exportOpts)
	if err != nil {
		record(store, logger, history.Record{
			Kind:    history.KindExport,
			Subject: spec.Name,
			Runtime: runtime,
			Status:  history.StatusFailed,
			Detail:  err.Error(),
		})
		return err
	}

	record(store, logger, history.Record{
		Kind:     history.KindExport,
		Subject:  spec.Name,
		Runtime:  runtime,
		Status:   history.StatusOK,
		Detail:   fmt.Sprintf("%s (%s)", result.Path, result.Digest),
		Duration: result.Duration,
	})

	if !jsonMode {
		fmt.Fprintf(stdout, "Wrote %s (%s) in %s\n",
			result.Path,
			humanize.Bytes(uint64(result.Size)),
			result.Duration.Round(time.Millisecond))
		fmt.Fprintf(stdout, "  %s\n", result.Digest)
	}
	return nil
}
