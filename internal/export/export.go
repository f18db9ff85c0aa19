// Package export archives built images for transfer onto beamline
// hosts without registry access: the runtime's save stream compressed
// to a file, with a digest for integrity checks on the far side.
package export

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dsnet/compress/bzip2"
	"github.com/hashicorp/go-hclog"
	"github.com/opencontainers/go-digest"

	"github.com/8ryn/tomoscan/internal/container"
	"github.com/8ryn/tomoscan/internal/events"
)

// Options control where and how the archive is written.
type Options struct {
	// Dir is the output directory.
	Dir string
	// Compression is "gzip" or "bzip2".
	Compression string
}

// Result describes a written archive.
type Result struct {
	Path     string
	Size     int64
	Digest   digest.Digest
	Duration time.Duration
}

// Exporter writes image archives through the container runtime.
type Exporter struct {
	manager container.Manager
	events  *events.Bus
	logger  hclog.Logger
}

// NewExporter creates an exporter. The bus may be nil when no one is
// listening; the logger falls back to the default if nil.
func NewExporter(manager container.Manager, bus *events.Bus, logger hclog.Logger) *Exporter {
	if logger == nil {
		logger = hclog.Default()
	}
	return &Exporter{
		manager: manager,
		events:  bus,
		logger:  logger,
	}
}

// Write saves the image tagged tag as a compressed archive named after
// the image, e.g. interactive.tar.gz. The digest in the result covers
// the archive bytes, so a plain sha256sum on the destination host can
// confirm the transfer.
func (e *Exporter) Write(ctx context.Context, tag, name string, opts Options) (*Result, error) {
	start := time.Now()

	ext, err := extension(opts.Compression)
	if err != nil {
		return nil, e.fail(name, err)
	}
	path := filepath.Join(opts.Dir, name+ext)

	exists, err := e.manager.ImageExists(ctx, tag)
	if err != nil {
		return nil, e.fail(name, fmt.Errorf("check image %s: %w", tag, err))
	}
	if !exists {
		return nil, e.fail(name, fmt.Errorf("image %s not found in local store (build it first)", tag))
	}

	e.logger.Info("exporting image", "image", name, "tag", tag, "path", path)
	if e.events != nil {
		e.events.Emit(events.NewEvent(events.ExportStarted, name).WithPayload(map[string]any{
			"tag":         tag,
			"path":        path,
			"compression": opts.Compression,
		}))
	}

	result, err := e.write(ctx, tag, path, opts.Compression)
	if err != nil {
		os.Remove(path)
		return nil, e.fail(name, err)
	}
	result.Duration = time.Since(start)

	e.logger.Info("image exported", "image", name, "path", result.Path, "bytes", result.Size, "duration", result.Duration)
	if e.events != nil {
		e.events.Emit(events.NewEvent(events.ExportCompleted, name).WithPayload(map[string]any{
			"path":        result.Path,
			"size":        result.Size,
			"digest":      result.Digest.String(),
			"duration_ms": result.Duration.Milliseconds(),
		}))
	}
	return result, nil
}

func (e *Exporter) write(ctx context.Context, tag, path, compression string) (*Result, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}

	digester := digest.Canonical.Digester()
	counter := &countingWriter{}
	sink := io.MultiWriter(f, digester.Hash(), counter)

	cw, err := compressor(sink, compression)
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := e.manager.Save(ctx, tag, cw); err != nil {
		cw.Close()
		f.Close()
		return nil, fmt.Errorf("save %s: %w", tag, err)
	}
	if err := cw.Close(); err != nil {
		f.Close()
		return nil, fmt.Errorf("flush compressed stream: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}

	return &Result{
		Path:   path,
		Size:   counter.n,
		Digest: digester.Digest(),
	}, nil
}

func (e *Exporter) fail(name string, err error) error {
	e.logger.Error("image export failed", "image", name, "error", err)
	if e.events != nil {
		e.events.Emit(events.NewEvent(events.ExportFailed, name).WithError(err))
	}
	return err
}

func compressor(w io.Writer, compression string) (io.WriteCloser, error) {
	switch compression {
	case "gzip":
		return gzip.NewWriter(w), nil
	case "bzip2":
		bw, err := bzip2.NewWriter(w, &bzip2.WriterConfig{Level: 9})
		if err != nil {
			return nil, fmt.Errorf("create bzip2 writer: %w", err)
		}
		return bw, nil
	default:
		return nil, fmt.Errorf("unsupported compression %q (use gzip or bzip2)", compression)
	}
}

func extension(compression string) (string, error) {
	switch compression {
	case "gzip":
		return ".tar.gz", nil
	case "bzip2":
		return ".tar.bz2", nil
	default:
		return "", fmt.Errorf("unsupported compression %q (use gzip or bzip2)", compression)
	}
}

type countingWriter struct {
	n int64
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}
