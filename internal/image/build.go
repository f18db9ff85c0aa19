package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/8ryn/tomoscan/internal/container"
	"github.com/8ryn/tomoscan/internal/events"
)

// BuildOptions control how the builder assembles and tags images.
type BuildOptions struct {
	// ContextDir holds the artifact files the specs copy into images.
	ContextDir string
	// TagPrefix namespaces the produced tags, e.g. "tomoscan".
	TagPrefix string
	// NoCache forces the runtime to rebuild every layer.
	NoCache bool
}

// BuildResult describes one completed image build.
type BuildResult struct {
	Image         string
	Tag           string
	ContextDigest string
	Duration      time.Duration
}

// Builder renders specs and drives the container runtime to build them.
type Builder struct {
	manager container.Manager
	events  *events.Bus
	logger  hclog.Logger
	opts    BuildOptions
}

// NewBuilder creates a builder. The bus may be nil when no one is
// listening; the logger falls back to the default if nil.
func NewBuilder(manager container.Manager, bus *events.Bus, logger hclog.Logger, opts BuildOptions) *Builder {
	if logger == nil {
		logger = hclog.Default()
	}
	return &Builder{
		manager: manager,
		events:  bus,
		logger:  logger,
		opts:    opts,
	}
}

// Build processes a single spec: validates it, assembles the build
// context, and runs the runtime build to completion.
func (b *Builder) Build(ctx context.Context, spec Spec) (*BuildResult, error) {
	start := time.Now()

	if err := spec.Validate(); err != nil {
		b.emitFailed(spec.Name, err)
		return nil, err
	}
	if err := spec.CheckArtifacts(b.opts.ContextDir); err != nil {
		b.emitFailed(spec.Name, err)
		return nil, err
	}

	buildContext, err := spec.BuildContext(b.opts.ContextDir)
	if err != nil {
		b.emitFailed(spec.Name, err)
		return nil, err
	}
	contextDigest := ContextDigest(buildContext).String()

	tag := spec.Tag(b.opts.TagPrefix)
	steps := spec.Steps()
	b.logger.Info("building image", "image", spec.Name, "tag", tag, "steps", steps)
	b.logger.Debug("build context assembled", "image", spec.Name, "bytes", len(buildContext), "digest", contextDigest)

	if b.events != nil {
		b.events.Emit(events.NewEvent(events.BuildStarted, spec.Name).WithPayload(map[string]any{
			"tag":            tag,
			"steps":          steps,
			"context_digest": contextDigest,
		}))
	}

	cfg := container.BuildConfig{
		Tag:     tag,
		Context: bytes.NewReader(buildContext),
		Labels: map[string]string{
			ocispec.AnnotationCreated:  start.UTC().Format(time.RFC3339),
			ocispec.AnnotationRevision: contextDigest,
		},
		NoCache: b.opts.NoCache,
	}

	output := newStepWriter(spec.Name, b.events)
	if err := b.manager.Build(ctx, cfg, output); err != nil {
		output.Flush()
		b.emitFailed(spec.Name, err)
		return nil, err
	}
	output.Flush()

	result := &BuildResult{
		Image:         spec.Name,
		Tag:           tag,
		ContextDigest: contextDigest,
		Duration:      time.Since(start),
	}
	b.logger.Info("image built", "image", spec.Name, "tag", tag, "duration", result.Duration)

	if b.events != nil {
		b.events.Emit(events.NewEvent(events.BuildCompleted, spec.Name).WithPayload(map[string]any{
			"tag":         tag,
			"duration_ms": result.Duration.Milliseconds(),
		}))
	}
	return result, nil
}

// BuildAll builds the given specs in order. A failed build does not
// stop the ones after it; all failures come back joined.
func (b *Builder) BuildAll(ctx context.Context, specs []Spec) ([]BuildResult, error) {
	var results []BuildResult
	var errs []error
	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		result, err := b.Build(ctx, spec)
		if err != nil {
			errs = append(errs, fmt.Errorf("build %s: %w", spec.Name, err))
			continue
		}
		results = append(results, *result)
	}
	return results, errors.Join(errs...)
}

func (b *Builder) emitFailed(image string, err error) {
	b.logger.Error("image build failed", "image", image, "error", err)
	if b.events != nil {
		b.events.Emit(events.NewEvent(events.BuildFailed, image).WithError(err))
	}
}

// stepRe matches the step banners both runtimes print: docker's
// "Step 1/6 :" and podman's "STEP 1/6:". BuildKit output has no such
// banners and passes through without step numbers.
var stepRe = regexp.MustCompile(`(?i)^step (\d+)/(\d+)`)

// stepWriter splits runtime build output into lines and emits each as a
// BuildStep event, tagging lines that open a numbered step.
type stepWriter struct {
	image  string
	events *events.Bus
	buffer bytes.Buffer
}

func newStepWriter(image string, bus *events.Bus) *stepWriter {
	return &stepWriter{image: image, events: bus}
}

func (w *stepWriter) Write(p []byte) (int, error) {
	w.buffer.Write(p)

	for {
		data := w.buffer.Bytes()
		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			break
		}
		line := string(bytes.TrimRight(data[:idx], "\r"))
		w.buffer.Next(idx + 1)
		w.emitLine(line)
	}

	return len(p), nil
}

// Flush emits any trailing output not terminated by a newline.
func (w *stepWriter) Flush() {
	if w.buffer.Len() > 0 {
		w.emitLine(string(bytes.TrimRight(w.buffer.Bytes(), "\r")))
		w.buffer.Reset()
	}
}

func (w *stepWriter) emitLine(line string) {
	if w.events == nil || line == "" {
		return
	}
	e := events.NewEvent(events.BuildStep, w.image).WithPayload(map[string]any{
		"line": line,
	})
	if m := stepRe.FindStringSubmatch(line); m != nil {
		step, _ := strconv.Atoi(m[1])
		total, _ := strconv.Atoi(m[2])
		e = e.WithStep(step).WithPayload(map[string]any{
			"line":  line,
			"total": total,
		})
	}
	w.events.Emit(e)
}

var _ io.Writer = (*stepWriter)(nil)
