// Package verify checks built images against their specs: config
// metadata baked in correctly, artifact files present in the layers,
// and optionally a live probe that loads the setup script in a
// container and inspects the session namespace.
package verify

import (
	"context"
	"fmt"
	"os"
	"slices"

	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/tarball"
	"github.com/hashicorp/go-hclog"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/8ryn/tomoscan/internal/container"
	"github.com/8ryn/tomoscan/internal/events"
	"github.com/8ryn/tomoscan/internal/image"
)

// Check is one verification result.
type Check struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// Report collects the checks run against one image.
type Report struct {
	Image  string  `json:"image"`
	Tag    string  `json:"tag"`
	Checks []Check `json:"checks"`
}

// Passed reports whether every check succeeded.
func (r *Report) Passed() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// Failed returns the checks that did not pass.
func (r *Report) Failed() []Check {
	var failed []Check
	for _, c := range r.Checks {
		if !c.OK {
			failed = append(failed, c)
		}
	}
	return failed
}

// Verifier inspects built images through the container runtime.
type Verifier struct {
	manager container.Manager
	events  *events.Bus
	logger  hclog.Logger
}

// NewVerifier creates a verifier. The bus may be nil when no one is
// listening; the logger falls back to the default if nil.
func NewVerifier(manager container.Manager, bus *events.Bus, logger hclog.Logger) *Verifier {
	if logger == nil {
		logger = hclog.Default()
	}
	return &Verifier{
		manager: manager,
		events:  bus,
		logger:  logger,
	}
}

// Verify checks the built image tagged tag against its spec: working
// directory, start command, identifying labels, and the artifact files
// in the image filesystem. With probe set it additionally runs the
// image once and inspects the setup script's namespace. A failed check
// lands in the report; only runtime trouble (image export, tar
// parsing) comes back as an error.
func (v *Verifier) Verify(ctx context.Context, spec image.Spec, tag string, probe bool) (*Report, error) {
	report := &Report{Image: spec.Name, Tag: tag}

	if v.events != nil {
		v.events.Emit(events.NewEvent(events.VerifyStarted, spec.Name).WithPayload(map[string]any{
			"tag": tag,
		}))
	}

	exists, err := v.manager.ImageExists(ctx, tag)
	if err != nil {
		return nil, v.fail(spec.Name, fmt.Errorf("check image %s: %w", tag, err))
	}
	if !exists {
		v.addCheck(report, "image", false, fmt.Sprintf("%s not found in local store (build it first)", tag))
		v.finish(report)
		return report, nil
	}
	v.addCheck(report, "image", true, tag)

	img, cleanup, err := v.exportImage(ctx, tag)
	if err != nil {
		return nil, v.fail(spec.Name, err)
	}
	defer cleanup()

	cfgFile, err := img.ConfigFile()
	if err != nil {
		return nil, v.fail(spec.Name, fmt.Errorf("read config of %s: %w", tag, err))
	}
	cfg := cfgFile.Config

	v.addCheck(report, "workdir", cfg.WorkingDir == spec.WorkDir,
		fmt.Sprintf("want %s, image has %q", spec.WorkDir, cfg.WorkingDir))
	v.addCheck(report, "command", slices.Equal(cfg.Cmd, spec.Command),
		fmt.Sprintf("want %v, image has %v", spec.Command, cfg.Cmd))

	title := cfg.Labels[ocispec.AnnotationTitle]
	revision := cfg.Labels[ocispec.AnnotationRevision]
	v.addCheck(report, "labels", title == spec.Name && revision != "",
		fmt.Sprintf("title=%q revision=%q", title, revision))

	files, err := layerFiles(img)
	if err != nil {
		return nil, v.fail(spec.Name, fmt.Errorf("read layers of %s: %w", tag, err))
	}
	for _, a := range spec.Artifacts {
		v.addCheck(report, "file:"+a.Dest, files[normalizePath(a.Dest)],
			fmt.Sprintf("copied from %s", a.Source))
	}

	if probe {
		if err := v.probe(ctx, report, spec, tag); err != nil {
			return nil, v.fail(spec.Name, err)
		}
	}

	v.finish(report)
	return report, nil
}

// exportImage saves the image to a temporary tarball and opens it for
// inspection. The returned cleanup removes the tarball.
func (v *Verifier) exportImage(ctx context.Context, tag string) (img v1.Image, cleanup func(), err error) {
	f, err := os.CreateTemp("", "tomoscan-verify-*.tar")
	if err != nil {
		return nil, nil, fmt.Errorf("create temp image file: %w", err)
	}
	path := f.Name()
	cleanup = func() { os.Remove(path) }

	if err := v.manager.Save(ctx, tag, f); err != nil {
		f.Close()
		cleanup()
		return nil, nil, fmt.Errorf("export %s: %w", tag, err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("flush %s export: %w", tag, err)
	}

	v.logger.Debug("image exported for inspection", "tag", tag, "path", path)

	parsed, err := tarball.ImageFromPath(path, nil)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("parse %s export: %w", tag, err)
	}
	return parsed, cleanup, nil
}

func (v *Verifier) addCheck(report *Report, name string, ok bool, detail string) {
	check := Check{Name: name, OK: ok, Detail: detail}
	report.Checks = append(report.Checks, check)

	v.logger.Debug("verify check", "image", report.Image, "check", name, "ok", ok)
	if v.events != nil {
		v.events.Emit(events.NewEvent(events.VerifyCheck, report.Image).WithPayload(map[string]any{
			"check":  name,
			"ok":     ok,
			"detail": detail,
		}))
	}
}

func (v *Verifier) finish(report *Report) {
	failed := report.Failed()
	if len(failed) == 0 {
		v.logger.Info("image verified", "image", report.Image, "tag", report.Tag, "checks", len(report.Checks))
		if v.events != nil {
			v.events.Emit(events.NewEvent(events.VerifyPassed, report.Image).WithPayload(map[string]any{
				"checks": len(report.Checks),
			}))
		}
		return
	}

	names := make([]string, len(failed))
	for i, c := range failed {
		names[i] = c.Name
	}
	v.logger.Error("image verification failed", "image", report.Image, "failed", names)
	if v.events != nil {
		v.events.Emit(events.NewEvent(events.VerifyFailed, report.Image).WithPayload(map[string]any{
			"checks": len(report.Checks),
			"failed": names,
		}))
	}
}

func (v *Verifier) fail(imageName string, err error) error {
	v.logger.Error("image verification failed", "image", imageName, "error", err)
	if v.events != nil {
		v.events.Emit(events.NewEvent(events.VerifyFailed, imageName).WithError(err))
	}
	return err
}
