package image

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/8ryn/tomoscan/internal/container"
	"github.com/8ryn/tomoscan/internal/events"
)

// fakeManager scripts runtime behavior for builder tests.
type fakeManager struct {
	buildOutput string
	buildErr    error

	builds []container.BuildConfig
}

func (f *fakeManager) Build(ctx context.Context, cfg container.BuildConfig, output io.Writer) error {
	f.builds = append(f.builds, cfg)
	if f.buildOutput != "" {
		fmt.Fprint(output, f.buildOutput)
	}
	return f.buildErr
}

func (f *fakeManager) Save(ctx context.Context, tag string, w io.Writer) error {
	return errors.New("not implemented")
}

func (f *fakeManager) Run(ctx context.Context, cfg container.ContainerConfig) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeManager) ImageExists(ctx context.Context, tag string) (bool, error) {
	return false, nil
}

func collectEvents(t *testing.T, bus *events.Bus) *[]events.Event {
	t.Helper()

	var collected []events.Event
	bus.Subscribe(func(e events.Event) {
		collected = append(collected, e)
	})
	return &collected
}

func testBuilder(manager container.Manager, bus *events.Bus, dir string) *Builder {
	return NewBuilder(manager, bus, hclog.NewNullLogger(), BuildOptions{
		ContextDir: dir,
		TagPrefix:  "tomoscan",
	})
}

func TestBuild(t *testing.T) {
	spec := validSpec()
	dir := writeArtifacts(t, spec)

	manager := &fakeManager{buildOutput: "Step 1/7 : FROM python:3.11\nsome layer output\nStep 2/7 : RUN pip install\n"}
	bus := events.NewBus(16)
	collected := collectEvents(t, bus)

	builder := testBuilder(manager, bus, dir)
	result, err := builder.Build(context.Background(), spec)
	if err != nil {
		t.Fatalf("failed to build: %v", err)
	}
	bus.Close()

	if result.Tag != "tomoscan/interactive:latest" {
		t.Errorf("expected tag %q, got %q", "tomoscan/interactive:latest", result.Tag)
	}
	if result.ContextDigest == "" {
		t.Error("expected a context digest")
	}

	if len(manager.builds) != 1 {
		t.Fatalf("expected 1 build, got %d", len(manager.builds))
	}
	cfg := manager.builds[0]
	if cfg.Tag != result.Tag {
		t.Errorf("expected build tag %q, got %q", result.Tag, cfg.Tag)
	}
	if cfg.Labels[ocispec.AnnotationRevision] != result.ContextDigest {
		t.Errorf("expected revision label %q, got %q", result.ContextDigest, cfg.Labels[ocispec.AnnotationRevision])
	}
	if created := cfg.Labels[ocispec.AnnotationCreated]; created == "" {
		t.Error("expected a created label")
	} else if _, err := time.Parse(time.RFC3339, created); err != nil {
		t.Errorf("expected RFC3339 created label, got %q", created)
	}

	got := *collected
	if len(got) == 0 {
		t.Fatal("expected events")
	}
	if got[0].Type != events.BuildStarted {
		t.Errorf("expected first event to be %s, got %s", events.BuildStarted, got[0].Type)
	}
	if got[len(got)-1].Type != events.BuildCompleted {
		t.Errorf("expected last event to be %s, got %s", events.BuildCompleted, got[len(got)-1].Type)
	}

	var steps []events.Event
	for _, e := range got {
		if e.Type == events.BuildStep {
			steps = append(steps, e)
		}
	}
	if len(steps) != 3 {
		t.Fatalf("expected 3 step events, got %d", len(steps))
	}
	if steps[0].Step == nil || *steps[0].Step != 1 {
		t.Errorf("expected first step event to carry step 1, got %v", steps[0].Step)
	}
	if steps[1].Step != nil {
		t.Errorf("expected plain output line to carry no step number, got %v", *steps[1].Step)
	}
	if steps[2].Step == nil || *steps[2].Step != 2 {
		t.Errorf("expected third step event to carry step 2, got %v", steps[2].Step)
	}
}

func TestBuildPodmanStepBanners(t *testing.T) {
	spec := validSpec()
	dir := writeArtifacts(t, spec)

	manager := &fakeManager{buildOutput: "STEP 1/7: FROM python:3.11\nSTEP 2/7: RUN pip install\n"}
	bus := events.NewBus(16)
	collected := collectEvents(t, bus)

	builder := testBuilder(manager, bus, dir)
	if _, err := builder.Build(context.Background(), spec); err != nil {
		t.Fatalf("failed to build: %v", err)
	}
	bus.Close()

	var steps []int
	for _, e := range *collected {
		if e.Type == events.BuildStep && e.Step != nil {
			steps = append(steps, *e.Step)
		}
	}
	if len(steps) != 2 || steps[0] != 1 || steps[1] != 2 {
		t.Errorf("expected podman banners to parse as steps 1,2, got %v", steps)
	}
}

func TestBuildRuntimeFailure(t *testing.T) {
	spec := validSpec()
	dir := writeArtifacts(t, spec)

	manager := &fakeManager{buildErr: errors.New("exit status 1")}
	bus := events.NewBus(16)
	collected := collectEvents(t, bus)

	builder := testBuilder(manager, bus, dir)
	_, err := builder.Build(context.Background(), spec)
	if err == nil {
		t.Fatal("expected build error")
	}
	bus.Close()

	got := *collected
	last := got[len(got)-1]
	if last.Type != events.BuildFailed {
		t.Errorf("expected last event to be %s, got %s", events.BuildFailed, last.Type)
	}
	if !strings.Contains(last.Error, "exit status 1") {
		t.Errorf("expected failure event to carry the error, got %q", last.Error)
	}
}

func TestBuildMissingArtifact(t *testing.T) {
	spec := validSpec()

	manager := &fakeManager{}
	builder := testBuilder(manager, nil, t.TempDir())

	_, err := builder.Build(context.Background(), spec)
	if !errors.Is(err, ErrMissingArtifact) {
		t.Fatalf("expected ErrMissingArtifact, got %v", err)
	}
	if len(manager.builds) != 0 {
		t.Error("expected no runtime build after artifact check failure")
	}
}

func TestBuildAll(t *testing.T) {
	okSpec := validSpec()
	dir := writeArtifacts(t, okSpec)

	badSpec := validSpec()
	badSpec.Name = "broken"
	badSpec.Artifacts = []Artifact{{Source: "not_there.py", Dest: "/app/not_there.py"}}

	manager := &fakeManager{}
	builder := testBuilder(manager, nil, dir)

	results, err := builder.BuildAll(context.Background(), []Spec{badSpec, okSpec})
	if err == nil {
		t.Fatal("expected joined error from failed build")
	}
	if !strings.Contains(err.Error(), "build broken") {
		t.Errorf("expected error to name the failed image, got %q", err.Error())
	}

	if len(results) != 1 {
		t.Fatalf("expected the build after the failure to run, got %d results", len(results))
	}
	if results[0].Image != "interactive" {
		t.Errorf("expected surviving result for interactive, got %q", results[0].Image)
	}
}

func TestBuildAllCancelled(t *testing.T) {
	spec := validSpec()
	dir := writeArtifacts(t, spec)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	manager := &fakeManager{}
	builder := testBuilder(manager, nil, dir)

	_, err := builder.BuildAll(ctx, []Spec{spec})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(manager.builds) != 0 {
		t.Error("expected no builds after cancellation")
	}
}
