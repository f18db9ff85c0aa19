package image

import (
	"archive/tar"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func writeArtifacts(t *testing.T, spec Spec) string {
	t.Helper()

	dir := t.TempDir()
	for _, a := range spec.Artifacts {
		path := filepath.Join(dir, a.Source)
		if err := os.WriteFile(path, []byte("content of "+a.Source+"\n"), 0644); err != nil {
			t.Fatalf("failed to write artifact: %v", err)
		}
	}
	return dir
}

func TestCheckArtifacts(t *testing.T) {
	spec := validSpec()
	dir := writeArtifacts(t, spec)

	if err := spec.CheckArtifacts(dir); err != nil {
		t.Errorf("expected artifacts to be present, got %v", err)
	}
}

func TestCheckArtifactsMissing(t *testing.T) {
	spec := validSpec()
	dir := t.TempDir()

	err := spec.CheckArtifacts(dir)
	if err == nil {
		t.Fatal("expected error for empty context dir")
	}
	if !errors.Is(err, ErrMissingArtifact) {
		t.Errorf("expected ErrMissingArtifact, got %v", err)
	}
	for _, a := range spec.Artifacts {
		if !bytes.Contains([]byte(err.Error()), []byte(a.Source)) {
			t.Errorf("expected error to name %s, got %q", a.Source, err.Error())
		}
	}
}

func TestBuildContext(t *testing.T) {
	spec := validSpec()
	dir := writeArtifacts(t, spec)

	context, err := spec.BuildContext(dir)
	if err != nil {
		t.Fatalf("failed to build context: %v", err)
	}

	tr := tar.NewReader(bytes.NewReader(context))
	var names []string
	contents := make(map[string]string)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read context tar: %v", err)
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("failed to read entry %s: %v", hdr.Name, err)
		}
		names = append(names, hdr.Name)
		contents[hdr.Name] = string(data)

		if hdr.Mode != 0644 {
			t.Errorf("expected mode 0644 for %s, got %o", hdr.Name, hdr.Mode)
		}
	}

	if len(names) != 3 {
		t.Fatalf("expected 3 entries, got %v", names)
	}
	if names[0] != "Dockerfile" {
		t.Errorf("expected Dockerfile first, got %q", names[0])
	}
	if contents["Dockerfile"] != spec.Dockerfile() {
		t.Error("expected Dockerfile entry to match rendered spec")
	}
	if contents["mongo_catalog.yml"] != "content of mongo_catalog.yml\n" {
		t.Errorf("unexpected artifact content: %q", contents["mongo_catalog.yml"])
	}
}

func TestBuildContextMissingArtifact(t *testing.T) {
	spec := validSpec()

	_, err := spec.BuildContext(t.TempDir())
	if err == nil {
		t.Fatal("expected error for missing artifact")
	}
}

func TestContextDigestDeterministic(t *testing.T) {
	spec := validSpec()
	dir := writeArtifacts(t, spec)

	first, err := spec.BuildContext(dir)
	if err != nil {
		t.Fatalf("failed to build context: %v", err)
	}
	second, err := spec.BuildContext(dir)
	if err != nil {
		t.Fatalf("failed to build context: %v", err)
	}

	if ContextDigest(first) != ContextDigest(second) {
		t.Error("expected identical digests for identical inputs")
	}

	if err := os.WriteFile(filepath.Join(dir, spec.Artifacts[0].Source), []byte("changed\n"), 0644); err != nil {
		t.Fatalf("failed to rewrite artifact: %v", err)
	}
	third, err := spec.BuildContext(dir)
	if err != nil {
		t.Fatalf("failed to build context: %v", err)
	}
	if ContextDigest(first) == ContextDigest(third) {
		t.Error("expected digest to change when an artifact changes")
	}
}
