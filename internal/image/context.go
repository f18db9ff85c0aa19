package image

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/opencontainers/go-digest"
)

// ErrMissingArtifact indicates a file the spec copies into the image is
// absent from the build context directory.
var ErrMissingArtifact = errors.New("missing build artifact")

// CheckArtifacts verifies every artifact the spec copies exists in dir.
func (s Spec) CheckArtifacts(dir string) error {
	var errs []error
	for _, a := range s.Artifacts {
		path := filepath.Join(dir, a.Source)
		info, err := os.Stat(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s (expected at %s)", ErrMissingArtifact, a.Source, path))
			continue
		}
		if info.IsDir() {
			errs = append(errs, fmt.Errorf("%w: %s is a directory", ErrMissingArtifact, a.Source))
		}
	}
	return errors.Join(errs...)
}

// BuildContext assembles the tar stream fed to the runtime's build: the
// rendered Dockerfile followed by the artifacts read from dir. Header
// metadata is pinned so identical inputs produce identical bytes.
func (s Spec) BuildContext(dir string) ([]byte, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	if err := writeEntry(tw, "Dockerfile", []byte(s.Dockerfile())); err != nil {
		return nil, err
	}
	for _, a := range s.Artifacts {
		data, err := os.ReadFile(filepath.Join(dir, a.Source))
		if err != nil {
			return nil, fmt.Errorf("read artifact %s: %w", a.Source, err)
		}
		if err := writeEntry(tw, a.Source, data); err != nil {
			return nil, err
		}
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("close build context: %w", err)
	}
	return buf.Bytes(), nil
}

func writeEntry(tw *tar.Writer, name string, data []byte) error {
	hdr := &tar.Header{
		Name:    name,
		Mode:    0644,
		Size:    int64(len(data)),
		ModTime: time.Unix(0, 0),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write context header %s: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("write context entry %s: %w", name, err)
	}
	return nil
}

// ContextDigest fingerprints a build context. Recorded as an image
// label and in build events so a built image can be traced back to the
// exact recipe and artifacts that produced it.
func ContextDigest(context []byte) digest.Digest {
	return digest.FromBytes(context)
}
