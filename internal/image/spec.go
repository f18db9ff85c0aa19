package image

import (
	"fmt"
	"strings"
)

// Artifact is one file copied into an image.
type Artifact struct {
	// Source is the file name within the build context directory.
	// Plain names only; the context is flat.
	Source string

	// Dest is the absolute path inside the image
	Dest string
}

// Spec describes one image tomoscan can build.
type Spec struct {
	// Name is the catalog name and the tag suffix (e.g., "interactive")
	Name string

	// BaseImage is the pinned base (e.g., "python:3.11")
	BaseImage string

	// Packages are pip-installed in a single layer, in this order
	Packages []string

	// Artifacts are copied into the image after package install
	Artifacts []Artifact

	// WorkDir is the working directory baked into the image
	WorkDir string

	// Command is the container start command in exec form
	Command []string

	// ProbeSymbols are names the setup script must leave in its
	// namespace; deep verification imports the script and checks them
	ProbeSymbols []string

	// Labels are static labels rendered into the Dockerfile.
	// Build-time labels (created, revision) are added by the builder.
	Labels map[string]string
}

// Tag returns the full image tag under the given prefix,
// e.g. "tomoscan/interactive:latest".
func (s Spec) Tag(prefix string) string {
	return prefix + "/" + s.Name + ":latest"
}

// SetupScript returns the script the container starts with: the last
// element of the start command.
func (s Spec) SetupScript() string {
	if len(s.Command) == 0 {
		return ""
	}
	return s.Command[len(s.Command)-1]
}

// Steps counts the Dockerfile instructions the spec renders to. Used to
// size build progress before the runtime reports its step banners.
func (s Spec) Steps() int {
	n := 1 // FROM
	n += len(s.Labels)
	if len(s.Packages) > 0 {
		n++
	}
	n += len(s.Artifacts)
	if s.WorkDir != "" {
		n++
	}
	if len(s.Command) > 0 {
		n++
	}
	return n
}

// Validate checks the spec is complete enough to build.
func (s Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("image spec has no name")
	}
	if s.BaseImage == "" {
		return fmt.Errorf("image %s: base image must not be empty", s.Name)
	}
	if s.WorkDir == "" {
		return fmt.Errorf("image %s: workdir must not be empty", s.Name)
	}
	if len(s.Command) == 0 {
		return fmt.Errorf("image %s: command must not be empty", s.Name)
	}

	seen := make(map[string]bool, len(s.Artifacts))
	for _, a := range s.Artifacts {
		if a.Source == "" {
			return fmt.Errorf("image %s: artifact source must not be empty", s.Name)
		}
		if strings.ContainsAny(a.Source, "/\\") {
			return fmt.Errorf("image %s: artifact source %q must be a plain file name", s.Name, a.Source)
		}
		if !strings.HasPrefix(a.Dest, "/") {
			return fmt.Errorf("image %s: artifact dest %q must be absolute", s.Name, a.Dest)
		}
		if seen[a.Source] {
			return fmt.Errorf("image %s: duplicate artifact source %q", s.Name, a.Source)
		}
		seen[a.Source] = true
	}

	return nil
}
