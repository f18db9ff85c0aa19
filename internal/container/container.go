package container

import "io"

// BuildConfig specifies an image build from a tar context streamed on stdin.
type BuildConfig struct {
	// Tag is the full image tag (e.g., "tomoscan/interactive:latest")
	Tag string

	// Context is the build context tar stream
	Context io.Reader

	// Labels are attached to the image via --label flags
	Labels map[string]string

	// NoCache disables the layer cache
	NoCache bool
}

// ContainerConfig specifies container run parameters.
type ContainerConfig struct {
	// Image is the container image (e.g., "tomoscan/interactive:latest")
	Image string

	// Name is the container name (e.g., "tomoscan-verify-abc123")
	Name string

	// Env contains environment variables to set in the container
	Env map[string]string

	// Cmd is the command and arguments to run
	Cmd []string

	// WorkDir is the working directory inside the container
	WorkDir string

	// Remove deletes the container when it exits (--rm)
	Remove bool
}
