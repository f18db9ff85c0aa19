package container

import (
	"context"
	"io"
)

// Manager drives the container runtime CLI.
// Implementations must be safe for concurrent use.
type Manager interface {
	// Build builds an image from a tar context stream, writing the
	// runtime's progress output to output as it arrives.
	Build(ctx context.Context, cfg BuildConfig, output io.Writer) error

	// Save streams the image as a tarball to w.
	Save(ctx context.Context, tag string, w io.Writer) error

	// Run runs a container to completion and returns its combined
	// output. A non-zero exit is reported as an error.
	Run(ctx context.Context, cfg ContainerConfig) ([]byte, error)

	// ImageExists reports whether the image is present in the local store.
	ImageExists(ctx context.Context, tag string) (bool, error)
}
