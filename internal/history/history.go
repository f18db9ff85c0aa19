// Package history keeps a local ledger of tool invocations: builds,
// display launches, verifications, and exports. This is operator
// telemetry for the tomoscan tool itself, not experiment data.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Record kinds.
const (
	KindBuild   = "build"
	KindDisplay = "display"
	KindVerify  = "verify"
	KindExport  = "export"
)

// Record statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Record is one ledger entry.
type Record struct {
	// ID is a ULID, assigned on append if empty
	ID string

	// Kind is one of the Kind constants
	Kind string

	// Subject is what was acted on: an image or screen name
	Subject string

	// Runtime is the container runtime used, empty for display launches
	Runtime string

	// Status is one of the Status constants
	Status string

	// Detail carries the tag, locator, archive path, or error text
	Detail string

	// Duration is how long the invocation took
	Duration time.Duration

	// CreatedAt is when the invocation finished, assigned on append if zero
	CreatedAt time.Time
}

// DefaultPath returns the ledger location under the user's state
// directory: $XDG_STATE_HOME/tomoscan/history.db, falling back to
// ~/.local/state.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "tomoscan", "history.db"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "state", "tomoscan", "history.db"), nil
}
