package display

import (
	"fmt"
	"os"
	"path/filepath"
)

// ExecutableDir returns the directory containing the running executable,
// with symlinks resolved. Screen files ship alongside the binary, so
// this is the default root for locators regardless of the caller's cwd.
func ExecutableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolve executable path: %w", err)
	}

	return filepath.Dir(resolved), nil
}

// ResolveDir picks the screens directory: explicit flag value first,
// then the configured directory, then the executable's own directory.
func ResolveDir(flagDir, configDir string) (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}
	if configDir != "" {
		return configDir, nil
	}
	return ExecutableDir()
}
