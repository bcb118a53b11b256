package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// DefaultConfigPaths returns the OS-conventional search path for config.yaml,
// most specific first.
func DefaultConfigPaths() ([]string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("fetching executable path: %w", err)
	}
	exeDir := filepath.Dir(exePath)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("fetching user home directory: %w", err)
	}

	if runtime.GOOS == "windows" {
		return []string{
			exeDir,
			filepath.Join(homeDir, "AppData", "Roaming", "scsess"),
		}, nil
	}

	return []string{
		filepath.Join(homeDir, ".config", "scsess"),
		"/etc/scsess",
	}, nil
}
