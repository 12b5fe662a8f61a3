package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joshdurbin/golinks/internal/domain"
)

const (
	// DataDirName is the per-user directory holding golinks state
	DataDirName = ".golinks"

	// DatabaseFileName is the store file inside the data directory
	DatabaseFileName = "links.db"

	// ConfigFileName is the optional YAML config inside the data directory
	ConfigFileName = "config.yaml"
)

// DefaultDataDir returns $HOME/.golinks
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%w: cannot determine home directory: %v", domain.ErrStorageUnavailable, err)
	}
	return filepath.Join(home, DataDirName), nil
}

// EnsureDataDir creates dir if it does not exist yet
func EnsureDataDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: cannot create %s: %v", domain.ErrStorageUnavailable, dir, err)
	}
	return nil
}
