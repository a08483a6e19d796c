package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFileNames are the configuration files searched for, in priority order.
var ConfigFileNames = []string{".paver.toml", ".paver.yaml", ".paver.yml"}

// StateDirName holds paver's working-tree state (lock file, run history).
const StateDirName = ".paver"

// HistoryDBName is the history database file inside the state directory.
const HistoryDBName = "history.db"

// FindConfig looks for a configuration file in start and each of its parents.
// Returns "" without error if none exists up to the filesystem root.
func FindConfig(start string) (string, error) {
	current, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", start, err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(current, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", nil
		}
		current = parent
	}
}

// Discover loads the configuration at explicit, or the nearest one above
// start when explicit is empty. Defaults are returned when nothing is found.
// The result is validated.
func Discover(start, explicit string) (*Config, error) {
	path := explicit
	if path == "" {
		found, err := FindConfig(start)
		if err != nil {
			return nil, err
		}
		path = found
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// StateDir returns <base>/.paver, creating it if needed.
func StateDir(base string) (string, error) {
	dir := filepath.Join(base, StateDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create state directory: %w", err)
	}
	return dir, nil
}

// HistoryDBPath returns the path of the verification history database.
func HistoryDBPath(base string) (string, error) {
	dir, err := StateDir(base)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, HistoryDBName), nil
}

// VerifyLockPath returns the path of the working-tree verification lock.
func VerifyLockPath(base string) (string, error) {
	dir, err := StateDir(base)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "verify.lock"), nil
}
