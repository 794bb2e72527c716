// Package paths resolves configuration and data directory locations for
// the strata CLI.
package paths

import (
	"os"
	"path/filepath"
)

// CWD-relative directory names used when no override is active.
const (
	DefaultConfigDirName = ".strata"
	DefaultDataDirName   = ".strata-db"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "STRATA_CONFIG_DIR"
	EnvDataDir   = "STRATA_DATA_DIR"
)

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > STRATA_CONFIG_DIR env > $(CWD)/.strata.
// The result is always absolute.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultConfigDirName), nil
}

// ResolveDataDir returns the data directory following the precedence
// chain: flag > config.yaml data_dir > STRATA_DATA_DIR env >
// $(CWD)/.strata-db. The result is always absolute.
func ResolveDataDir(flag, configValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configValue != "" {
		return filepath.Abs(configValue)
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}
