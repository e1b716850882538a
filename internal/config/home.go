package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv overrides the verdict home directory.
const HomeEnv = "VERDICT_HOME"

// homeDirName is the directory created under the chosen root.
const homeDirName = ".verdict"

// rootMarker marks a directory as the root for walk-up discovery.
const rootMarker = ".verdict-root"

// GetVerdictHome returns the verdict home directory.
// Priority order:
//  1. VERDICT_HOME environment variable (if set)
//  2. nearest ancestor of the working directory holding a .verdict-root marker
//  3. current working directory
//
// The directory is created if it doesn't exist.
func GetVerdictHome() (string, error) {
	return GetVerdictHomeWithRoot("")
}

// GetVerdictHomeWithRoot is GetVerdictHome with an explicit root that takes
// precedence over marker discovery.
func GetVerdictHomeWithRoot(root string) (string, error) {
	if home := os.Getenv(HomeEnv); home != "" {
		return ensureDir(home)
	}

	if root == "" {
		if found, err := findMarkedRoot(); err == nil {
			root = found
		}
	}

	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		root = cwd
	}

	return ensureDir(filepath.Join(root, homeDirName))
}

// findMarkedRoot walks up from the working directory looking for rootMarker.
func findMarkedRoot() (string, error) {
	current, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(current, rootMarker)); err == nil {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	return "", fmt.Errorf("no %s marker found", rootMarker)
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create verdict home directory: %w", err)
	}
	return dir, nil
}

// ConfigPath returns $VERDICT_HOME/config.yaml.
func ConfigPath(home string) string {
	return filepath.Join(home, "config.yaml")
}

// ResolvePaths fills empty path settings with locations under home.
func (c *Config) ResolvePaths(home string) {
	if c.LogDir == "" {
		c.LogDir = filepath.Join(home, "logs")
	}
	if c.History.DBPath == "" {
		c.History.DBPath = filepath.Join(home, "history", "analyses.db")
	}
}
