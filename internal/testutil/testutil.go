// Package testutil provides common test helpers for the qaenv project.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TempConfigFile creates a temporary config.toml with the given content
// and returns its path. The file is automatically cleaned up.
func TempConfigFile(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("TempConfigFile: write failed: %v", err)
	}

	return path
}

// Getenv returns a getenv function backed by the given map.
// Missing keys read as the empty string, like os.Getenv.
func Getenv(vars map[string]string) func(string) string {
	return func(key string) string {
		return vars[key]
	}
}

// TempWorkDir creates an initialized QA working directory layout
// (workdir, cached/, matplotlibrc) under a temp dir and returns the workdir path.
func TempWorkDir(t *testing.T) string {
	t.Helper()

	workDir := filepath.Join(t.TempDir(), "qaworkdir")
	if err := os.MkdirAll(filepath.Join(workDir, "cached"), 0755); err != nil {
		t.Fatalf("TempWorkDir: mkdir failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(workDir, "matplotlibrc"), []byte("backend: agg\n"), 0644); err != nil {
		t.Fatalf("TempWorkDir: write failed: %v", err)
	}

	return workDir
}

// WriteCacheFile writes a file into the workdir's cached/ directory.
func WriteCacheFile(t *testing.T, workDir, name, content string) {
	t.Helper()

	path := filepath.Join(workDir, "cached", name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("WriteCacheFile: mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteCacheFile: write failed: %v", err)
	}
}

// ReadRC reads the matplotlibrc from the given workdir.
func ReadRC(t *testing.T, workDir string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(workDir, "matplotlibrc"))
	if err != nil {
		t.Fatalf("ReadRC: read failed: %v", err)
	}

	return string(data)
}
