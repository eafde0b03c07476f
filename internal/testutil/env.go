// Package testutil provides utilities for testing suiup in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZebulonRouseFrantzich/suiup/internal/paths"
)

// SetupTestEnv points every suiup location at a fresh temp directory and
// returns the resulting layout. Tests never touch the user's real stores.
//
// Cleanup is handled by t.TempDir and t.Setenv.
func SetupTestEnv(t *testing.T) paths.Layout {
	t.Helper()

	tmpDir := t.TempDir()

	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "data"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmpDir, "cache"))
	t.Setenv(paths.EnvDefaultBinDir, filepath.Join(tmpDir, "bin"))
	t.Setenv("GITHUB_TOKEN", "")

	layout := paths.Layout{
		DataDir:       filepath.Join(tmpDir, "data", "suiup"),
		ConfigDir:     filepath.Join(tmpDir, "config", "suiup"),
		CacheDir:      filepath.Join(tmpDir, "cache", "suiup"),
		DefaultBinDir: filepath.Join(tmpDir, "bin"),
	}
	if err := layout.EnsureDirs(); err != nil {
		t.Fatalf("failed to create test directories: %v", err)
	}
	return layout
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path string, content []byte, mode os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, content, mode); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
