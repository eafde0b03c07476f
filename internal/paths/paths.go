// Package paths resolves the directories suiup reads and writes.
//
// A Layout is computed once per process from the environment and handed to
// every component, so nothing below cmd/ consults environment variables for
// locations.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	appName = "suiup"

	// EnvDefaultBinDir overrides the directory promoted binaries are copied to.
	EnvDefaultBinDir = "SUIUP_DEFAULT_BIN_DIR"

	installedFileName = "installed_binaries.json"
	defaultFileName   = "default_version.json"
	settingsFileName  = "suiup.lua"
)

// Layout holds the resolved base directories.
type Layout struct {
	DataDir       string
	ConfigDir     string
	CacheDir      string
	DefaultBinDir string
}

// Env abstracts environment lookup so resolution is testable.
type Env struct {
	Getenv func(string) string
	GOOS   string
	Home   string
}

// FromEnv resolves the layout for the running process.
func FromEnv() (Layout, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Layout{}, fmt.Errorf("get home directory: %w", err)
	}
	return Resolve(Env{Getenv: os.Getenv, GOOS: runtime.GOOS, Home: home})
}

// Resolve computes a Layout from env. XDG variables are honoured on every
// Unix-like platform; Windows uses LOCALAPPDATA and APPDATA.
func Resolve(env Env) (Layout, error) {
	if env.Getenv == nil {
		return Layout{}, errors.New("paths: nil Getenv")
	}

	var l Layout
	if env.GOOS == "windows" {
		local := env.Getenv("LOCALAPPDATA")
		roaming := env.Getenv("APPDATA")
		if local == "" || roaming == "" {
			return Layout{}, errors.New("LOCALAPPDATA and APPDATA must be set")
		}
		l.DataDir = filepath.Join(local, appName)
		l.CacheDir = filepath.Join(local, appName, "cache")
		l.ConfigDir = filepath.Join(roaming, appName)
		l.DefaultBinDir = filepath.Join(local, "bin")
	} else {
		if env.Home == "" {
			return Layout{}, errors.New("home directory is unknown")
		}
		l.DataDir = filepath.Join(xdg(env, "XDG_DATA_HOME", ".local", "share"), appName)
		l.ConfigDir = filepath.Join(xdg(env, "XDG_CONFIG_HOME", ".config"), appName)
		l.CacheDir = filepath.Join(xdg(env, "XDG_CACHE_HOME", ".cache"), appName)
		l.DefaultBinDir = filepath.Join(env.Home, ".local", "bin")
	}

	if dir := env.Getenv(EnvDefaultBinDir); dir != "" {
		l.DefaultBinDir = dir
	}
	return l, nil
}

func xdg(env Env, key string, fallback ...string) string {
	if v := env.Getenv(key); v != "" {
		return v
	}
	return filepath.Join(append([]string{env.Home}, fallback...)...)
}

// BinariesDir is the root of the version store.
func (l Layout) BinariesDir() string {
	return filepath.Join(l.DataDir, "binaries")
}

// ChannelDir is the version-store directory for a channel or branch.
func (l Layout) ChannelDir(channel string) string {
	return filepath.Join(l.BinariesDir(), channel)
}

// ReleasesDir holds downloaded release archives.
func (l Layout) ReleasesDir() string {
	return filepath.Join(l.CacheDir, "releases")
}

// CatalogDir holds cached release listings and their ETags.
func (l Layout) CatalogDir() string {
	return l.CacheDir
}

// InstalledFile is the InstalledBinaryStore document.
func (l Layout) InstalledFile() string {
	return filepath.Join(l.ConfigDir, installedFileName)
}

// DefaultFile is the DefaultBinaryStore document.
func (l Layout) DefaultFile() string {
	return filepath.Join(l.ConfigDir, defaultFileName)
}

// SettingsFile is the optional Lua settings file.
func (l Layout) SettingsFile() string {
	return filepath.Join(l.ConfigDir, settingsFileName)
}

// LockDir holds the command lock.
func (l Layout) LockDir() string {
	return filepath.Join(l.DataDir, "locks")
}

// JournalDir holds in-flight promotion journal entries.
func (l Layout) JournalDir() string {
	return filepath.Join(l.DataDir, "journal")
}

// EnsureDirs creates every base directory that must exist before a command runs.
func (l Layout) EnsureDirs() error {
	for _, dir := range []string{l.ConfigDir, l.BinariesDir(), l.ReleasesDir(), l.DefaultBinDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
