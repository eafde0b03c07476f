// Package config loads suiup's optional Lua settings file and provides the
// Logger interface components log through.
//
// Settings are evaluated in a sandboxed gopher-lua VM with a read-only
// platform table, so a settings file can branch on the host but cannot touch
// the filesystem or run commands.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Settings are the user-tunable knobs read from suiup.lua.
type Settings struct {
	GitHubToken    string
	DefaultBinDir  string
	HTTPTimeout    time.Duration
	Retries        int
	AssumeYes      bool
	DefaultChannel string
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout:    DefaultHTTPTimeout * time.Second,
		DefaultChannel: "testnet",
	}
}

// Validate checks value ranges.
func (s Settings) Validate() error {
	if s.HTTPTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", luaFieldHTTPTimeout, s.HTTPTimeout)
	}
	if s.Retries < 0 || s.Retries > 10 {
		return fmt.Errorf("%s must be between 0 and 10, got %d", luaFieldRetries, s.Retries)
	}
	switch s.DefaultChannel {
	case "testnet", "devnet", "mainnet":
	default:
		return fmt.Errorf("%s must be one of testnet, devnet, mainnet; got %q", luaFieldDefaultChannel, s.DefaultChannel)
	}
	if strings.ContainsRune(s.DefaultBinDir, 0) {
		return fmt.Errorf("%s contains a NUL byte", luaFieldDefaultBinDir)
	}
	return nil
}

// ApplyEnv overlays environment overrides onto s.
func (s Settings) ApplyEnv(getenv func(string) string) Settings {
	if token := getenv(EnvGitHubToken); token != "" {
		s.GitHubToken = token
	}
	return s
}
