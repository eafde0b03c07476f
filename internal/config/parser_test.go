package config

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ZebulonRouseFrantzich/suiup/internal/apperr"
	"github.com/ZebulonRouseFrantzich/suiup/internal/platform"
)

func TestParser_ParseString(t *testing.T) {
	luaCode := `
		suiup = {
			github_token = "ghp_test",
			default_bin_dir = "/opt/sui/bin",
			http_timeout = 30,
			download_retries = 2,
			assume_yes = true,
			default_channel = "devnet",
		}
	`

	got, err := NewParser(nil).ParseString(context.Background(), luaCode)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}

	want := Settings{
		GitHubToken:    "ghp_test",
		DefaultBinDir:  "/opt/sui/bin",
		HTTPTimeout:    30 * time.Second,
		Retries:        2,
		AssumeYes:      true,
		DefaultChannel: "devnet",
	}
	if got != want {
		t.Errorf("ParseString() = %+v, want %+v", got, want)
	}
}

func TestParser_ParseString_Defaults(t *testing.T) {
	got, err := NewParser(nil).ParseString(context.Background(), `-- nothing here`)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if got != DefaultSettings() {
		t.Errorf("ParseString() = %+v, want defaults", got)
	}
}

func TestParser_ParseString_Platform(t *testing.T) {
	luaCode := `
		suiup = {
			default_channel = platform.when(platform.is_macos, "mainnet") or "testnet",
		}
	`
	detector := platform.StaticDetector{Info: &platform.Info{OS: "darwin", Arch: "arm64"}}

	got, err := NewParser(detector).ParseString(context.Background(), luaCode)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	if got.DefaultChannel != "mainnet" {
		t.Errorf("DefaultChannel = %q, want mainnet", got.DefaultChannel)
	}
}

func TestParser_ParseString_Errors(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
	}{
		{"syntax", `suiup = {`, "Lua syntax error"},
		{"not_a_table", `suiup = "yes"`, "invalid 'suiup' table"},
		{"wrong_type", `suiup = { http_timeout = "fast" }`, "http_timeout: expected number"},
		{"bad_channel", `suiup = { default_channel = "localnet" }`, "default_channel must be one of"},
		{"negative_retries", `suiup = { download_retries = -1 }`, "download_retries must be between"},
		{"sandboxed", `suiup = { github_token = os.getenv("HOME") }`, "Lua syntax error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(nil).ParseString(context.Background(), tt.code)
			if err == nil {
				t.Fatal("expected error")
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestParser_ParseFile(t *testing.T) {
	dir := t.TempDir()
	parser := NewParser(nil)

	t.Run("missing_file", func(t *testing.T) {
		got, err := parser.ParseFile(context.Background(), filepath.Join(dir, "absent.lua"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != DefaultSettings() {
			t.Errorf("got %+v, want defaults", got)
		}
	})

	t.Run("invalid_file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.lua")
		if err := os.WriteFile(path, []byte(`suiup = {`), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := parser.ParseFile(context.Background(), path)
		if !errors.Is(err, apperr.ErrUserInput) {
			t.Fatalf("expected user input error, got %v", err)
		}
		if !strings.Contains(err.Error(), path) {
			t.Errorf("error %q should name %s", err.Error(), path)
		}
	})
}

func TestSettings_ApplyEnv(t *testing.T) {
	s := DefaultSettings()
	s.GitHubToken = "from-file"

	env := map[string]string{EnvGitHubToken: "from-env"}
	got := s.ApplyEnv(func(k string) string { return env[k] })
	if got.GitHubToken != "from-env" {
		t.Errorf("GitHubToken = %q, want from-env", got.GitHubToken)
	}

	got = s.ApplyEnv(func(string) string { return "" })
	if got.GitHubToken != "from-file" {
		t.Errorf("GitHubToken = %q, want from-file", got.GitHubToken)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug")
	logger.Debug("fetching releases", "repo", "MystenLabs/sui")

	out := buf.String()
	if !strings.Contains(out, "fetching releases") || !strings.Contains(out, "repo=MystenLabs/sui") {
		t.Errorf("unexpected log output: %q", out)
	}

	buf.Reset()
	NewLogger(&buf, "").Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at the default warn level, got %q", buf.String())
	}

	OrNop(nil).Error("discarded")
}
