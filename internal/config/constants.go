package config

// Lua schema field names and globals
const (
	luaGlobalSuiup         = "suiup"
	luaFieldGitHubToken    = "github_token"
	luaFieldDefaultBinDir  = "default_bin_dir"
	luaFieldHTTPTimeout    = "http_timeout"
	luaFieldRetries        = "download_retries"
	luaFieldAssumeYes      = "assume_yes"
	luaFieldDefaultChannel = "default_channel"
)

// Environment variables that override settings.
const (
	EnvGitHubToken = "GITHUB_TOKEN"
	EnvLogLevel    = "SUIUP_LOG"
)

// DefaultHTTPTimeout bounds every upstream request when settings leave it unset.
const DefaultHTTPTimeout = 300
