// Package platform detects the host OS and architecture and maps them onto
// the tokens upstream release assets use (ubuntu/macos/windows and
// x86_64/aarch64/arm64).
//
// Linux distribution details come from gopsutil and are informational only;
// asset selection never depends on them.
package platform

import "context"

// Release asset OS tokens.
const (
	TokenUbuntu  = "ubuntu"
	TokenMacOS   = "macos"
	TokenWindows = "windows"
)

// Release asset architecture tokens.
const (
	TokenX86_64  = "x86_64"
	TokenAarch64 = "aarch64"
	TokenArm64   = "arm64"
)

// Info contains platform detection information.
type Info struct {
	OS       string // "linux", "darwin", "windows"
	Arch     string // "amd64", "arm64" (normalized)
	ArchRaw  string // original GOARCH
	Platform string // distro ID (Linux only, e.g., "ubuntu", "arch")
	Version  string // distro version (Linux only, e.g., "22.04")
}

// IsLinux returns true if the platform is Linux.
func (i *Info) IsLinux() bool {
	return i.OS == "linux"
}

// IsMacOS returns true if the platform is macOS.
func (i *Info) IsMacOS() bool {
	return i.OS == "darwin"
}

// IsWindows returns true if the platform is Windows.
func (i *Info) IsWindows() bool {
	return i.OS == "windows"
}

// IsARM64 returns true if the architecture is arm64.
func (i *Info) IsARM64() bool {
	return i.Arch == "arm64"
}

// ReleaseOS returns the OS token used in release asset names.
// Every Linux distribution maps to "ubuntu", the only Linux build published.
func (i *Info) ReleaseOS() string {
	switch i.OS {
	case "darwin":
		return TokenMacOS
	case "windows":
		return TokenWindows
	default:
		return TokenUbuntu
	}
}

// ReleaseArch returns the architecture token used in release asset names.
// Apple Silicon assets say arm64 while Linux ones say aarch64.
func (i *Info) ReleaseArch() string {
	if i.Arch == "arm64" {
		if i.IsMacOS() {
			return TokenArm64
		}
		return TokenAarch64
	}
	return TokenX86_64
}

// ExeSuffix returns ".exe" on Windows and "" elsewhere.
func (i *Info) ExeSuffix() string {
	if i.IsWindows() {
		return ".exe"
	}
	return ""
}

// Executable appends the platform's executable suffix to name.
func (i *Info) Executable(name string) string {
	return name + i.ExeSuffix()
}

// Detector is the interface for platform detection.
type Detector interface {
	Detect(ctx context.Context) (*Info, error)
}

// StaticDetector returns a fixed Info. Useful when the platform is already
// known or must be pinned, as in tests.
type StaticDetector struct {
	Info *Info
}

// Detect returns a copy of the configured Info.
func (s StaticDetector) Detect(ctx context.Context) (*Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info := *s.Info
	return &info, nil
}
