package spec

import (
	"strings"
)

// Kind describes how a binary is distributed upstream.
type Kind int

const (
	// KindReleaseArchive binaries ship as per-platform archives attached to
	// channel-tagged releases.
	KindReleaseArchive Kind = iota
	// KindStandalone binaries are single files under a fixed base URL.
	KindStandalone
	// KindInstaller binaries have their own release catalog with v-prefixed
	// tags and bare executables as assets.
	KindInstaller
)

func (k Kind) String() string {
	switch k {
	case KindReleaseArchive:
		return "release archive"
	case KindStandalone:
		return "standalone"
	case KindInstaller:
		return "installer"
	default:
		return "unknown"
	}
}

// Binary describes one installable tool.
type Binary struct {
	Name string
	Kind Kind
	// Repo is the GitHub owner/repo used for releases and branch builds.
	Repo string
	// Debug reports whether release archives carry a <name>-debug build.
	Debug bool
}

// SourceURL is the git URL branch builds are compiled from.
func (b Binary) SourceURL() string {
	return "https://github.com/" + b.Repo
}

// Binary names.
const (
	Sui    = "sui"
	Walrus = "walrus"
	Mvr    = "mvr"
)

var binaries = []Binary{
	{Name: Sui, Kind: KindReleaseArchive, Repo: "MystenLabs/sui", Debug: true},
	{Name: Walrus, Kind: KindStandalone, Repo: "MystenLabs/walrus"},
	{Name: Mvr, Kind: KindInstaller, Repo: "MystenLabs/mvr"},
}

// Binaries returns every supported binary in display order.
func Binaries() []Binary {
	out := make([]Binary, len(binaries))
	copy(out, binaries)
	return out
}

// Lookup finds a binary by name, case-insensitively.
func Lookup(name string) (Binary, bool) {
	for _, b := range binaries {
		if strings.EqualFold(b.Name, name) {
			return b, true
		}
	}
	return Binary{}, false
}
