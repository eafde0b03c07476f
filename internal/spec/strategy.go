package spec

// Strategy is the closed set of ways a spec can be installed. Match it with
// a type switch over NightlyStrategy, StandaloneStrategy, InstallerStrategy
// and ReleaseStrategy.
type Strategy interface {
	strategy()
}

// NightlyStrategy builds the binary from a source branch.
type NightlyStrategy struct {
	Branch    string
	SourceURL string
}

// StandaloneStrategy downloads a single file from a fixed base URL.
type StandaloneStrategy struct{}

// InstallerStrategy delegates to the binary's own release catalog.
type InstallerStrategy struct {
	Repo string
}

// ReleaseStrategy downloads and extracts a channel-tagged release archive.
type ReleaseStrategy struct {
	Repo string
}

func (NightlyStrategy) strategy()    {}
func (StandaloneStrategy) strategy() {}
func (InstallerStrategy) strategy()  {}
func (ReleaseStrategy) strategy()    {}

// Strategy resolves the install strategy for s. A nightly branch always
// wins; otherwise the binary's kind decides.
func (s BinarySpec) Strategy() Strategy {
	if s.NightlyBranch != "" {
		return NightlyStrategy{Branch: s.NightlyBranch, SourceURL: s.Binary.SourceURL()}
	}
	switch s.Binary.Kind {
	case KindStandalone:
		return StandaloneStrategy{}
	case KindInstaller:
		return InstallerStrategy{Repo: s.Binary.Repo}
	default:
		return ReleaseStrategy{Repo: s.Binary.Repo}
	}
}
