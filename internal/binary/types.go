package binary

import (
	"time"
)

// VerificationMethod indicates how a download was checked.
type VerificationMethod int

const (
	// VerificationNone means no companion checksum was published.
	VerificationNone VerificationMethod = iota
	// VerificationSHA256 means a .sha256 companion matched.
	VerificationSHA256
	// VerificationMD5 means a .md5 companion matched.
	VerificationMD5
)

// String returns the string representation of the verification method
func (v VerificationMethod) String() string {
	switch v {
	case VerificationSHA256:
		return "SHA256"
	case VerificationMD5:
		return "MD5"
	case VerificationNone:
		return "None"
	default:
		return "Unknown"
	}
}

// ProgressFunc receives download progress. total is 0 when the server did
// not announce a size.
type ProgressFunc func(name string, written, total int64)

// FetchOptions tunes a single download.
type FetchOptions struct {
	// ChecksumURL, when set, is fetched next to the destination before the
	// artifact so the result can be verified.
	ChecksumURL string
	// Force re-downloads even when a same-sized file is already present.
	Force bool
}

// DownloadResult contains information about a completed download
type DownloadResult struct {
	Path string
	// Cached is set when an existing file was reused.
	Cached       bool
	Bytes        int64
	Verified     VerificationMethod
	DownloadTime time.Duration
}

// BuildRequest describes a source build of one binary from a branch.
type BuildRequest struct {
	Name string
	// RepoURL is the git URL passed to cargo --git.
	RepoURL string
	Branch  string
	// Commit, when set, is built instead of the branch tip.
	Commit string
	Debug  bool
	// Root is the cargo --root directory; the executable lands in Root/bin.
	Root string
	// ExeSuffix is ".exe" on Windows.
	ExeSuffix string
}

// NightlyName is the executable name a branch build is renamed to.
func (r BuildRequest) NightlyName() string {
	if r.Debug {
		return r.Name + "-debug-nightly" + r.ExeSuffix
	}
	return r.Name + "-nightly" + r.ExeSuffix
}
