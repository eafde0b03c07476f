package catalog

import (
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/suiup/internal/apperr"
	"github.com/ZebulonRouseFrantzich/suiup/internal/version"
)

// Source identifies one upstream release catalog.
type Source struct {
	Owner string
	Repo  string
}

// ParseSource splits "owner/repo".
func ParseSource(s string) (Source, error) {
	owner, repo, ok := strings.Cut(s, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return Source{}, fmt.Errorf("invalid repository %q: expected owner/repo", s)
	}
	return Source{Owner: owner, Repo: repo}, nil
}

func (s Source) String() string {
	return s.Owner + "/" + s.Repo
}

// Key is the file-name-safe identity used for cache entries.
func (s Source) Key() string {
	return s.Owner + "_" + s.Repo
}

// Asset is a downloadable file attached to a release.
type Asset struct {
	Name string `json:"name"`
	URL  string `json:"browser_download_url"`
	Size int64  `json:"size"`
}

// Release is one entry of a repository's release listing.
type Release struct {
	TagName    string  `json:"tag_name"`
	Name       string  `json:"name"`
	Draft      bool    `json:"draft"`
	Prerelease bool    `json:"prerelease"`
	Assets     []Asset `json:"assets"`
}

// HasAsset reports whether any asset name contains token.
func (r Release) HasAsset(token string) bool {
	for _, a := range r.Assets {
		if strings.Contains(a.Name, token) {
			return true
		}
	}
	return false
}

// Companion returns the checksum file published next to asset, if any.
// A .sha256 companion is preferred over .md5.
func (r Release) Companion(asset Asset) (Asset, bool) {
	for _, ext := range []string{".sha256", ".md5"} {
		for _, a := range r.Assets {
			if a.Name == asset.Name+ext {
				return a, true
			}
		}
	}
	return Asset{}, false
}

// IsChecksum reports whether name is a companion checksum file.
func IsChecksum(name string) bool {
	return strings.HasSuffix(name, ".sha256") || strings.HasSuffix(name, ".md5")
}

// VersionToken is the substring identifying channel+version in asset names,
// e.g. "testnet-v1.39.3-". The trailing hyphen keeps v1.39.3 from matching
// v1.39.30.
func VersionToken(channel, ver string) string {
	return channel + "-" + version.Normalize(ver) + "-"
}

// FindByVersion returns the first release, in catalog order, that carries
// an asset for channel at ver.
func FindByVersion(releases []Release, channel, ver string) (Release, bool) {
	token := VersionToken(channel, ver)
	for _, r := range releases {
		if r.HasAsset(token) {
			return r, true
		}
	}
	return Release{}, false
}

// LatestForChannel returns the first release whose assets mention channel
// together with the version parsed from its first such asset.
func LatestForChannel(releases []Release, channel string) (Release, string, bool) {
	token := "-" + channel + "-"
	for _, r := range releases {
		for _, a := range r.Assets {
			if !strings.Contains(a.Name, token) {
				continue
			}
			if v, ok := version.FromAssetName(a.Name); ok {
				return r, v, true
			}
		}
	}
	return Release{}, "", false
}

// SelectAsset picks the single archive built for osToken/archToken.
// Checksum companions are ignored. Zero or several candidates is an error.
func SelectAsset(r Release, osToken, archToken string) (Asset, error) {
	platform := "-" + osToken + "-" + archToken
	var matches []Asset
	for _, a := range r.Assets {
		if IsChecksum(a.Name) {
			continue
		}
		if strings.Contains(a.Name, platform+".") || strings.HasSuffix(a.Name, platform) {
			matches = append(matches, a)
		}
	}
	if len(matches) != 1 {
		msg := fmt.Sprintf("Asset not found for %s-%s", osToken, archToken)
		if len(matches) > 1 {
			names := make([]string, len(matches))
			for i, m := range matches {
				names[i] = m.Name
			}
			msg += " (ambiguous: " + strings.Join(names, ", ") + ")"
		}
		return Asset{}, apperr.NotFound(msg, "")
	}
	return matches[0], nil
}

// ChannelsWithVersion lists the channels, other than exclude, that publish
// ver. Used to suggest alternatives when a version is missing.
func ChannelsWithVersion(releases []Release, channels []string, exclude, ver string) []string {
	var out []string
	for _, ch := range channels {
		if ch == exclude {
			continue
		}
		if _, ok := FindByVersion(releases, ch, ver); ok {
			out = append(out, ch)
		}
	}
	return out
}
