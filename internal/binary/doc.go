// Package binary obtains the executables suiup installs.
//
// Three pieces cover the distribution kinds:
//   - Downloader: HTTP download with size-based reuse, optional retries and
//     companion checksum verification
//   - Extractor: pulls one named executable out of a release .tgz
//   - Builder: compiles a branch with cargo for nightly installs
//
// Verification only ever uses checksums published next to an artifact
// (.sha256 or .md5). Artifacts without one are accepted as-is.
package binary
