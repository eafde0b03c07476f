package binary

import (
	"bufio"
	"crypto/md5" //nolint:gosec // upstream publishes md5 companions
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZebulonRouseFrantzich/suiup/internal/apperr"
)

// Verifier checks downloaded files against companion checksum files.
type Verifier struct{}

// NewVerifier creates a new verifier
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Companion locates the checksum file next to path. It looks for
// <path>.sha256, <path>.md5 and finally path with its extension replaced
// by .md5. ok is false when none exists.
func (v *Verifier) Companion(path string) (companion string, method VerificationMethod, ok bool) {
	candidates := []struct {
		path   string
		method VerificationMethod
	}{
		{path + ".sha256", VerificationSHA256},
		{path + ".md5", VerificationMD5},
		{strings.TrimSuffix(path, filepath.Ext(path)) + ".md5", VerificationMD5},
	}
	for _, c := range candidates {
		if c.path == path {
			continue
		}
		if info, err := os.Stat(c.path); err == nil && info.Mode().IsRegular() {
			return c.path, c.method, true
		}
	}
	return "", VerificationNone, false
}

// Verify checks path against its companion. Without a companion it returns
// VerificationNone and no error. A mismatch is an integrity error.
func (v *Verifier) Verify(path string) (VerificationMethod, error) {
	companion, method, ok := v.Companion(path)
	if !ok {
		return VerificationNone, nil
	}

	expected, err := findChecksum(companion, filepath.Base(path))
	if err != nil {
		return method, err
	}
	actual, err := fileDigest(path, method)
	if err != nil {
		return method, fmt.Errorf("calculate checksum: %w", err)
	}

	if !strings.EqualFold(actual, expected) {
		return method, apperr.Integrity(
			fmt.Sprintf("%s check failed for %s: expected %s, got %s",
				method, filepath.Base(path), expected, actual),
			nil)
	}
	return method, nil
}

func fileDigest(path string, method VerificationMethod) (string, error) {
	var h hash.Hash
	switch method {
	case VerificationSHA256:
		h = sha256.New()
	case VerificationMD5:
		h = md5.New() //nolint:gosec
	default:
		return "", fmt.Errorf("unsupported checksum method %s", method)
	}

	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	if _, err := io.Copy(h, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// findChecksum reads the expected digest for filename from a companion file.
// Accepted forms are a bare digest, or "digest  filename" lines where the
// filename may carry a path or a leading '*'.
func findChecksum(checksumPath, filename string) (string, error) {
	file, err := os.Open(checksumPath)
	if errors.Is(err, fs.ErrNotExist) {
		return "", apperr.Integrity("checksum file "+checksumPath+" disappeared", err)
	}
	if err != nil {
		return "", fmt.Errorf("open checksum file: %w", err)
	}
	defer file.Close()

	var bare string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		switch len(parts) {
		case 0:
			continue
		case 1:
			if bare == "" {
				bare = parts[0]
			}
			continue
		}

		name := strings.TrimPrefix(parts[1], "*")
		if name == filename || filepath.Base(name) == filename {
			return parts[0], nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("scan checksum file: %w", err)
	}
	if bare != "" {
		return bare, nil
	}

	return "", apperr.Integrity(fmt.Sprintf("checksum not found for %s in %s", filename, checksumPath), nil)
}
