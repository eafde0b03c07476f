package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZebulonRouseFrantzich/suiup/internal/transaction"
)

// Entry is a cached release listing and the validator it was served with.
type Entry struct {
	ETag      string
	Body      []byte
	FetchedAt time.Time
}

// Cache persists release listings keyed by source identity.
type Cache interface {
	// Load returns the entry for key. ok is false when nothing usable is cached.
	Load(key string) (entry Entry, ok bool, err error)
	Store(key string, entry Entry) error
}

// Clock provides the time stamped on stored entries.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// TestClock implements Clock with a fixed time for testing.
type TestClock struct {
	FixedTime time.Time
}

// Now returns the fixed time.
func (t TestClock) Now() time.Time {
	return t.FixedTime
}

// DiskCache stores each listing as releases_<key>.txt with its ETag in
// etag_<key>.txt. The body file's modification time records FetchedAt.
type DiskCache struct {
	dir   string
	clock Clock
}

// NewDiskCache returns a cache rooted at dir. A nil clock means RealClock.
func NewDiskCache(dir string, clock Clock) *DiskCache {
	if clock == nil {
		clock = RealClock{}
	}
	return &DiskCache{dir: dir, clock: clock}
}

func (c *DiskCache) bodyPath(key string) string {
	return filepath.Join(c.dir, "releases_"+key+".txt")
}

func (c *DiskCache) etagPath(key string) string {
	return filepath.Join(c.dir, "etag_"+key+".txt")
}

// Load implements Cache. A listing without its ETag file, or the reverse,
// counts as a miss.
func (c *DiskCache) Load(key string) (Entry, bool, error) {
	body, err := os.ReadFile(c.bodyPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("read cached releases: %w", err)
	}
	etag, err := os.ReadFile(c.etagPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("read cached etag: %w", err)
	}

	entry := Entry{ETag: strings.TrimSpace(string(etag)), Body: body}
	if info, err := os.Stat(c.bodyPath(key)); err == nil {
		entry.FetchedAt = info.ModTime()
	}
	return entry, entry.ETag != "", nil
}

// Store implements Cache.
func (c *DiskCache) Store(key string, entry Entry) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := transaction.WriteFileAtomic(c.bodyPath(key), entry.Body, 0o644); err != nil {
		return fmt.Errorf("write cached releases: %w", err)
	}
	if err := transaction.WriteFileAtomic(c.etagPath(key), []byte(entry.ETag), 0o644); err != nil {
		return fmt.Errorf("write cached etag: %w", err)
	}
	now := c.clock.Now()
	if err := os.Chtimes(c.bodyPath(key), now, now); err != nil {
		return fmt.Errorf("stamp cached releases: %w", err)
	}
	return nil
}
