package artwork

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"tonearm/internal/hasher"
)

// cacheExtension is the fixed extension for cached artwork files. The cache
// is content-addressed, so the name carries identity and the extension is
// cosmetic.
const cacheExtension = ".jpg"

// Cache stores artwork bytes content-addressed under a flat directory.
// Identical bytes map to the same file, deduplicating artwork shared across
// releases. Concurrent writers racing on one digest produce the same final
// file, so no locking is needed.
type Cache struct {
	dir string
}

// NewCache returns a cache rooted at dir. The directory is created lazily
// on first store.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// Dir returns the cache root directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Store writes the image into the cache and returns its cache-relative
// path. Idempotent: when a file for the same content already exists nothing
// is rewritten and the same path is returned.
func (c *Cache) Store(img []byte) (string, error) {
	if len(img) == 0 {
		return "", errors.New("empty image")
	}

	name := hasher.DigestBytes(img) + cacheExtension
	target := filepath.Join(c.dir, name)

	if _, err := os.Stat(target); err == nil {
		return name, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("stat cached artwork: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create artwork cache dir: %w", err)
	}
	if err := os.WriteFile(target, img, 0o644); err != nil {
		return "", fmt.Errorf("write cached artwork: %w", err)
	}
	return name, nil
}

// Exists reports whether a previously recorded cache reference still
// resolves to a file on disk.
func (c *Cache) Exists(relPath string) bool {
	if relPath == "" {
		return false
	}
	info, err := os.Stat(filepath.Join(c.dir, relPath))
	return err == nil && !info.IsDir()
}
