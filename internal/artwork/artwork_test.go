package artwork_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"tonearm/internal/artwork"
)

var (
	jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	pngBytes  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	gifBytes  = []byte{0x47, 0x49, 0x46, 0x38, 0x39, 0x61}
	bmpBytes  = []byte{0x42, 0x4D, 0x3A, 0x00}
)

func TestResolvePrefersEmbedded(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "cover.jpg"), jpegBytes)

	got := artwork.Resolve(pngBytes, dir)
	if !bytes.Equal(got, pngBytes) {
		t.Fatalf("expected embedded bytes, got %v", got)
	}
}

func TestResolveFallsBackToDirectoryCandidate(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "Folder.PNG"), pngBytes)

	got := artwork.Resolve(nil, dir)
	if !bytes.Equal(got, pngBytes) {
		t.Fatalf("expected directory candidate, got %v", got)
	}
}

func TestResolveRejectsBadSignature(t *testing.T) {
	dir := t.TempDir()
	// Right name and extension, wrong leading bytes.
	writeImage(t, filepath.Join(dir, "cover.jpg"), []byte("not an image"))

	if got := artwork.Resolve(nil, dir); got != nil {
		t.Fatalf("expected nil for invalid signature, got %v", got)
	}
}

func TestResolveIgnoresUnrelatedNames(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "liner-notes.jpg"), jpegBytes)

	if got := artwork.Resolve(nil, dir); got != nil {
		t.Fatalf("expected nil for non-candidate names, got %v", got)
	}
}

func TestResolveMissingDirectory(t *testing.T) {
	if got := artwork.Resolve(nil, filepath.Join(t.TempDir(), "absent")); got != nil {
		t.Fatalf("expected nil for unreadable directory, got %v", got)
	}
}

func TestValidSignatureFormats(t *testing.T) {
	for name, data := range map[string][]byte{
		"jpeg": jpegBytes,
		"png":  pngBytes,
		"gif":  gifBytes,
		"bmp":  bmpBytes,
	} {
		if !artwork.ValidSignature(data) {
			t.Fatalf("expected %s signature to validate", name)
		}
	}
	if artwork.ValidSignature([]byte{0x00, 0x01}) {
		t.Fatal("expected unknown signature to fail")
	}
	if artwork.ValidSignature(nil) {
		t.Fatal("expected empty bytes to fail")
	}
}

func TestCacheStoreIsIdempotent(t *testing.T) {
	cache := artwork.NewCache(filepath.Join(t.TempDir(), "artwork"))

	first, err := cache.Store(jpegBytes)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	second, err := cache.Store(jpegBytes)
	if err != nil {
		t.Fatalf("second Store: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical paths, got %q and %q", first, second)
	}

	entries, err := os.ReadDir(cache.Dir())
	if err != nil {
		t.Fatalf("read cache dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one cached file, got %d", len(entries))
	}
	if !cache.Exists(first) {
		t.Fatalf("expected Exists to report %q", first)
	}
}

func TestCacheDeduplicatesAcrossCallers(t *testing.T) {
	cache := artwork.NewCache(filepath.Join(t.TempDir(), "artwork"))

	a, err := cache.Store(pngBytes)
	if err != nil {
		t.Fatalf("Store a: %v", err)
	}
	b, err := cache.Store(gifBytes)
	if err != nil {
		t.Fatalf("Store b: %v", err)
	}
	if a == b {
		t.Fatal("distinct content should map to distinct cache files")
	}
}

func TestCacheExistsAfterExternalDelete(t *testing.T) {
	cache := artwork.NewCache(filepath.Join(t.TempDir(), "artwork"))
	rel, err := cache.Store(jpegBytes)
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := os.Remove(filepath.Join(cache.Dir(), rel)); err != nil {
		t.Fatalf("remove cached file: %v", err)
	}
	if cache.Exists(rel) {
		t.Fatal("expected Exists false after external delete")
	}
}

func TestCacheRejectsEmptyImage(t *testing.T) {
	cache := artwork.NewCache(t.TempDir())
	if _, err := cache.Store(nil); err == nil {
		t.Fatal("expected error for empty image")
	}
}

func writeImage(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
