package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// JPEGHeader is a minimal byte sequence carrying a valid JPEG signature.
var JPEGHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}

// PNGHeader is a minimal byte sequence carrying a valid PNG signature.
var PNGHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// WriteImage writes an image fixture whose leading bytes pass signature
// validation, followed by the trailing bytes to vary content.
func WriteImage(t testing.TB, path string, header []byte, trailing ...byte) {
	t.Helper()

	content := append(append([]byte{}, header...), trailing...)
	WriteFile(t, path, content)
}
