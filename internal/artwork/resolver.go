package artwork

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

// candidateNames are the directory image base names accepted as release
// artwork, checked case-insensitively with the extension stripped.
var candidateNames = map[string]struct{}{
	"cover":    {},
	"folder":   {},
	"albumart": {},
	"front":    {},
	"album":    {},
	"artwork":  {},
}

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".bmp":  {},
}

var imageSignatures = [][]byte{
	{0xFF, 0xD8, 0xFF},       // JPEG
	{0x89, 0x50, 0x4E, 0x47}, // PNG
	{0x47, 0x49, 0x46, 0x38}, // GIF
	{0x47, 0x49, 0x46, 0x39}, // GIF (alternate)
	{0x42, 0x4D},             // BMP
}

// Resolve selects the best artwork bytes for a track: embedded artwork from
// its own metadata first, otherwise the first signature-valid candidate
// image in its containing directory. Returns nil when neither source yields
// valid bytes. Directory and candidate read errors are recovered locally.
func Resolve(embedded []byte, dir string) []byte {
	if ValidSignature(embedded) {
		return embedded
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if _, ok := imageExtensions[ext]; !ok {
			continue
		}
		base := strings.ToLower(strings.TrimSuffix(name, filepath.Ext(name)))
		if _, ok := candidateNames[base]; !ok {
			continue
		}
		data, readErr := os.ReadFile(filepath.Join(dir, name))
		if readErr != nil || !ValidSignature(data) {
			continue
		}
		return data
	}
	return nil
}

// ValidSignature reports whether the leading bytes match a known image
// file signature.
func ValidSignature(data []byte) bool {
	for _, sig := range imageSignatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}
