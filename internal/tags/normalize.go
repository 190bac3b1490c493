package tags

import (
	"strconv"
	"strings"
	"time"
)

// Normalize collapses a raw tag bag into one canonical metadata record.
// Pure and deterministic: identical input always yields identical output.
// Per logical field the namespaces are consulted in fixed order and the
// first namespace supplying a usable value wins; later namespaces never
// overwrite. Malformed numeric or date values yield absent fields rather
// than errors.
func Normalize(raw RawTags, duration *float64) Metadata {
	meta := Metadata{Duration: duration}

	for _, ns := range namespaceOrder {
		if meta.Title == "" {
			meta.Title = textField(raw, ns, KeyTitle)
		}
		if meta.Artist == "" {
			meta.Artist = textField(raw, ns, KeyArtist)
		}
		if meta.Album == "" {
			meta.Album = textField(raw, ns, KeyAlbum)
		}
		if meta.AlbumArtist == "" {
			meta.AlbumArtist = textField(raw, ns, KeyAlbumArtist)
		}
		if meta.Genre == "" {
			meta.Genre = textField(raw, ns, KeyGenre)
		}
		if meta.Year == nil {
			meta.Year = yearField(raw, ns)
		}
		if meta.TrackNumber == nil {
			meta.TrackNumber = positionField(raw, ns, KeyTrackNumber)
		}
		if meta.DiscNumber == nil {
			meta.DiscNumber = positionField(raw, ns, KeyDiscNumber)
		}
		if meta.Artwork == nil {
			if value, ok := raw.lookup(ns, KeyArtwork); ok && len(value.Blob) > 0 {
				meta.Artwork = value.Blob
			}
		}
	}

	return meta
}

func textField(raw RawTags, ns Namespace, key Key) string {
	value, ok := raw.lookup(ns, key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value.Text)
}

func yearField(raw RawTags, ns Namespace) *int {
	value, ok := raw.lookup(ns, KeyDate)
	if !ok {
		return nil
	}
	return parseYear(value.Text)
}

func positionField(raw RawTags, ns Namespace, key Key) *int {
	value, ok := raw.lookup(ns, key)
	if !ok {
		return nil
	}
	if len(value.Blob) > 0 {
		return parsePositionBlob(value.Blob)
	}
	return parsePosition(value.Text)
}

// parsePosition handles "N" and "N/Total" forms. Anything that does not
// yield a positive integer before the separator is treated as absent.
func parsePosition(value string) *int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	if idx := strings.IndexByte(trimmed, '/'); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(trimmed))
	if err != nil || parsed <= 0 {
		return nil
	}
	return &parsed
}

// parsePositionBlob reads iTunes-style fixed binary position frames, where
// the number sits as a big-endian pair starting at the third byte.
func parsePositionBlob(blob []byte) *int {
	if len(blob) < 4 {
		return nil
	}
	parsed := int(blob[2])<<8 | int(blob[3])
	if parsed <= 0 {
		return nil
	}
	return &parsed
}

// parseYear derives a year from any date-like string by taking its first
// four characters, accepted only inside (1900, current year].
func parseYear(value string) *int {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) < 4 {
		return nil
	}
	parsed, err := strconv.Atoi(trimmed[:4])
	if err != nil {
		return nil
	}
	if parsed <= 1900 || parsed > time.Now().Year() {
		return nil
	}
	return &parsed
}
