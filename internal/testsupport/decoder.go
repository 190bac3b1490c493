package testsupport

import (
	"fmt"
	"path/filepath"

	"tonearm/internal/tags"
)

// TrackInfo is the scripted metadata a StubDecoder returns for one file,
// keyed by base name so fixtures stay readable in tests.
type TrackInfo struct {
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	Genre       string
	Date        string
	TrackNumber string
	Artwork     []byte
	Duration    float64
	Fail        bool
}

// StubDecoder substitutes the taglib boundary in tests. Files without a
// scripted entry decode to an empty tag bag.
type StubDecoder struct {
	Tracks map[string]TrackInfo
}

// Extract returns the scripted raw tags for the file's base name.
func (d *StubDecoder) Extract(path string) (tags.RawTags, *float64, error) {
	info, ok := d.Tracks[filepath.Base(path)]
	if !ok {
		return make(tags.RawTags), nil, nil
	}
	if info.Fail {
		return nil, nil, fmt.Errorf("unreadable container %s", filepath.Base(path))
	}

	raw := make(tags.RawTags)
	setIf := func(key tags.Key, value string) {
		if value != "" {
			raw.SetText(tags.NSCommon, key, value)
		}
	}
	setIf(tags.KeyTitle, info.Title)
	setIf(tags.KeyArtist, info.Artist)
	setIf(tags.KeyAlbum, info.Album)
	setIf(tags.KeyAlbumArtist, info.AlbumArtist)
	setIf(tags.KeyGenre, info.Genre)
	setIf(tags.KeyDate, info.Date)
	setIf(tags.KeyTrackNumber, info.TrackNumber)
	if len(info.Artwork) > 0 {
		raw.Set(tags.NSCommon, tags.KeyArtwork, tags.Value{Blob: info.Artwork})
	}

	var duration *float64
	if info.Duration > 0 {
		duration = &info.Duration
	}
	return raw, duration, nil
}
