package tags

import (
	"fmt"

	"go.senan.xyz/taglib"
)

// Decoder is the boundary to the audio-container metadata reader. Extract
// returns the raw tag bag and the duration in seconds (nil when unknown).
// Implementations must treat unclassifiable tags as ignorable, never fatal.
type Decoder interface {
	Extract(path string) (RawTags, *float64, error)
}

// TagLibDecoder reads tags through the sandboxed taglib bindings.
type TagLibDecoder struct{}

// namespacedKeys maps the flat taglib property space into the closed
// namespace x field space the normalizer resolves over. The canonical
// taglib constants form the common set; leftover Vorbis variants and raw
// ID3 frame names are classified under their own conventions.
var namespacedKeys = []struct {
	ns    Namespace
	key   Key
	names []string
}{
	{NSCommon, KeyTitle, []string{taglib.Title}},
	{NSCommon, KeyArtist, []string{taglib.Artist}},
	{NSCommon, KeyAlbum, []string{taglib.Album}},
	{NSCommon, KeyAlbumArtist, []string{taglib.AlbumArtist}},
	{NSCommon, KeyGenre, []string{taglib.Genre}},
	{NSCommon, KeyDate, []string{taglib.Date}},
	{NSCommon, KeyTrackNumber, []string{taglib.TrackNumber}},
	{NSCommon, KeyDiscNumber, []string{taglib.DiscNumber}},

	{NSVorbis, KeyAlbumArtist, []string{"ALBUM ARTIST"}},
	{NSVorbis, KeyDate, []string{"YEAR", "ORIGINALDATE", "RELEASEDATE"}},
	{NSVorbis, KeyTrackNumber, []string{"TRACK"}},
	{NSVorbis, KeyDiscNumber, []string{"DISC"}},

	{NSID3, KeyTitle, []string{"TIT2"}},
	{NSID3, KeyArtist, []string{"TPE1"}},
	{NSID3, KeyAlbum, []string{"TALB"}},
	{NSID3, KeyAlbumArtist, []string{"TPE2"}},
	{NSID3, KeyGenre, []string{"TCON"}},
	{NSID3, KeyDate, []string{"TDRC", "TYER"}},
	{NSID3, KeyTrackNumber, []string{"TRCK"}},
	{NSID3, KeyDiscNumber, []string{"TPOS"}},
}

// Extract reads tags, audio properties, and embedded artwork from the file.
func (TagLibDecoder) Extract(path string) (RawTags, *float64, error) {
	decoded, err := taglib.ReadTags(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read tags %s: %w", path, err)
	}

	raw := make(RawTags)
	for _, mapping := range namespacedKeys {
		for _, name := range mapping.names {
			if value := firstValue(decoded, name); value != "" {
				raw.SetText(mapping.ns, mapping.key, value)
				break
			}
		}
	}

	var duration *float64
	if properties, propErr := taglib.ReadProperties(path); propErr == nil && properties.Length > 0 {
		seconds := properties.Length.Seconds()
		duration = &seconds
	}

	// Embedded artwork is optional; a read failure just means none.
	if img, imgErr := taglib.ReadImage(path); imgErr == nil && len(img) > 0 {
		raw.Set(NSCommon, KeyArtwork, Value{Blob: img})
	}

	return raw, duration, nil
}

func firstValue(decoded map[string][]string, name string) string {
	for _, value := range decoded[name] {
		if value != "" {
			return value
		}
	}
	return ""
}
