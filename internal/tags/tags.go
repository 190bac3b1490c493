package tags

// Namespace identifies the tagging convention a raw value came from.
type Namespace string

const (
	// NSCommon holds the decoder's cross-format canonical properties.
	NSCommon Namespace = "common"
	// NSVorbis holds Vorbis-comment style fields (FLAC, Ogg).
	NSVorbis Namespace = "vorbis"
	// NSID3 holds ID3v2/iTunes frame fields (MP3, M4A).
	NSID3 Namespace = "id3"
)

// namespaceOrder fixes resolution priority: earlier namespaces win and later
// ones only fill fields still unset.
var namespaceOrder = []Namespace{NSCommon, NSVorbis, NSID3}

// Key names a logical metadata field inside a namespace.
type Key string

const (
	KeyTitle       Key = "title"
	KeyArtist      Key = "artist"
	KeyAlbum       Key = "album"
	KeyAlbumArtist Key = "album_artist"
	KeyGenre       Key = "genre"
	KeyDate        Key = "date"
	KeyTrackNumber Key = "track_number"
	KeyDiscNumber  Key = "disc_number"
	KeyArtwork     Key = "artwork"
)

// Value is a single raw tag value: textual for most fields, binary for
// embedded artwork and fixed-size numeric frames.
type Value struct {
	Text string
	Blob []byte
}

// RawTags is the heterogeneous bag of decoded tag values keyed by
// (namespace, field). Values the decoder cannot classify are never added.
type RawTags map[Namespace]map[Key]Value

// Set records a value under the given namespace and key.
func (r RawTags) Set(ns Namespace, key Key, value Value) {
	fields, ok := r[ns]
	if !ok {
		fields = make(map[Key]Value)
		r[ns] = fields
	}
	fields[key] = value
}

// SetText records a textual value under the given namespace and key.
func (r RawTags) SetText(ns Namespace, key Key, text string) {
	r.Set(ns, key, Value{Text: text})
}

func (r RawTags) lookup(ns Namespace, key Key) (Value, bool) {
	fields, ok := r[ns]
	if !ok {
		return Value{}, false
	}
	value, ok := fields[key]
	return value, ok
}

// Metadata is the canonical, format-independent record produced by Normalize.
// String fields use "" for absent; numeric fields use nil.
type Metadata struct {
	Title       string
	Artist      string
	Album       string
	AlbumArtist string
	Genre       string
	Year        *int
	TrackNumber *int
	DiscNumber  *int
	Duration    *float64
	Artwork     []byte
}
