package library

import "time"

// Role is the relationship an artist holds against a track or release.
type Role string

const (
	RolePrimary  Role = "primary"
	RoleFeatured Role = "featured"
	RoleRemixer  Role = "remixer"
	RoleProducer Role = "producer"
	RoleComposer Role = "composer"
)

var validRoles = map[Role]struct{}{
	RolePrimary:  {},
	RoleFeatured: {},
	RoleRemixer:  {},
	RoleProducer: {},
	RoleComposer: {},
}

// ValidRole reports whether the role belongs to the closed role set.
func ValidRole(role Role) bool {
	_, ok := validRoles[role]
	return ok
}

// FallbackArtistName is credited when a track carries no artist tag.
const FallbackArtistName = "Unknown Artist"

// FallbackAlbumTitle is used when a track carries no album tag.
const FallbackAlbumTitle = "Unknown Album"

// Track is one indexed audio file. Path is library-relative and unique;
// Digest identifies the content independent of path and is deliberately not
// unique, though move repair normally collapses duplicates.
type Track struct {
	ID           int64
	Name         string
	TrackNumber  *int
	DiscNumber   *int
	Path         string
	Digest       string
	Duration     *float64
	ReleaseID    int64
	PlayCount    int
	LastPlayedAt *time.Time
	Rating       *int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Release is an album-level grouping, matched by (title, primary artist).
// Immutable after creation except for artwork attachment.
type Release struct {
	ID          int64
	Title       string
	Year        *int
	Genre       string
	ArtworkPath string
	CreatedAt   time.Time
}

// Artist is a uniquely named credit target, immutable after creation.
type Artist struct {
	ID        int64
	Name      string
	SortName  string
	CreatedAt time.Time
}

// Bookkeeping keys persisted in library_meta.
const (
	MetaVersion     = "version"
	MetaCreatedDate = "created_date"
	MetaLastScan    = "last_scan"
	MetaTotalTracks = "total_tracks"
)
