package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"tonearm/internal/config"
)

// libraryVersion is recorded under the version bookkeeping key when a new
// database is created.
const libraryVersion = "1"

// Store manages library persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// querier is satisfied by both *sql.DB and *sql.Tx so reads and bookkeeping
// writes can run inside or outside a scan transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Open initializes or connects to the library database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	ctx := context.Background()
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := store.seedMeta(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Begin opens the single scan transaction. All entity mutation during a sync
// runs inside it; rollback leaves the library exactly as before.
func (s *Store) Begin(ctx context.Context) (*sql.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin library tx: %w", err)
	}
	return tx, nil
}

func (s *Store) seedMeta(ctx context.Context) error {
	if _, ok, err := getMeta(ctx, s.db, MetaVersion); err != nil {
		return err
	} else if ok {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if err := setMeta(ctx, s.db, MetaVersion, libraryVersion); err != nil {
		return err
	}
	return setMeta(ctx, s.db, MetaCreatedDate, now)
}

// GetMeta reads one bookkeeping value.
func (s *Store) GetMeta(ctx context.Context, key string) (string, bool, error) {
	return getMeta(ctx, s.db, key)
}

// MetaAll returns every bookkeeping key/value pair.
func (s *Store) MetaAll(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM library_meta ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("query library meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		meta[key] = value
	}
	return meta, rows.Err()
}

// TrackCount returns the number of indexed tracks.
func (s *Store) TrackCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM tracks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count tracks: %w", err)
	}
	return count, nil
}

// GetTrackByPath fetches a track by its library-relative path.
func (s *Store) GetTrackByPath(ctx context.Context, path string) (*Track, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE path = ?`, path)
	track, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get track by path: %w", err)
	}
	return track, nil
}

// ListTracks returns all tracks ordered by release and position.
func (s *Store) ListTracks(ctx context.Context) ([]*Track, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+trackColumns+` FROM tracks ORDER BY release_id, disc_number, track_number, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}

// ListReleases returns all releases with their primary artist name.
func (s *Store) ListReleases(ctx context.Context) ([]*Release, map[int64]string, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT r.id, r.title, r.year, r.genre, r.artwork_path, r.created_at, a.name
        FROM releases r
        LEFT JOIN artist_release ar ON ar.release_id = r.id AND ar.role = ?
        LEFT JOIN artists a ON a.id = ar.artist_id
        ORDER BY r.id`, RolePrimary)
	if err != nil {
		return nil, nil, fmt.Errorf("list releases: %w", err)
	}
	defer rows.Close()

	var releases []*Release
	primaryArtists := make(map[int64]string)
	for rows.Next() {
		var (
			release    Release
			year       sql.NullInt64
			genre      sql.NullString
			artwork    sql.NullString
			createdRaw string
			artist     sql.NullString
		)
		if err := rows.Scan(&release.ID, &release.Title, &year, &genre, &artwork, &createdRaw, &artist); err != nil {
			return nil, nil, err
		}
		if year.Valid {
			value := int(year.Int64)
			release.Year = &value
		}
		release.Genre = genre.String
		release.ArtworkPath = artwork.String
		if created, err := parseTimeString(createdRaw); err == nil {
			release.CreatedAt = created
		}
		releases = append(releases, &release)
		if artist.Valid {
			primaryArtists[release.ID] = artist.String
		}
	}
	return releases, primaryArtists, rows.Err()
}

// ListArtists returns all artists.
func (s *Store) ListArtists(ctx context.Context) ([]*Artist, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, sort_name, created_at FROM artists ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list artists: %w", err)
	}
	defer rows.Close()

	var artists []*Artist
	for rows.Next() {
		var (
			artist     Artist
			sortName   sql.NullString
			createdRaw string
		)
		if err := rows.Scan(&artist.ID, &artist.Name, &sortName, &createdRaw); err != nil {
			return nil, err
		}
		artist.SortName = sortName.String
		if created, err := parseTimeString(createdRaw); err == nil {
			artist.CreatedAt = created
		}
		artists = append(artists, &artist)
	}
	return artists, rows.Err()
}

// RecordPlay bumps a track's play count and stamps the last played time.
func (s *Store) RecordPlay(ctx context.Context, trackID int64) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE tracks SET play_count = play_count + 1, last_played_at = ?, updated_at = ? WHERE id = ?`,
		now, now, trackID,
	)
	if err != nil {
		return fmt.Errorf("record play: %w", err)
	}
	return requireRow(res, trackID)
}

// SetRating stores a track rating in the 0-5 range.
func (s *Store) SetRating(ctx context.Context, trackID int64, rating int) error {
	if rating < 0 || rating > 5 {
		return fmt.Errorf("rating %d out of range", rating)
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE tracks SET rating = ?, updated_at = ? WHERE id = ?`,
		rating, time.Now().UTC().Format(time.RFC3339Nano), trackID,
	)
	if err != nil {
		return fmt.Errorf("set rating: %w", err)
	}
	return requireRow(res, trackID)
}

// DeleteRelease removes a release; its tracks and artist links cascade.
func (s *Store) DeleteRelease(ctx context.Context, releaseID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM releases WHERE id = ?`, releaseID)
	if err != nil {
		return false, fmt.Errorf("delete release: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func requireRow(res sql.Result, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("track %d not found", id)
	}
	return nil
}

const trackColumns = "id, name, track_number, disc_number, path, digest, duration_seconds, release_id, play_count, last_played_at, rating, created_at, updated_at"

func scanTrack(scanner interface{ Scan(dest ...any) error }) (*Track, error) {
	var (
		track         Track
		trackNumber   sql.NullInt64
		discNumber    sql.NullInt64
		duration      sql.NullFloat64
		lastPlayedRaw sql.NullString
		rating        sql.NullInt64
		createdRaw    string
		updatedRaw    string
	)

	if err := scanner.Scan(
		&track.ID,
		&track.Name,
		&trackNumber,
		&discNumber,
		&track.Path,
		&track.Digest,
		&duration,
		&track.ReleaseID,
		&track.PlayCount,
		&lastPlayedRaw,
		&rating,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	if trackNumber.Valid {
		value := int(trackNumber.Int64)
		track.TrackNumber = &value
	}
	if discNumber.Valid {
		value := int(discNumber.Int64)
		track.DiscNumber = &value
	}
	if duration.Valid {
		track.Duration = &duration.Float64
	}
	if rating.Valid {
		value := int(rating.Int64)
		track.Rating = &value
	}
	if lastPlayedRaw.Valid {
		if played, err := parseTimeString(lastPlayedRaw.String); err == nil {
			track.LastPlayedAt = &played
		}
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		track.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		track.UpdatedAt = updated
	}
	return &track, nil
}

func getMeta(ctx context.Context, q querier, key string) (string, bool, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM library_meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get meta %s: %w", key, err)
	}
	return value, true, nil
}

func setMeta(ctx context.Context, q querier, key, value string) error {
	_, err := q.ExecContext(
		ctx,
		`INSERT INTO library_meta (key, value) VALUES (?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
