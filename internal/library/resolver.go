package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Resolver maps normalized metadata onto artist/release/track identities.
// Every operation runs inside the single scan transaction, so a rolled-back
// sync leaves no entities behind.
type Resolver struct {
	tx *sql.Tx
}

// NewResolver wraps the scan transaction.
func NewResolver(tx *sql.Tx) *Resolver {
	return &Resolver{tx: tx}
}

// TrackRef identifies already-indexed content during a scan.
type TrackRef struct {
	ID        int64
	Path      string
	ReleaseID int64
}

// FindTrackByDigest returns the indexed track carrying a content digest,
// or nil. Used for move/rename repair before metadata is ever decoded.
func (r *Resolver) FindTrackByDigest(ctx context.Context, digest string) (*TrackRef, error) {
	ref := &TrackRef{}
	err := r.tx.QueryRowContext(
		ctx,
		`SELECT id, path, release_id FROM tracks WHERE digest = ? LIMIT 1`,
		digest,
	).Scan(&ref.ID, &ref.Path, &ref.ReleaseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find track by digest: %w", err)
	}
	return ref, nil
}

// ResolveArtist returns the id for an exact artist name, creating the
// artist on first sight. Matching is case-sensitive.
func (r *Resolver) ResolveArtist(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, errors.New("artist name is empty")
	}

	var id int64
	err := r.tx.QueryRowContext(ctx, `SELECT id FROM artists WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lookup artist: %w", err)
	}

	res, err := r.tx.ExecContext(
		ctx,
		`INSERT INTO artists (name, created_at) VALUES (?, ?)`,
		name,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert artist %q: %w", name, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("artist insert id: %w", err)
	}
	return id, nil
}

// ResolveRelease returns the release matched by (title, primary artist),
// creating it on first sight. Year and genre are carried only at creation
// and never updated on later matches. The primary artist link is written as
// part of creation so subsequent lookups match. Reports whether a new
// release was created.
func (r *Resolver) ResolveRelease(ctx context.Context, title, primaryArtist string, year *int, genre string) (int64, bool, error) {
	if title == "" {
		return 0, false, errors.New("release title is empty")
	}

	artistID, err := r.ResolveArtist(ctx, primaryArtist)
	if err != nil {
		return 0, false, err
	}

	var id int64
	err = r.tx.QueryRowContext(
		ctx,
		`SELECT r.id FROM releases r
         JOIN artist_release ar ON ar.release_id = r.id
         WHERE r.title = ? AND ar.artist_id = ? AND ar.role = ?
         LIMIT 1`,
		title, artistID, RolePrimary,
	).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("lookup release: %w", err)
	}

	res, err := r.tx.ExecContext(
		ctx,
		`INSERT INTO releases (title, year, genre, created_at) VALUES (?, ?, ?, ?)`,
		title,
		nullableInt(year),
		nullableString(genre),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, false, fmt.Errorf("insert release %q: %w", title, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("release insert id: %w", err)
	}
	if err := r.LinkArtistToRelease(ctx, artistID, id, RolePrimary); err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// LinkArtistToTrack records a role credit against a track. Relinking the
// same (artist, track, role) triple is a no-op.
func (r *Resolver) LinkArtistToTrack(ctx context.Context, artistID, trackID int64, role Role) error {
	if !ValidRole(role) {
		return fmt.Errorf("invalid role %q", role)
	}
	_, err := r.tx.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO artist_track (artist_id, track_id, role) VALUES (?, ?, ?)`,
		artistID, trackID, role,
	)
	if err != nil {
		return fmt.Errorf("link artist to track: %w", err)
	}
	return nil
}

// LinkArtistToRelease records a role credit against a release. Relinking
// the same triple is a no-op.
func (r *Resolver) LinkArtistToRelease(ctx context.Context, artistID, releaseID int64, role Role) error {
	if !ValidRole(role) {
		return fmt.Errorf("invalid role %q", role)
	}
	_, err := r.tx.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO artist_release (artist_id, release_id, role) VALUES (?, ?, ?)`,
		artistID, releaseID, role,
	)
	if err != nil {
		return fmt.Errorf("link artist to release: %w", err)
	}
	return nil
}

// InsertTrack writes a new track row and returns its id.
func (r *Resolver) InsertTrack(ctx context.Context, track *Track) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := r.tx.ExecContext(
		ctx,
		`INSERT INTO tracks (
            name, track_number, disc_number, path, digest,
            duration_seconds, release_id, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		track.Name,
		nullableInt(track.TrackNumber),
		nullableInt(track.DiscNumber),
		track.Path,
		track.Digest,
		nullableFloat(track.Duration),
		track.ReleaseID,
		now,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("insert track %s: %w", track.Path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("track insert id: %w", err)
	}
	return id, nil
}

// UpdateTrackPath repairs a moved or renamed file: only the stored path and
// the modification timestamp change, so the track id and every relationship
// survive.
func (r *Resolver) UpdateTrackPath(ctx context.Context, trackID int64, path string) error {
	_, err := r.tx.ExecContext(
		ctx,
		`UPDATE tracks SET path = ?, updated_at = ? WHERE id = ?`,
		path,
		time.Now().UTC().Format(time.RFC3339Nano),
		trackID,
	)
	if err != nil {
		return fmt.Errorf("update track path: %w", err)
	}
	return nil
}

// ReleaseArtwork returns the stored artwork reference for a release.
func (r *Resolver) ReleaseArtwork(ctx context.Context, releaseID int64) (string, error) {
	var artwork sql.NullString
	err := r.tx.QueryRowContext(ctx, `SELECT artwork_path FROM releases WHERE id = ?`, releaseID).Scan(&artwork)
	if err != nil {
		return "", fmt.Errorf("release artwork: %w", err)
	}
	return artwork.String, nil
}

// SetReleaseArtwork attaches an artwork cache reference to a release.
func (r *Resolver) SetReleaseArtwork(ctx context.Context, releaseID int64, relPath string) error {
	_, err := r.tx.ExecContext(ctx, `UPDATE releases SET artwork_path = ? WHERE id = ?`, relPath, releaseID)
	if err != nil {
		return fmt.Errorf("set release artwork: %w", err)
	}
	return nil
}

// TrackCount counts tracks as visible inside the scan transaction.
func (r *Resolver) TrackCount(ctx context.Context) (int, error) {
	var count int
	if err := r.tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM tracks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count tracks: %w", err)
	}
	return count, nil
}

// SetMeta writes a bookkeeping value inside the scan transaction.
func (r *Resolver) SetMeta(ctx context.Context, key, value string) error {
	return setMeta(ctx, r.tx, key, value)
}

// GetMeta reads a bookkeeping value inside the scan transaction.
func (r *Resolver) GetMeta(ctx context.Context, key string) (string, bool, error) {
	return getMeta(ctx, r.tx, key)
}
