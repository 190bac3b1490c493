package library_test

import (
	"context"
	"database/sql"
	"testing"

	"tonearm/internal/library"
	"tonearm/internal/testsupport"
)

func beginResolver(t *testing.T) (*library.Store, *sql.Tx, *library.Resolver) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	tx, err := store.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})
	return store, tx, library.NewResolver(tx)
}

func TestResolveArtistCreatesOnceExactMatch(t *testing.T) {
	_, _, resolver := beginResolver(t)
	ctx := context.Background()

	first, err := resolver.ResolveArtist(ctx, "Foo")
	if err != nil {
		t.Fatalf("ResolveArtist: %v", err)
	}
	again, err := resolver.ResolveArtist(ctx, "Foo")
	if err != nil {
		t.Fatalf("ResolveArtist again: %v", err)
	}
	if first != again {
		t.Fatalf("expected same artist id, got %d and %d", first, again)
	}

	// Matching is case-sensitive: a differently cased name is a new artist.
	other, err := resolver.ResolveArtist(ctx, "foo")
	if err != nil {
		t.Fatalf("ResolveArtist lowercase: %v", err)
	}
	if other == first {
		t.Fatal("expected differently cased name to create a new artist")
	}

	if _, err := resolver.ResolveArtist(ctx, ""); err == nil {
		t.Fatal("expected error for empty artist name")
	}
}

func TestResolveReleaseMatchesTitleAndPrimaryArtist(t *testing.T) {
	_, _, resolver := beginResolver(t)
	ctx := context.Background()

	year := 1994
	a, createdA, err := resolver.ResolveRelease(ctx, "A", "Foo", &year, "Rock")
	if err != nil {
		t.Fatalf("ResolveRelease A: %v", err)
	}
	if !createdA {
		t.Fatal("expected first resolution to create")
	}

	b, createdB, err := resolver.ResolveRelease(ctx, "B", "Foo", nil, "")
	if err != nil {
		t.Fatalf("ResolveRelease B: %v", err)
	}
	if !createdB || b == a {
		t.Fatalf("expected distinct release for new title, got %d created=%v", b, createdB)
	}

	aAgain, createdAgain, err := resolver.ResolveRelease(ctx, "A", "Foo", nil, "")
	if err != nil {
		t.Fatalf("ResolveRelease A again: %v", err)
	}
	if createdAgain || aAgain != a {
		t.Fatalf("expected reuse of release A, got %d created=%v", aAgain, createdAgain)
	}

	// Same title under a different primary artist is a different release.
	other, createdOther, err := resolver.ResolveRelease(ctx, "A", "Bar", nil, "")
	if err != nil {
		t.Fatalf("ResolveRelease A/Bar: %v", err)
	}
	if !createdOther || other == a {
		t.Fatalf("expected new release for different artist, got %d created=%v", other, createdOther)
	}
}

func TestLinkRolesAreIdempotentPerTriple(t *testing.T) {
	_, tx, resolver := beginResolver(t)
	ctx := context.Background()

	releaseID, _, err := resolver.ResolveRelease(ctx, "Album", "Foo", nil, "")
	if err != nil {
		t.Fatalf("ResolveRelease: %v", err)
	}
	artistID, err := resolver.ResolveArtist(ctx, "Foo")
	if err != nil {
		t.Fatalf("ResolveArtist: %v", err)
	}

	// The same triple twice must not error or duplicate.
	for i := 0; i < 2; i++ {
		if err := resolver.LinkArtistToRelease(ctx, artistID, releaseID, library.RolePrimary); err != nil {
			t.Fatalf("LinkArtistToRelease run %d: %v", i, err)
		}
	}
	// A different role against the same target is a distinct link.
	if err := resolver.LinkArtistToRelease(ctx, artistID, releaseID, library.RoleProducer); err != nil {
		t.Fatalf("LinkArtistToRelease producer: %v", err)
	}

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM artist_release WHERE artist_id = ? AND release_id = ?`,
		artistID, releaseID,
	).Scan(&count); err != nil {
		t.Fatalf("count links: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 links (primary, producer), got %d", count)
	}

	if err := resolver.LinkArtistToRelease(ctx, artistID, releaseID, library.Role("conductor")); err == nil {
		t.Fatal("expected invalid role rejected")
	}
}

func TestFindTrackByDigestAndPathRepair(t *testing.T) {
	store, tx, resolver := beginResolver(t)
	ctx := context.Background()

	if ref, err := resolver.FindTrackByDigest(ctx, "nope"); err != nil || ref != nil {
		t.Fatalf("expected no track, ref=%+v err=%v", ref, err)
	}

	releaseID, _, err := resolver.ResolveRelease(ctx, "Album", "Foo", nil, "")
	if err != nil {
		t.Fatalf("ResolveRelease: %v", err)
	}
	trackID, err := resolver.InsertTrack(ctx, &library.Track{
		Name:      "Song",
		Path:      "old/location.flac",
		Digest:    "digest-move",
		ReleaseID: releaseID,
	})
	if err != nil {
		t.Fatalf("InsertTrack: %v", err)
	}

	ref, err := resolver.FindTrackByDigest(ctx, "digest-move")
	if err != nil || ref == nil {
		t.Fatalf("FindTrackByDigest: ref=%+v err=%v", ref, err)
	}
	if ref.ID != trackID || ref.Path != "old/location.flac" || ref.ReleaseID != releaseID {
		t.Fatalf("unexpected track ref: %+v", ref)
	}

	if err := resolver.UpdateTrackPath(ctx, trackID, "new/location.flac"); err != nil {
		t.Fatalf("UpdateTrackPath: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	track, err := store.GetTrackByPath(ctx, "new/location.flac")
	if err != nil {
		t.Fatalf("GetTrackByPath: %v", err)
	}
	if track == nil || track.ID != trackID || track.Digest != "digest-move" {
		t.Fatalf("unexpected repaired track: %+v", track)
	}
}

func TestDuplicatePathRejectedByConstraint(t *testing.T) {
	_, _, resolver := beginResolver(t)
	ctx := context.Background()

	releaseID, _, err := resolver.ResolveRelease(ctx, "Album", "Foo", nil, "")
	if err != nil {
		t.Fatalf("ResolveRelease: %v", err)
	}
	if _, err := resolver.InsertTrack(ctx, &library.Track{
		Name: "One", Path: "same.flac", Digest: "d1", ReleaseID: releaseID,
	}); err != nil {
		t.Fatalf("InsertTrack: %v", err)
	}
	if _, err := resolver.InsertTrack(ctx, &library.Track{
		Name: "Two", Path: "same.flac", Digest: "d2", ReleaseID: releaseID,
	}); err == nil {
		t.Fatal("expected unique path constraint violation")
	}
}

func TestReleaseArtworkAttachment(t *testing.T) {
	_, _, resolver := beginResolver(t)
	ctx := context.Background()

	releaseID, _, err := resolver.ResolveRelease(ctx, "Album", "Foo", nil, "")
	if err != nil {
		t.Fatalf("ResolveRelease: %v", err)
	}

	current, err := resolver.ReleaseArtwork(ctx, releaseID)
	if err != nil {
		t.Fatalf("ReleaseArtwork: %v", err)
	}
	if current != "" {
		t.Fatalf("expected no artwork initially, got %q", current)
	}

	if err := resolver.SetReleaseArtwork(ctx, releaseID, "abc123.jpg"); err != nil {
		t.Fatalf("SetReleaseArtwork: %v", err)
	}
	current, err = resolver.ReleaseArtwork(ctx, releaseID)
	if err != nil {
		t.Fatalf("ReleaseArtwork after set: %v", err)
	}
	if current != "abc123.jpg" {
		t.Fatalf("expected artwork reference, got %q", current)
	}
}
