package library_test

import (
	"context"
	"testing"

	"tonearm/internal/library"
	"tonearm/internal/testsupport"
)

func TestOpenAppliesMigrationsAndSeedsMeta(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	version, ok, err := store.GetMeta(ctx, library.MetaVersion)
	if err != nil {
		t.Fatalf("GetMeta version: %v", err)
	}
	if !ok || version != "1" {
		t.Fatalf("expected seeded version, got %q ok=%v", version, ok)
	}
	created, ok, err := store.GetMeta(ctx, library.MetaCreatedDate)
	if err != nil {
		t.Fatalf("GetMeta created_date: %v", err)
	}
	if !ok || created == "" {
		t.Fatal("expected seeded created_date")
	}

	count, err := store.TrackCount(ctx)
	if err != nil {
		t.Fatalf("TrackCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty library, got %d tracks", count)
	}
}

func TestOpenIsIdempotentAcrossReopen(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	created1, _, err := store.GetMeta(ctx, library.MetaCreatedDate)
	if err != nil {
		t.Fatalf("GetMeta: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	created2, _, err := reopened.GetMeta(ctx, library.MetaCreatedDate)
	if err != nil {
		t.Fatalf("GetMeta after reopen: %v", err)
	}
	if created1 != created2 {
		t.Fatalf("created_date changed across reopen: %q vs %q", created1, created2)
	}
}

func TestDeleteReleaseCascades(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	resolver := library.NewResolver(tx)
	releaseID, _, err := resolver.ResolveRelease(ctx, "Album", "Artist", nil, "")
	if err != nil {
		t.Fatalf("ResolveRelease: %v", err)
	}
	trackID, err := resolver.InsertTrack(ctx, &library.Track{
		Name:      "Song",
		Path:      "Artist/Album/01 Song.flac",
		Digest:    "digest-1",
		ReleaseID: releaseID,
	})
	if err != nil {
		t.Fatalf("InsertTrack: %v", err)
	}
	artistID, err := resolver.ResolveArtist(ctx, "Artist")
	if err != nil {
		t.Fatalf("ResolveArtist: %v", err)
	}
	if err := resolver.LinkArtistToTrack(ctx, artistID, trackID, library.RolePrimary); err != nil {
		t.Fatalf("LinkArtistToTrack: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	removed, err := store.DeleteRelease(ctx, releaseID)
	if err != nil {
		t.Fatalf("DeleteRelease: %v", err)
	}
	if !removed {
		t.Fatal("expected release removed")
	}

	count, err := store.TrackCount(ctx)
	if err != nil {
		t.Fatalf("TrackCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected cascade to remove tracks, got %d", count)
	}
}

func TestRecordPlayAndRating(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	resolver := library.NewResolver(tx)
	releaseID, _, err := resolver.ResolveRelease(ctx, "Album", "Artist", nil, "")
	if err != nil {
		t.Fatalf("ResolveRelease: %v", err)
	}
	trackID, err := resolver.InsertTrack(ctx, &library.Track{
		Name:      "Song",
		Path:      "a/b.flac",
		Digest:    "digest-play",
		ReleaseID: releaseID,
	})
	if err != nil {
		t.Fatalf("InsertTrack: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := store.RecordPlay(ctx, trackID); err != nil {
		t.Fatalf("RecordPlay: %v", err)
	}
	if err := store.RecordPlay(ctx, trackID); err != nil {
		t.Fatalf("RecordPlay again: %v", err)
	}
	if err := store.SetRating(ctx, trackID, 4); err != nil {
		t.Fatalf("SetRating: %v", err)
	}
	if err := store.SetRating(ctx, trackID, 9); err == nil {
		t.Fatal("expected out-of-range rating rejected")
	}

	track, err := store.GetTrackByPath(ctx, "a/b.flac")
	if err != nil {
		t.Fatalf("GetTrackByPath: %v", err)
	}
	if track == nil {
		t.Fatal("expected track")
	}
	if track.PlayCount != 2 {
		t.Fatalf("expected play count 2, got %d", track.PlayCount)
	}
	if track.LastPlayedAt == nil {
		t.Fatal("expected last played timestamp")
	}
	if track.Rating == nil || *track.Rating != 4 {
		t.Fatalf("expected rating 4, got %v", track.Rating)
	}

	if err := store.RecordPlay(ctx, trackID+999); err == nil {
		t.Fatal("expected error for unknown track")
	}
}
