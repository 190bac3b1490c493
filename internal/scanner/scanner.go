package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"tonearm/internal/artwork"
	"tonearm/internal/config"
	"tonearm/internal/hasher"
	"tonearm/internal/library"
	"tonearm/internal/logging"
	"tonearm/internal/tags"
)

// Scanner drives one library synchronization run: discovery, per-file
// processing, and atomic commit. It is the sole writer of entity state for
// the duration of a scan; re-entrancy is rejected via a lock file.
type Scanner struct {
	cfg     *config.Config
	store   *library.Store
	decoder tags.Decoder
	cache   *artwork.Cache
	logger  *slog.Logger
	emit    Emitter
}

// Summary reports the outcome of a committed scan.
type Summary struct {
	ScanID      string
	FilesSeen   int
	TracksAdded int
	TracksMoved int
	Elapsed     time.Duration
}

// New constructs a scanner over the given store and decoder.
func New(cfg *config.Config, store *library.Store, decoder tags.Decoder, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{
		cfg:     cfg,
		store:   store,
		decoder: decoder,
		cache:   artwork.NewCache(cfg.ArtworkCacheDir()),
		logger:  logger.With(slog.String("component", "scanner")),
	}
}

// SetEmitter registers the progress event consumer.
func (s *Scanner) SetEmitter(emitter Emitter) {
	s.emit = emitter
}

// scanState accumulates per-run counters threaded through processing.
type scanState struct {
	scanID      string
	filesSeen   int
	filesDone   int
	tracksAdded int
	tracksMoved int
}

// Run executes one full scan. All entity mutation happens inside a single
// transaction: either every discovered file's changes become visible
// together, or none do. Any per-file failure aborts the whole batch.
func (s *Scanner) Run(ctx context.Context) (*Summary, error) {
	started := time.Now()
	state := &scanState{scanID: uuid.NewString()}

	lock := flock.New(s.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return nil, Wrap(ErrIO, "acquire scan lock", s.cfg.LockPath(), err)
	}
	if !locked {
		return nil, Wrap(ErrScanInFlight, "acquire scan lock", s.cfg.LockPath(), nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	if err := s.checkRoot(); err != nil {
		return nil, err
	}

	summary, err := s.performScan(ctx, state)
	if err != nil {
		s.logger.Error("scan failed",
			slog.String("scan_id", state.scanID),
			logging.Error(err),
		)
		s.emitProgress(state, PhaseRolledBack, "")
		return nil, err
	}

	summary.Elapsed = time.Since(started)
	s.logger.Info("scan committed",
		slog.String("scan_id", state.scanID),
		slog.Int("files_seen", summary.FilesSeen),
		slog.Int("tracks_added", summary.TracksAdded),
		slog.Int("tracks_moved", summary.TracksMoved),
		slog.Duration("elapsed", summary.Elapsed),
	)
	s.emitProgress(state, PhaseCommitted, "")
	return summary, nil
}

// checkRoot validates the library-level preconditions before any work.
func (s *Scanner) checkRoot() error {
	root := s.cfg.Paths.LibraryRoot
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Wrap(ErrNotOpen, "library root", root, err)
		}
		if errors.Is(err, fs.ErrPermission) {
			return Wrap(ErrPermissionDenied, "library root", root, err)
		}
		return Wrap(ErrIO, "library root", root, err)
	}
	if !info.IsDir() {
		return Wrap(ErrNotOpen, "library root", fmt.Sprintf("%s is not a directory", root), nil)
	}
	return nil
}

func (s *Scanner) performScan(ctx context.Context, state *scanState) (*Summary, error) {
	s.emitProgress(state, PhaseDiscovering, "")
	files, err := discover(s.cfg.Paths.LibraryRoot, s.cfg.Scan.FollowSymlinks)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, Wrap(ErrPermissionDenied, "discover", s.cfg.Paths.LibraryRoot, err)
		}
		return nil, Wrap(ErrIO, "discover", s.cfg.Paths.LibraryRoot, err)
	}
	state.filesSeen = len(files)
	s.logger.Info("discovery complete",
		slog.String("scan_id", state.scanID),
		slog.Int("files", len(files)),
	)

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, Wrap(ErrConstraint, "begin scan", "", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	resolver := library.NewResolver(tx)
	for _, path := range files {
		// Cancellation is observed only between files so a partial file
		// never leaves the transaction in an ambiguous state.
		if err := ctx.Err(); err != nil {
			return nil, Wrap(ErrIO, "scan canceled", "", err)
		}
		s.emitProgress(state, PhaseProcessing, path)
		if err := s.processFile(ctx, resolver, state, path); err != nil {
			return nil, err
		}
		state.filesDone++
	}

	s.emitProgress(state, PhaseFinalizing, "")
	if err := s.finalize(ctx, resolver); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, Wrap(ErrConstraint, "commit scan", "", err)
	}
	tx = nil

	return &Summary{
		ScanID:      state.scanID,
		FilesSeen:   state.filesSeen,
		TracksAdded: state.tracksAdded,
		TracksMoved: state.tracksMoved,
	}, nil
}

func (s *Scanner) processFile(ctx context.Context, resolver *library.Resolver, state *scanState, path string) error {
	relPath, err := s.libraryRelative(path)
	if err != nil {
		return Wrap(ErrIO, "relative path", path, err)
	}

	digest, err := hasher.Digest(path)
	if err != nil {
		return Wrap(ErrIO, "digest", relPath, err)
	}

	// Move/rename repair: known content keeps its track id and every
	// relationship; only the stored path changes.
	existing, err := resolver.FindTrackByDigest(ctx, digest)
	if err != nil {
		return Wrap(ErrConstraint, "find by digest", relPath, err)
	}
	if existing != nil {
		if existing.Path != relPath {
			if err := resolver.UpdateTrackPath(ctx, existing.ID, relPath); err != nil {
				return Wrap(ErrConstraint, "repair path", relPath, err)
			}
			state.tracksMoved++
			s.logger.Debug("repaired moved track",
				slog.String("scan_id", state.scanID),
				slog.String("from", existing.Path),
				slog.String("to", relPath),
				slog.Int64("track_id", existing.ID),
			)
		}
		return s.repairArtwork(ctx, resolver, existing.ReleaseID, path)
	}

	raw, duration, err := s.decoder.Extract(path)
	if err != nil {
		return Wrap(ErrDecode, "extract tags", relPath, err)
	}
	meta := tags.Normalize(raw, duration)

	trackArtist := meta.Artist
	if trackArtist == "" {
		trackArtist = library.FallbackArtistName
	}
	album := meta.Album
	if album == "" {
		album = library.FallbackAlbumTitle
	}

	// Release credit tie-break: a present album artist that differs from the
	// track's performer is the one credited on the release (compilations).
	releaseArtist := trackArtist
	if meta.AlbumArtist != "" && meta.AlbumArtist != trackArtist {
		releaseArtist = meta.AlbumArtist
	}

	releaseID, _, err := resolver.ResolveRelease(ctx, album, releaseArtist, meta.Year, meta.Genre)
	if err != nil {
		return Wrap(ErrConstraint, "resolve release", relPath, err)
	}
	trackArtistID, err := resolver.ResolveArtist(ctx, trackArtist)
	if err != nil {
		return Wrap(ErrConstraint, "resolve artist", relPath, err)
	}

	name := meta.Title
	if name == "" {
		base := filepath.Base(path)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	trackID, err := resolver.InsertTrack(ctx, &library.Track{
		Name:        name,
		TrackNumber: meta.TrackNumber,
		DiscNumber:  meta.DiscNumber,
		Path:        relPath,
		Digest:      digest,
		Duration:    meta.Duration,
		ReleaseID:   releaseID,
	})
	if err != nil {
		return Wrap(ErrConstraint, "insert track", relPath, err)
	}
	if err := resolver.LinkArtistToTrack(ctx, trackArtistID, trackID, library.RolePrimary); err != nil {
		return Wrap(ErrConstraint, "link track artist", relPath, err)
	}

	if err := s.attachArtwork(ctx, resolver, meta, releaseID, filepath.Dir(path)); err != nil {
		return err
	}

	state.tracksAdded++
	return nil
}

// repairArtwork re-resolves artwork for already-indexed content when the
// release has no reference or its cached image was removed externally.
// Decoding is deferred until a repair is actually needed.
func (s *Scanner) repairArtwork(ctx context.Context, resolver *library.Resolver, releaseID int64, path string) error {
	existing, err := resolver.ReleaseArtwork(ctx, releaseID)
	if err != nil {
		return Wrap(ErrConstraint, "release artwork", "", err)
	}
	if existing != "" && s.cache.Exists(existing) {
		return nil
	}

	var embedded []byte
	if raw, _, err := s.decoder.Extract(path); err == nil {
		embedded = tags.Normalize(raw, nil).Artwork
	}
	return s.attachArtwork(ctx, resolver, tags.Metadata{Artwork: embedded}, releaseID, filepath.Dir(path))
}

// attachArtwork fills release artwork once: an existing reference whose
// cache file survives on disk short-circuits resolution entirely.
func (s *Scanner) attachArtwork(ctx context.Context, resolver *library.Resolver, meta tags.Metadata, releaseID int64, dir string) error {
	existing, err := resolver.ReleaseArtwork(ctx, releaseID)
	if err != nil {
		return Wrap(ErrConstraint, "release artwork", "", err)
	}
	if existing != "" && s.cache.Exists(existing) {
		return nil
	}

	img := artwork.Resolve(meta.Artwork, dir)
	if img == nil {
		return nil
	}
	relPath, err := s.cache.Store(img)
	if err != nil {
		return Wrap(ErrIO, "cache artwork", "", err)
	}
	if err := resolver.SetReleaseArtwork(ctx, releaseID, relPath); err != nil {
		return Wrap(ErrConstraint, "attach artwork", "", err)
	}
	return nil
}

func (s *Scanner) finalize(ctx context.Context, resolver *library.Resolver) error {
	count, err := resolver.TrackCount(ctx)
	if err != nil {
		return Wrap(ErrConstraint, "finalize", "count tracks", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if err := resolver.SetMeta(ctx, library.MetaLastScan, now); err != nil {
		return Wrap(ErrConstraint, "finalize", library.MetaLastScan, err)
	}
	if err := resolver.SetMeta(ctx, library.MetaTotalTracks, strconv.Itoa(count)); err != nil {
		return Wrap(ErrConstraint, "finalize", library.MetaTotalTracks, err)
	}
	return nil
}

func (s *Scanner) libraryRelative(path string) (string, error) {
	rel, err := filepath.Rel(s.cfg.Paths.LibraryRoot, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func (s *Scanner) emitProgress(state *scanState, phase Phase, currentFile string) {
	if s.emit == nil {
		return
	}
	relFile := currentFile
	if currentFile != "" {
		if rel, err := s.libraryRelative(currentFile); err == nil {
			relFile = rel
		}
	}
	s.emit(Progress{
		ScanID:      state.scanID,
		Phase:       phase,
		CurrentFile: relFile,
		FilesSeen:   state.filesSeen,
		FilesDone:   state.filesDone,
		TracksAdded: state.tracksAdded,
		TracksMoved: state.tracksMoved,
	})
}
