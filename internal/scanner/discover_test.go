package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeEmpty(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDiscoverFiltersByExtension(t *testing.T) {
	root := t.TempDir()
	writeEmpty(t, filepath.Join(root, "keep.mp3"))
	writeEmpty(t, filepath.Join(root, "keep.FLAC"))
	writeEmpty(t, filepath.Join(root, "nested/deep/keep.ogg"))
	writeEmpty(t, filepath.Join(root, "skip.txt"))
	writeEmpty(t, filepath.Join(root, "skip.jpg"))
	writeEmpty(t, filepath.Join(root, "noext"))

	files, err := discover(root, false)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	sort.Strings(files)

	want := []string{
		filepath.Join(root, "keep.FLAC"),
		filepath.Join(root, "keep.mp3"),
		filepath.Join(root, "nested/deep/keep.ogg"),
	}
	if len(files) != len(want) {
		t.Fatalf("discover returned %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("discover[%d] = %s, want %s", i, files[i], want[i])
		}
	}
}

func TestDiscoverSkipsHiddenAndBundles(t *testing.T) {
	root := t.TempDir()
	writeEmpty(t, filepath.Join(root, "visible.mp3"))
	writeEmpty(t, filepath.Join(root, ".hidden.mp3"))
	writeEmpty(t, filepath.Join(root, ".trash/buried.mp3"))
	writeEmpty(t, filepath.Join(root, "Player.app/Contents/sound.mp3"))
	writeEmpty(t, filepath.Join(root, "Plugin.bundle/audio.flac"))

	files, err := discover(root, false)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(files) != 1 || files[0] != filepath.Join(root, "visible.mp3") {
		t.Fatalf("expected only the visible file, got %v", files)
	}
}

func TestDiscoverFollowsSymlinksOnlyWhenEnabled(t *testing.T) {
	root := t.TempDir()
	external := t.TempDir()
	writeEmpty(t, filepath.Join(external, "linked.mp3"))
	writeEmpty(t, filepath.Join(root, "local.mp3"))
	if err := os.Symlink(external, filepath.Join(root, "shared")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	files, err := discover(root, false)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected symlink ignored by default, got %v", files)
	}

	files, err = discover(root, true)
	if err != nil {
		t.Fatalf("discover with symlinks: %v", err)
	}
	sort.Strings(files)
	want := []string{
		filepath.Join(root, "local.mp3"),
		filepath.Join(root, "shared/linked.mp3"),
	}
	if len(files) != 2 || files[0] != want[0] || files[1] != want[1] {
		t.Fatalf("discover returned %v, want %v", files, want)
	}
}

func TestDiscoverSymlinkCycleTerminates(t *testing.T) {
	root := t.TempDir()
	writeEmpty(t, filepath.Join(root, "albums/track.mp3"))
	if err := os.Symlink(root, filepath.Join(root, "albums/loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	files, err := discover(root, true)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	// The cycle contributes nothing new; the one real file is found once.
	count := 0
	for _, f := range files {
		if filepath.Base(f) == "track.mp3" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected track found exactly once, got %v", files)
	}
}

func TestDiscoverEmptyRoot(t *testing.T) {
	files, err := discover(t.TempDir(), false)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no files, got %v", files)
	}
}
