package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// supportedExtensions is the audio extension set accepted during discovery,
// matched case-insensitively.
var supportedExtensions = map[string]struct{}{
	".aac":  {},
	".aif":  {},
	".aiff": {},
	".alac": {},
	".flac": {},
	".m4a":  {},
	".mp3":  {},
	".ogg":  {},
	".opus": {},
	".wav":  {},
	".wma":  {},
}

// bundleSuffixes marks directory names treated as opaque bundles rather
// than folders worth descending into.
var bundleSuffixes = []string{".app", ".bundle", ".framework"}

// discover enumerates every candidate audio file under root. Hidden entries
// and opaque bundles are skipped. Symlinked directories are descended into
// only when followSymlinks is set, with a visited set guarding walk cycles.
// The returned order is whatever the filesystem yields; callers must not
// rely on it.
func discover(root string, followSymlinks bool) ([]string, error) {
	walker := &walker{
		followSymlinks: followSymlinks,
		visited:        make(map[string]struct{}),
	}
	if err := walker.walk(root); err != nil {
		return nil, err
	}
	return walker.files, nil
}

type walker struct {
	followSymlinks bool
	visited        map[string]struct{}
	files          []string
}

func (w *walker) walk(root string) error {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return err
	}
	w.visited[resolved] = struct{}{}

	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		name := entry.Name()
		if entry.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(name, ".") || isBundle(name) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}
		if entry.Type()&fs.ModeSymlink != 0 {
			if !w.followSymlinks {
				return nil
			}
			return w.walkSymlink(path)
		}
		if !entry.Type().IsRegular() {
			return nil
		}

		w.accept(path)
		return nil
	})
}

// walkSymlink resolves a symlink entry and either descends (directory
// target) or accepts the linked file under its in-library path. Broken
// links are silently ignored.
func (w *walker) walkSymlink(path string) error {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return nil
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil
	}
	if info.IsDir() {
		return w.walkLinkedDir(path, resolved)
	}
	w.accept(path)
	return nil
}

// walkLinkedDir descends a symlinked directory manually so accepted paths
// stay rooted under the library tree rather than the link target.
func (w *walker) walkLinkedDir(linkPath, resolved string) error {
	if _, seen := w.visited[resolved]; seen {
		return nil
	}
	w.visited[resolved] = struct{}{}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		child := filepath.Join(linkPath, name)
		target := filepath.Join(resolved, name)
		switch {
		case entry.IsDir():
			if isBundle(name) {
				continue
			}
			if err := w.walkLinkedDir(child, target); err != nil {
				return err
			}
		case entry.Type()&fs.ModeSymlink != 0:
			if err := w.walkSymlink(child); err != nil {
				return err
			}
		case entry.Type().IsRegular():
			w.accept(child)
		}
	}
	return nil
}

func (w *walker) accept(path string) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := supportedExtensions[ext]; !ok {
		return
	}
	w.files = append(w.files, path)
}

func isBundle(name string) bool {
	lowered := strings.ToLower(name)
	for _, suffix := range bundleSuffixes {
		if strings.HasSuffix(lowered, suffix) {
			return true
		}
	}
	return false
}
