// Package walker enumerates the media files under a directory tree.
//
// Hidden entries (basename starting with ".") are pruned together with their
// subtree, only regular files with an image or video extension are yielded and
// unreadable entries are skipped rather than ending the walk. Each range over
// Files starts a fresh walk, so the sequence can be consumed any number of
// times.
package walker

import (
	"io/fs"
	"iter"
	"path/filepath"
	"strings"
	"time"

	"media-catalog/internal/logging"
	"media-catalog/internal/mediatypes"
)

// File describes one media file found on disk.
type File struct {
	Path    string // absolute
	Size    int64
	ModTime time.Time
}

// Walker walks a single root directory.
type Walker struct {
	root string // as given, made absolute
	dir  string // root with symlinks resolved
}

// New returns a walker for root. A relative root is made absolute when
// possible so every yielded path is absolute. A symlinked root is followed,
// but yielded paths stay under root as given.
func New(root string) *Walker {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	root = filepath.Clean(root)
	dir := root
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		dir = resolved
	}
	return &Walker{root: root, dir: dir}
}

// Root returns the absolute root directory.
func (w *Walker) Root() string { return w.root }

// Files returns the lazy sequence of media files below the root in lexical
// order. Stopping the range early stops the walk.
func (w *Walker) Files() iter.Seq[File] {
	return func(yield func(File) bool) {
		_ = filepath.WalkDir(w.dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				logging.Debug("Skipping unreadable path %s: %v", path, err)
				return nil
			}

			if path != w.dir && isHidden(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !d.Type().IsRegular() || !mediatypes.IsMediaFile(path) {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				logging.Debug("Skipping %s: %v", path, err)
				return nil
			}

			if w.dir != w.root {
				rel, err := filepath.Rel(w.dir, path)
				if err != nil {
					return nil
				}
				path = filepath.Join(w.root, rel)
			}

			if !yield(File{Path: path, Size: info.Size(), ModTime: info.ModTime()}) {
				return fs.SkipAll
			}
			return nil
		})
	}
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
