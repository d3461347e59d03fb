package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/baiirun/minitodo/internal/model"
	"github.com/baiirun/minitodo/internal/natsort"
)

// Enumerate returns every regular file under root, recursively, in natural
// order. Paths are absolute and cleaned so the same file always yields the
// same key. exclude holds doublestar patterns matched against the
// slash-separated path relative to root; a matching directory is pruned.
//
// Any error reading the tree is fatal.
func Enumerate(root string, exclude []string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, model.IOError("failed to resolve folder "+root, err)
	}

	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("folder does not exist: %s: %w", root, model.ErrNotFound)
	}
	if err != nil {
		return nil, model.IOError("failed to stat folder "+root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s: %w", root, model.ErrInvalidArgument)
	}

	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, model.ErrInvalidArgument)
		}
	}

	var files []string
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == abs {
			return nil
		}

		rel, err := filepath.Rel(abs, path)
		if err != nil {
			return err
		}
		if excluded(filepath.ToSlash(rel), exclude) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, model.IOError("failed to read directory "+root, err)
	}

	natsort.Sort(files)
	return files, nil
}

func excluded(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
