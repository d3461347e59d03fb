package todo

import (
	"context"
	"errors"
	"fmt"

	"github.com/baiirun/minitodo/internal/model"
)

// DuplicateIndex answers uniqueness questions before an insert. The store
// itself does not enforce either key.
type DuplicateIndex struct {
	store Store
}

// NewDuplicateIndex returns an index backed by store.
func NewDuplicateIndex(store Store) *DuplicateIndex {
	return &DuplicateIndex{store: store}
}

// Existing returns the item that already has this title and description.
// The bool is false when there is none.
func (d *DuplicateIndex) Existing(ctx context.Context, title, description string) (model.Item, bool, error) {
	item, err := d.store.FindItemByContent(ctx, title, description)
	if errors.Is(err, model.ErrNotFound) {
		return model.Item{}, false, nil
	}
	if err != nil {
		return model.Item{}, false, fmt.Errorf("check duplicate todo: %w", err)
	}
	return item, true, nil
}

// IsDuplicatePath reports whether any item was created from path.
func (d *DuplicateIndex) IsDuplicatePath(ctx context.Context, path string) (bool, error) {
	set, err := d.Paths(ctx)
	if err != nil {
		return false, err
	}
	return set.Has(path), nil
}

// Paths loads every tracked file path once, for filtering many candidates.
func (d *DuplicateIndex) Paths(ctx context.Context) (PathSet, error) {
	paths, err := d.store.ItemFilePaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tracked file paths: %w", err)
	}
	set := make(PathSet, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return set, nil
}

// PathSet is a set of file paths.
type PathSet map[string]struct{}

// Has reports whether p is in the set.
func (s PathSet) Has(p string) bool {
	_, ok := s[p]
	return ok
}
