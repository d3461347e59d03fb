package todo

import (
	"context"

	"github.com/baiirun/minitodo/internal/model"
)

// Store defines item persistence. Implementations assign IDs and return
// model.ErrNotFound for lookups that match nothing. Uniqueness of
// title+description or file path is not enforced here; see DuplicateIndex.
type Store interface {
	// CreateItem inserts item and sets item.ID.
	CreateItem(ctx context.Context, item *model.Item) error

	// CreateItems inserts every item in a single atomic batch, in order.
	// finalize, when non-nil, is called for each item right after its ID is
	// assigned; any change it makes to the description is persisted in the
	// same batch. Either all items land or none do.
	CreateItems(ctx context.Context, items []*model.Item, finalize func(*model.Item)) error

	// GetItem returns the item with the given ID.
	GetItem(ctx context.Context, id int64) (model.Item, error)

	// ListItems returns every item ordered by task number, then ID.
	ListItems(ctx context.Context) ([]model.Item, error)

	// UpdateItem overwrites the mutable fields (title, description, status,
	// completedAt, updatedAt) of the stored item with item.ID.
	// Reports whether a row changed.
	UpdateItem(ctx context.Context, item model.Item) (bool, error)

	// DeleteItem removes one item. Reports whether a row was removed.
	DeleteItem(ctx context.Context, id int64) (bool, error)

	// DeleteAllItems removes every item and returns how many were removed.
	DeleteAllItems(ctx context.Context) (int64, error)

	// NextIncompleteItem returns the item with the lowest task number whose
	// status is not Done. Items without a task number come last.
	NextIncompleteItem(ctx context.Context) (model.Item, error)

	// MaxTaskNumber returns the largest stored task number, or 0.
	MaxTaskNumber(ctx context.Context) (int64, error)

	// FindItemByContent returns an item whose title and description both
	// match exactly.
	FindItemByContent(ctx context.Context, title, description string) (model.Item, error)

	// ItemFilePaths returns every non-null file path.
	ItemFilePaths(ctx context.Context) ([]string, error)
}
