// Package todo holds the item workflow: creation with duplicate and sequence
// checks, updates, completion, and the "next item" queue.
package todo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/baiirun/minitodo/internal/model"
)

// Service implements item CRUD and workflow over a Store.
type Service struct {
	store Store
	seq   *Sequencer
	dup   *DuplicateIndex
	log   zerolog.Logger
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService returns a Service over store.
func NewService(store Store, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store: store,
		seq:   NewSequencer(store),
		dup:   NewDuplicateIndex(store),
		log:   logger,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying store.
func (s *Service) Store() Store { return s.store }

// Sequencer returns the task number allocator.
func (s *Service) Sequencer() *Sequencer { return s.seq }

// Duplicates returns the duplicate index.
func (s *Service) Duplicates() *DuplicateIndex { return s.dup }

// Now returns the current time in UTC from the service clock.
func (s *Service) Now() time.Time { return s.now().UTC() }

// CreateRequest is the input to Create. FilePath and TaskNumber are optional.
type CreateRequest struct {
	Title       string
	Description string
	FilePath    string
	TaskNumber  *int64
}

// Create validates and inserts a new item.
//
// With a FilePath the description is replaced by the file's trimmed content
// and a completion instruction that names the new ID, which takes a second
// write once the store has assigned it.
func (s *Service) Create(ctx context.Context, req CreateRequest) (model.Item, error) {
	title := req.Title
	description := req.Description
	var filePath *string

	if req.FilePath == "" {
		if strings.TrimSpace(title) == "" {
			return model.Item{}, fmt.Errorf("title is required: %w", model.ErrInvalidArgument)
		}
		if strings.TrimSpace(description) == "" {
			return model.Item{}, fmt.Errorf("description is required: %w", model.ErrInvalidArgument)
		}
	} else {
		abs, err := filepath.Abs(req.FilePath)
		if err != nil {
			return model.Item{}, model.IOError("failed to resolve file "+req.FilePath, err)
		}
		tracked, err := s.dup.IsDuplicatePath(ctx, abs)
		if err != nil {
			return model.Item{}, err
		}
		if tracked {
			return model.Item{}, fmt.Errorf("a todo already exists for file %s: %w", abs, model.ErrConflict)
		}

		content, err := ReadSourceFile(abs)
		if err != nil {
			return model.Item{}, err
		}
		if strings.TrimSpace(title) == "" || title == req.FilePath || title == abs {
			title = BaseName(abs)
		}
		filePath = model.Ptr(abs)
		description = FileDescription(abs, content)
	}

	existing, found, err := s.dup.Existing(ctx, title, description)
	if err != nil {
		return model.Item{}, err
	}
	if found {
		return model.Item{}, fmt.Errorf("a todo with the same title and description already exists (ID: %d): %w", existing.ID, model.ErrConflict)
	}

	taskNumber := req.TaskNumber
	if taskNumber == nil {
		next, err := s.seq.Next(ctx)
		if err != nil {
			return model.Item{}, err
		}
		taskNumber = &next
	}

	item := model.NewItem(title, description, filePath, taskNumber, s.now())
	if err := s.store.CreateItem(ctx, &item); err != nil {
		return model.Item{}, fmt.Errorf("create todo: %w", err)
	}

	if filePath != nil {
		item.Description = FinalizeDescription(item.Description, item.ID)
		if _, err := s.store.UpdateItem(ctx, item); err != nil {
			return model.Item{}, fmt.Errorf("finalize todo %d description: %w", item.ID, err)
		}
	}

	s.log.Debug().
		Int64("id", item.ID).
		Int64("task_number", *item.TaskNumber).
		Bool("from_file", filePath != nil).
		Msg("todo created")

	return item, nil
}

// Get returns the item with id. The bool is false when it does not exist.
func (s *Service) Get(ctx context.Context, id int64) (model.Item, bool, error) {
	if err := validateID(id); err != nil {
		return model.Item{}, false, err
	}

	item, err := s.store.GetItem(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Item{}, false, nil
	}
	if err != nil {
		return model.Item{}, false, fmt.Errorf("get todo: %w", err)
	}
	return item, true, nil
}

// UpdateRequest is the input to Update. Nil fields keep their value.
type UpdateRequest struct {
	ID          int64
	Title       *string
	Description *string
}

// Update changes the title and/or description of an existing item.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (model.Item, error) {
	if err := validateID(req.ID); err != nil {
		return model.Item{}, err
	}
	if req.Title == nil && req.Description == nil {
		return model.Item{}, fmt.Errorf("title or description is required: %w", model.ErrInvalidArgument)
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return model.Item{}, fmt.Errorf("title must not be empty: %w", model.ErrInvalidArgument)
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) == "" {
		return model.Item{}, fmt.Errorf("description must not be empty: %w", model.ErrInvalidArgument)
	}

	item, err := s.mustGet(ctx, req.ID)
	if err != nil {
		return model.Item{}, err
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	item.UpdatedAt = s.Now()

	if err := s.save(ctx, item); err != nil {
		return model.Item{}, err
	}
	return item, nil
}

// Complete marks an item done. Completing a done item again is allowed: the
// first CompletedAt is kept and only UpdatedAt moves.
func (s *Service) Complete(ctx context.Context, id int64) (model.Item, error) {
	if err := validateID(id); err != nil {
		return model.Item{}, err
	}

	item, err := s.mustGet(ctx, id)
	if err != nil {
		return model.Item{}, err
	}

	now := s.Now()
	item.Status = model.StatusDone
	if item.CompletedAt == nil {
		item.CompletedAt = &now
	}
	item.UpdatedAt = now

	if err := s.save(ctx, item); err != nil {
		return model.Item{}, err
	}

	s.log.Debug().Int64("id", id).Msg("todo completed")
	return item, nil
}

// Delete removes an existing item.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	if err := validateID(id); err != nil {
		return false, err
	}

	removed, err := s.store.DeleteItem(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete todo: %w", err)
	}
	if !removed {
		return false, fmt.Errorf("todo with ID %d: %w", id, model.ErrNotFound)
	}
	return true, nil
}

// Next returns the incomplete item with the lowest task number.
func (s *Service) Next(ctx context.Context) (model.Item, bool, error) {
	item, err := s.store.NextIncompleteItem(ctx)
	if errors.Is(err, model.ErrNotFound) {
		return model.Item{}, false, nil
	}
	if err != nil {
		return model.Item{}, false, fmt.Errorf("get next todo: %w", err)
	}
	return item, true, nil
}

// NextRef identifies the next item without its content.
type NextRef struct {
	ID         int64  `json:"id"`
	TaskNumber *int64 `json:"taskNumber"`
}

// NextID is Next projected to the ID and task number.
func (s *Service) NextID(ctx context.Context) (NextRef, bool, error) {
	item, ok, err := s.Next(ctx)
	if err != nil || !ok {
		return NextRef{}, ok, err
	}
	return NextRef{ID: item.ID, TaskNumber: item.TaskNumber}, true, nil
}

// List returns every item in queue order.
func (s *Service) List(ctx context.Context) ([]model.Item, error) {
	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return items, nil
}

// ClearAll deletes every item. Task numbering restarts at 1 afterwards only
// because the table is empty.
func (s *Service) ClearAll(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteAllItems(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear todos: %w", err)
	}
	s.log.Info().Int64("deleted", n).Msg("cleared todos")
	return n, nil
}

func (s *Service) mustGet(ctx context.Context, id int64) (model.Item, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return model.Item{}, fmt.Errorf("get todo: %w", err)
	}
	return item, nil
}

func (s *Service) save(ctx context.Context, item model.Item) error {
	changed, err := s.store.UpdateItem(ctx, item)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	if !changed {
		return fmt.Errorf("todo with ID %d: %w", item.ID, model.ErrNotFound)
	}
	return nil
}

func validateID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("invalid todo ID %d: %w", id, model.ErrInvalidArgument)
	}
	return nil
}

// ReadSourceFile returns the trimmed text of a regular file, or a typed error:
// ErrNotFound if it does not exist, ErrInvalidArgument if it is a directory,
// ErrEmptyContent if it is blank.
func ReadSourceFile(path string) (string, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("file does not exist: %s: %w", path, model.ErrNotFound)
	}
	if err != nil {
		return "", model.IOError("failed to stat file "+path, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("path is not a file: %s: %w", path, model.ErrInvalidArgument)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", model.IOError("failed to read file "+path, err)
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", fmt.Errorf("file is empty: %s: %w", path, model.ErrEmptyContent)
	}
	return content, nil
}
