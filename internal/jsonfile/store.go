// Package jsonfile implements the todo and rule stores as a single JSON
// document on disk. Every mutation rewrites the document atomically.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/baiirun/minitodo/internal/model"
	"github.com/baiirun/minitodo/internal/rules"
	"github.com/baiirun/minitodo/internal/todo"
)

// Document is the root JSON structure stored on disk.
type Document struct {
	Todos      []model.Item `json:"todos"`
	Rules      []model.Rule `json:"rules"`
	NextTodoID int64        `json:"nextTodoId"`
	NextRuleID int64        `json:"nextRuleId"`
}

func newDocument() *Document {
	return &Document{
		Todos:      []model.Item{},
		Rules:      []model.Rule{},
		NextTodoID: 1,
		NextRuleID: 1,
	}
}

func (d *Document) clone() *Document {
	c := *d
	c.Todos = append([]model.Item(nil), d.Todos...)
	c.Rules = append([]model.Rule(nil), d.Rules...)
	return &c
}

// Store implements todo.Store and rules.Store on a JSON file.
type Store struct {
	path string
	mu   sync.Mutex
	doc  *Document
}

var (
	_ todo.Store  = (*Store)(nil)
	_ rules.Store = (*Store)(nil)
)

// Open loads the document at path, creating it if it does not exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	s := &Store{path: path}
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	if err := s.save(doc); err != nil {
		return nil, err
	}
	s.doc = doc
	return s, nil
}

// Close is a no-op; every write is already on disk.
func (s *Store) Close() error {
	return nil
}

// CreateItem appends item and assigns the next ID.
func (s *Store) CreateItem(ctx context.Context, item *model.Item) error {
	if !item.Status.IsValid() {
		return fmt.Errorf("invalid status %q: %w", item.Status, model.ErrInvalidArgument)
	}
	drafts := make([]string, len(items))
	for i, item := range items {
		drafts[i] = item.Description
	}

	err := s.mutate(func(doc *Document) error {
		item.ID = doc.NextTodoID
		doc.NextTodoID++
		doc.Todos = append(doc.Todos, *item)
		return nil
	})
	if err != nil {
		item.ID = 0
	}
	return err
}

// CreateItems appends every item in one document write.
func (s *Store) CreateItems(ctx context.Context, items []*model.Item, finalize func(*model.Item)) error {
	for _, item := range items {
		if !item.Status.IsValid() {
			return fmt.Errorf("invalid status %q: %w", item.Status, model.ErrInvalidArgument)
		}
	}

	err := s.mutate(func(doc *Document) error {
		for _, item := range items {
			if err := ctx.Err(); err != nil {
				return err
			}
			item.ID = doc.NextTodoID
			doc.NextTodoID++
			if finalize != nil {
				finalize(item)
			}
			doc.Todos = append(doc.Todos, *item)
		}
		return nil
	})
	if err != nil {
		for i, item := range items {
			item.ID = 0
			item.Description = drafts[i]
		}
		return err
	}
	return nil
}

// GetItem returns the item with id.
func (s *Store) GetItem(ctx context.Context, id int64) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := indexOfItem(s.doc, id); i >= 0 {
		return s.doc.Todos[i], nil
	}
	return model.Item{}, fmt.Errorf("todo with ID %d: %w", id, model.ErrNotFound)
}

// ListItems returns all items ordered by task number (unnumbered last), then ID.
func (s *Store) ListItems(ctx context.Context) ([]model.Item, error) {
	s.mu.Lock()
	items := append([]model.Item(nil), s.doc.Todos...)
	s.mu.Unlock()

	sort.SliceStable(items, func(i, j int) bool {
		return itemLess(items[i], items[j])
	})
	return items, nil
}

// UpdateItem replaces the mutable fields of the stored item.
func (s *Store) UpdateItem(ctx context.Context, item model.Item) (bool, error) {
	if !item.Status.IsValid() {
		return false, fmt.Errorf("invalid status %q: %w", item.Status, model.ErrInvalidArgument)
	}

	changed := false
	err := s.mutate(func(doc *Document) error {
		i := indexOfItem(doc, item.ID)
		if i < 0 {
			return errNoChange
		}
		stored := &doc.Todos[i]
		stored.Title = item.Title
		stored.Description = item.Description
		stored.Status = item.Status
		stored.CompletedAt = item.CompletedAt
		stored.UpdatedAt = item.UpdatedAt
		changed = true
		return nil
	})
	return changed, err
}

// DeleteItem removes the item with id.
func (s *Store) DeleteItem(ctx context.Context, id int64) (bool, error) {
	removed := false
	err := s.mutate(func(doc *Document) error {
		i := indexOfItem(doc, id)
		if i < 0 {
			return errNoChange
		}
		doc.Todos = append(doc.Todos[:i], doc.Todos[i+1:]...)
		removed = true
		return nil
	})
	return removed, err
}

// DeleteAllItems removes every item. The ID counter keeps counting.
func (s *Store) DeleteAllItems(ctx context.Context) (int64, error) {
	var n int64
	err := s.mutate(func(doc *Document) error {
		n = int64(len(doc.Todos))
		doc.Todos = []model.Item{}
		return nil
	})
	return n, err
}

// NextIncompleteItem returns the lowest-numbered item that is not done.
func (s *Store) NextIncompleteItem(ctx context.Context) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		best  model.Item
		found bool
	)
	for _, it := range s.doc.Todos {
		if it.Status == model.StatusDone {
			continue
		}
		if !found || itemLess(it, best) {
			best, found = it, true
		}
	}
	if !found {
		return model.Item{}, fmt.Errorf("no incomplete todo: %w", model.ErrNotFound)
	}
	return best, nil
}

// MaxTaskNumber returns the highest task number in use, or 0.
func (s *Store) MaxTaskNumber(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxNum int64
	for _, it := range s.doc.Todos {
		if it.TaskNumber != nil && *it.TaskNumber > maxNum {
			maxNum = *it.TaskNumber
		}
	}
	return maxNum, nil
}

// FindItemByContent returns the first item with this exact title and description.
func (s *Store) FindItemByContent(ctx context.Context, title, description string) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, it := range s.doc.Todos {
		if it.Title == title && it.Description == description {
			return it, nil
		}
	}
	return model.Item{}, fmt.Errorf("todo with this content: %w", model.ErrNotFound)
}

// ItemFilePaths returns the file path of every file-derived item.
func (s *Store) ItemFilePaths(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var paths []string
	for _, it := range s.doc.Todos {
		if it.FilePath != nil {
			paths = append(paths, *it.FilePath)
		}
	}
	return paths, nil
}

// CreateRule appends rule and assigns the next rule ID.
func (s *Store) CreateRule(ctx context.Context, rule *model.Rule) error {
	return s.mutate(func(doc *Document) error {
		rule.ID = doc.NextRuleID
		doc.NextRuleID++
		doc.Rules = append(doc.Rules, *rule)
		return nil
	})
}

// GetRule returns the rule with id.
func (s *Store) GetRule(ctx context.Context, id int64) (model.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.doc.Rules {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Rule{}, fmt.Errorf("rule with ID %d: %w", id, model.ErrNotFound)
}

// ListRules returns every rule, oldest first.
func (s *Store) ListRules(ctx context.Context) ([]model.Rule, error) {
	s.mu.Lock()
	out := append([]model.Rule(nil), s.doc.Rules...)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteAllRules removes every rule.
func (s *Store) DeleteAllRules(ctx context.Context) (int64, error) {
	var n int64
	err := s.mutate(func(doc *Document) error {
		n = int64(len(doc.Rules))
		doc.Rules = []model.Rule{}
		return nil
	})
	return n, err
}

// errNoChange aborts a mutation without writing and without failing the call.
var errNoChange = errors.New("no change")

// mutate applies fn to a copy of the document, writes the copy to disk, and
// only then makes it current. A failed fn or write leaves the store untouched.
func (s *Store) mutate(fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.clone()
	if err := fn(next); err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	if err := s.save(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

func (s *Store) load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return newDocument(), nil
	}
	if err != nil {
		return nil, model.IOError("failed to read store", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return newDocument(), nil
	}

	doc := newDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, model.IOError("failed to parse store "+s.path, err)
	}
	return doc, nil
}

func (s *Store) save(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return model.IOError("failed to write store", err)
	}
	return nil
}

func indexOfItem(doc *Document, id int64) int {
	for i := range doc.Todos {
		if doc.Todos[i].ID == id {
			return i
		}
	}
	return -1
}

// itemLess orders by task number with unnumbered items last, then by ID.
func itemLess(a, b model.Item) bool {
	switch {
	case a.TaskNumber == nil && b.TaskNumber == nil:
		return a.ID < b.ID
	case a.TaskNumber == nil:
		return false
	case b.TaskNumber == nil:
		return true
	case *a.TaskNumber != *b.TaskNumber:
		return *a.TaskNumber < *b.TaskNumber
	default:
		return a.ID < b.ID
	}
}
