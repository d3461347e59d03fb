// Package rules manages the rule list: free-form guidance loaded from a file
// and returned alongside the todo queue.
package rules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/baiirun/minitodo/internal/model"
	"github.com/baiirun/minitodo/internal/todo"
)

// Service implements rule loading and listing over a Store.
type Service struct {
	store Store
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
	s := &Service{store: store, log: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddRequest is the input to Add.
type AddRequest struct {
	FilePath   string
	ClearFirst bool
}

// Add loads one rule from a file. With ClearFirst every existing rule is
// removed before the file is read, matching how bulk ingestion clears todos.
func (s *Service) Add(ctx context.Context, req AddRequest) ([]model.Rule, error) {
	if req.FilePath == "" {
		return nil, fmt.Errorf("file path is required: %w", model.ErrInvalidArgument)
	}

	if req.ClearFirst {
		if _, err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
	}

	content, err := todo.ReadSourceFile(req.FilePath)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rule := model.Rule{
		Description: content,
		CreatedAt:   now,
		UpdatedAt:   now,
		FilePath:    model.Ptr(req.FilePath),
	}
	if err := s.store.CreateRule(ctx, &rule); err != nil {
		return nil, fmt.Errorf("create rule: %w", err)
	}

	s.log.Debug().Int64("id", rule.ID).Str("path", req.FilePath).Msg("rule added")
	return []model.Rule{rule}, nil
}

// Get returns the rule with id. The bool is false when it does not exist.
func (s *Service) Get(ctx context.Context, id int64) (model.Rule, bool, error) {
	if id <= 0 {
		return model.Rule{}, false, fmt.Errorf("invalid rule ID %d: %w", id, model.ErrInvalidArgument)
	}
	rule, err := s.store.GetRule(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.Rule{}, false, nil
	}
	if err != nil {
		return model.Rule{}, false, fmt.Errorf("get rule: %w", err)
	}
	return rule, true, nil
}

// List returns every rule, oldest first.
func (s *Service) List(ctx context.Context) ([]model.Rule, error) {
	rules, err := s.store.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return rules, nil
}

// ClearAll deletes every rule and returns the count.
func (s *Service) ClearAll(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteAllRules(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear rules: %w", err)
	}
	s.log.Info().Int64("deleted", n).Msg("cleared rules")
	return n, nil
}
