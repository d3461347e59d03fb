package rules

import (
	"context"

	"github.com/baiirun/minitodo/internal/model"
)

// Store defines rule persistence.
type Store interface {
	// CreateRule inserts rule and sets rule.ID.
	CreateRule(ctx context.Context, rule *model.Rule) error
	// GetRule returns model.ErrNotFound when no rule has the ID.
	GetRule(ctx context.Context, id int64) (model.Rule, error)
	// ListRules returns every rule, oldest first.
	ListRules(ctx context.Context) ([]model.Rule, error)
	// DeleteAllRules removes every rule and returns the count.
	DeleteAllRules(ctx context.Context) (int64, error)
}
