package todo

import (
	"context"
	"fmt"
)

// Sequencer hands out task numbers as max(existing)+1.
//
// Callers creating a batch take one number and offset it by position rather
// than calling Next per item.
type Sequencer struct {
	store Store
}

// NewSequencer returns a Sequencer reading from store.
func NewSequencer(store Store) *Sequencer {
	return &Sequencer{store: store}
}

// Next returns the next unused task number.
func (s *Sequencer) Next(ctx context.Context) (int64, error) {
	maxNum, err := s.store.MaxTaskNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("allocate task number: %w", err)
	}
	return maxNum + 1, nil
}
