// Package memory provides in-memory storage adapters, used in tests and
// as the default when no data directory is configured.
package memory

import (
	"context"
	"sync"

	"github.com/draftaid-io/draftaid/internal/core/domain"
	"github.com/draftaid-io/draftaid/internal/core/ports/driven"
)

// Ensure DecisionStore implements the interface.
var _ driven.DecisionStore = (*DecisionStore)(nil)

// DecisionStore is an in-memory implementation of driven.DecisionStore.
type DecisionStore struct {
	mu sync.RWMutex

	// decisions holds the audit trail, oldest first.
	decisions []domain.Decision

	// dismissed indexes whitespace-normalised fragments by category.
	dismissed map[domain.Category]map[string]struct{}
}

// NewDecisionStore creates a new in-memory decision store.
func NewDecisionStore() *DecisionStore {
	return &DecisionStore{
		dismissed: make(map[domain.Category]map[string]struct{}),
	}
}

// Record stores a decision.
func (s *DecisionStore) Record(_ context.Context, decision *domain.Decision) error {
	if decision == nil {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.decisions = append(s.decisions, *decision)
	if decision.Action == domain.DecisionDismissed {
		key := domain.NormaliseFragment(decision.Original)
		if s.dismissed[decision.Category] == nil {
			s.dismissed[decision.Category] = make(map[string]struct{})
		}
		s.dismissed[decision.Category][key] = struct{}{}
	}
	return nil
}

// List returns the most recent decisions, newest first.
func (s *DecisionStore) List(_ context.Context, limit int) ([]domain.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.decisions)
	if limit <= 0 || limit > n {
		limit = n
	}

	result := make([]domain.Decision, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		result = append(result, s.decisions[i])
	}
	return result, nil
}

// WasDismissed reports whether an identical fragment was dismissed for
// the category.
func (s *DecisionStore) WasDismissed(_ context.Context, category domain.Category, fragment string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.dismissed[category][domain.NormaliseFragment(fragment)]
	return ok, nil
}

// Close releases resources.
func (s *DecisionStore) Close() error {
	return nil
}
