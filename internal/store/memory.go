package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vntrieu/mafia/internal/games"
)

// MemoryStore keeps live matches in memory. It implements games.MatchStore.
// Stored matches are copies; callers never share a pointer with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	matches map[string]*games.Match
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{matches: make(map[string]*games.Match)}
}

// CreateMatch stores a new match. The id must be unused.
func (s *MemoryStore) CreateMatch(_ context.Context, m *games.Match) error {
	if m == nil || m.ID == "" {
		return fmt.Errorf("%w: match id is required", games.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.matches[m.ID]; exists {
		return fmt.Errorf("%w: match %s already exists", games.ErrValidation, m.ID)
	}
	s.matches[m.ID] = m.Clone()
	return nil
}

// GetMatch returns a copy of the match.
func (s *MemoryStore) GetMatch(_ context.Context, id string) (*games.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, fmt.Errorf("match %s: %w", id, games.ErrNotFound)
	}
	return m.Clone(), nil
}

// SaveMatch replaces a stored match.
func (s *MemoryStore) SaveMatch(_ context.Context, m *games.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[m.ID]; !ok {
		return fmt.Errorf("match %s: %w", m.ID, games.ErrNotFound)
	}
	s.matches[m.ID] = m.Clone()
	return nil
}

// DeleteMatch removes a match.
func (s *MemoryStore) DeleteMatch(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.matches[id]; !ok {
		return fmt.Errorf("match %s: %w", id, games.ErrNotFound)
	}
	delete(s.matches, id)
	return nil
}

// ListMatches returns the ids of the matches owned by hostID, oldest first.
func (s *MemoryStore) ListMatches(_ context.Context, hostID int64) ([]string, error) {
	s.mu.RLock()
	owned := make([]*games.Match, 0)
	for _, m := range s.matches {
		if m.HostID == hostID {
			owned = append(owned, m)
		}
	}
	s.mu.RUnlock()

	sort.Slice(owned, func(i, j int) bool {
		if owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].ID < owned[j].ID
		}
		return owned[i].CreatedAt.Before(owned[j].CreatedAt)
	})
	ids := make([]string, len(owned))
	for i, m := range owned {
		ids[i] = m.ID
	}
	return ids, nil
}

// Len returns the number of live matches.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}
