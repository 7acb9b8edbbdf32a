package store

import (
	"sync"

	"github.com/timewasted/nhl-gamecenter/internal/domain"
)

// MemoryStore keeps a thread-safe snapshot of the game catalog in memory,
// plus the most recent scoreboard fetch.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]domain.GameRecord
	order []string
	board domain.Scoreboard
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games: make(map[string]domain.GameRecord),
	}
}

// ListGames returns a copy of the current games in insertion order.
func (s *MemoryStore) ListGames() []domain.GameRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.GameRecord, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.games[id])
	}
	return result
}

// GetGame retrieves a game by its full upstream id.
func (s *MemoryStore) GetGame(id string) (domain.GameRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[id]
	return g, ok
}

// SetGames replaces the existing games with a new snapshot, preserving the
// slice order for listings.
func (s *MemoryStore) SetGames(games []domain.GameRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.games = make(map[string]domain.GameRecord, len(games))
	s.order = make([]string, 0, len(games))
	for _, g := range games {
		if _, seen := s.games[g.ID]; !seen {
			s.order = append(s.order, g.ID)
		}
		s.games[g.ID] = g
	}
}

// Scoreboard returns the most recently stored scoreboard, if any.
func (s *MemoryStore) Scoreboard() (domain.Scoreboard, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.board == nil {
		return nil, false
	}
	copied := make(domain.Scoreboard, len(s.board))
	for k, v := range s.board {
		copied[k] = v
	}
	return copied, true
}

// SetScoreboard replaces the cached scoreboard snapshot.
func (s *MemoryStore) SetScoreboard(board domain.Scoreboard) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make(domain.Scoreboard, len(board))
	for k, v := range board {
		copied[k] = v
	}
	s.board = copied
}
