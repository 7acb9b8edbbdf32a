// Package teststubs provides shared fakes for package tests.
package teststubs

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/timewasted/nhl-gamecenter/internal/domain"
	"github.com/timewasted/nhl-gamecenter/internal/providers"
)

// StubSource is a canned CatalogSource and PlaylistMinter.
type StubSource struct {
	Games   []domain.GameRecord
	Seasons []domain.ArchiveSeason
	Master  string
	Err     error
	MintErr error

	// Notify, when non-nil, receives one value per ListGames call.
	Notify chan struct{}
	Calls  atomic.Int64
}

func (s *StubSource) ListGames(ctx context.Context, todayOnly bool) ([]domain.GameRecord, error) {
	s.Calls.Add(1)
	if s.Notify != nil {
		select {
		case s.Notify <- struct{}{}:
		default:
		}
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Games, nil
}

func (s *StubSource) GameInfo(ctx context.Context, id string) (domain.GameRecord, error) {
	if s.Err != nil {
		return domain.GameRecord{}, s.Err
	}
	for _, g := range s.Games {
		if g.ID == id {
			return g, nil
		}
	}
	return domain.GameRecord{}, &providers.LogicError{Op: "game_info", Message: "game not found: " + id}
}

func (s *StubSource) ArchivedSeasons(ctx context.Context) ([]domain.ArchiveSeason, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Seasons, nil
}

func (s *StubSource) ArchivedMonth(ctx context.Context, season int, month string) ([]domain.GameRecord, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Games, nil
}

func (s *StubSource) MintMasterURL(ctx context.Context, rc domain.ResolutionContext) (string, error) {
	if s.MintErr != nil {
		return "", s.MintErr
	}
	return s.Master, nil
}

// StubScoreboard is a canned ScoreboardSource.
type StubScoreboard struct {
	Board domain.Scoreboard
	Err   error
	Calls atomic.Int64
}

func (s *StubScoreboard) CurrentScoreboard(ctx context.Context) (domain.Scoreboard, error) {
	s.Calls.Add(1)
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Board, nil
}

// StubSink records the snapshots it receives.
type StubSink struct {
	mu    sync.Mutex
	games []domain.GameRecord
	board domain.Scoreboard
}

func (s *StubSink) ReplaceGames(games []domain.GameRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games = games
}

func (s *StubSink) SetScoreboard(board domain.Scoreboard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = board
}

// GameSnapshot returns the last games passed to ReplaceGames.
func (s *StubSink) GameSnapshot() []domain.GameRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.games
}

// BoardSnapshot returns the last scoreboard passed to SetScoreboard.
func (s *StubSink) BoardSnapshot() domain.Scoreboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board
}

// StubAuthenticator counts Login calls.
type StubAuthenticator struct {
	Err   error
	Calls atomic.Int64
}

func (s *StubAuthenticator) Login(ctx context.Context) error {
	s.Calls.Add(1)
	return s.Err
}
