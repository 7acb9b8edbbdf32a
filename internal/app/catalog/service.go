package catalog

import (
	"strconv"
	"strings"

	"github.com/timewasted/nhl-gamecenter/internal/domain"
)

// Store defines the contract for persisting and retrieving the game catalog.
type Store interface {
	ListGames() []domain.GameRecord
	GetGame(id string) (domain.GameRecord, bool)
	SetGames(games []domain.GameRecord)
	Scoreboard() (domain.Scoreboard, bool)
	SetScoreboard(board domain.Scoreboard)
}

// Service coordinates catalog reads and writes using a Store.
type Service struct {
	store Store
}

// NewService constructs a Service with the provided Store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Games returns the current slate with live scores folded in.
func (s *Service) Games() []domain.GameRecord {
	games := s.store.ListGames()
	board, ok := s.store.Scoreboard()
	if !ok {
		return games
	}
	for i := range games {
		games[i] = withScores(games[i], board)
	}
	return games
}

// GameByID returns a single game if present, with live scores folded in.
func (s *Service) GameByID(id string) (domain.GameRecord, bool) {
	g, ok := s.store.GetGame(id)
	if !ok {
		return domain.GameRecord{}, false
	}
	if board, has := s.store.Scoreboard(); has {
		g = withScores(g, board)
	}
	return g, true
}

// ReplaceGames swaps the stored catalog with a new snapshot.
func (s *Service) ReplaceGames(games []domain.GameRecord) {
	s.store.SetGames(games)
}

// Scoreboard returns the latest cached scoreboard, if one has been fetched.
func (s *Service) Scoreboard() (domain.Scoreboard, bool) {
	return s.store.Scoreboard()
}

// SetScoreboard replaces the cached scoreboard snapshot.
func (s *Service) SetScoreboard(board domain.Scoreboard) {
	s.store.SetScoreboard(board)
}

// withScores backfills goal totals from the scoreboard when the catalog
// source did not carry them. Scores already present win.
func withScores(g domain.GameRecord, board domain.Scoreboard) domain.GameRecord {
	entry, ok := board[g.ShortID()]
	if !ok {
		return g
	}
	if g.HomeGoals == nil {
		if n, ok := parseScore(entry.HomeScore); ok {
			g.HomeGoals = &n
		}
	}
	if g.AwayGoals == nil {
		if n, ok := parseScore(entry.AwayScore); ok {
			g.AwayGoals = &n
		}
	}
	return g
}

func parseScore(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
