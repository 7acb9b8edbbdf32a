package store

import (
	"testing"

	"github.com/timewasted/nhl-gamecenter/internal/domain"
)

func TestMemoryStoreSetAndGet(t *testing.T) {
	s := NewMemoryStore()

	games := []domain.GameRecord{
		{ID: "2015020001", HomeTeam: "MON"},
		{ID: "2015020002", HomeTeam: "TOR"},
	}

	s.SetGames(games)

	if got := len(s.ListGames()); got != 2 {
		t.Fatalf("expected 2 games, got %d", got)
	}

	game, ok := s.GetGame("2015020001")
	if !ok {
		t.Fatalf("expected to find game 2015020001")
	}
	if game.HomeTeam != "MON" {
		t.Fatalf("unexpected home team %s", game.HomeTeam)
	}
}

func TestMemoryStoreGetNotFound(t *testing.T) {
	s := NewMemoryStore()
	if _, ok := s.GetGame("missing"); ok {
		t.Fatalf("expected missing id to return false")
	}
}

func TestMemoryStoreSetReplacesSnapshot(t *testing.T) {
	s := NewMemoryStore()
	s.SetGames([]domain.GameRecord{{ID: "old"}})

	s.SetGames([]domain.GameRecord{{ID: "new"}})

	if _, ok := s.GetGame("old"); ok {
		t.Fatalf("expected old game to be removed after replace")
	}
	if _, ok := s.GetGame("new"); !ok {
		t.Fatalf("expected new game to be present")
	}
}

func TestMemoryStoreListPreservesOrder(t *testing.T) {
	s := NewMemoryStore()
	s.SetGames([]domain.GameRecord{
		{ID: "2015020010"},
		{ID: "2015020002"},
		{ID: "2015020007"},
	})

	list := s.ListGames()
	want := []string{"2015020010", "2015020002", "2015020007"}
	for i, id := range want {
		if list[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, list[i].ID)
		}
	}
}

func TestMemoryStoreListReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	s.SetGames([]domain.GameRecord{{ID: "copy", HomeTeam: "BOS"}})

	list := s.ListGames()
	if len(list) != 1 {
		t.Fatalf("expected 1 game, got %d", len(list))
	}

	list[0].HomeTeam = "mutated"

	game, ok := s.GetGame("copy")
	if !ok {
		t.Fatalf("expected to find game")
	}
	if game.HomeTeam != "BOS" {
		t.Fatalf("expected store to remain unchanged, got %s", game.HomeTeam)
	}
}

func TestMemoryStoreScoreboard(t *testing.T) {
	s := NewMemoryStore()

	if _, ok := s.Scoreboard(); ok {
		t.Fatalf("expected no scoreboard before first set")
	}

	s.SetScoreboard(domain.Scoreboard{
		"0001": {HomeScore: "3", AwayScore: "2"},
	})

	board, ok := s.Scoreboard()
	if !ok {
		t.Fatalf("expected scoreboard after set")
	}
	if board["0001"].HomeScore != "3" {
		t.Fatalf("unexpected home score %s", board["0001"].HomeScore)
	}

	board["0001"] = domain.ScoreboardEntry{HomeScore: "9"}
	fresh, _ := s.Scoreboard()
	if fresh["0001"].HomeScore != "3" {
		t.Fatalf("expected stored scoreboard to be isolated from returned copy, got %s", fresh["0001"].HomeScore)
	}
}
