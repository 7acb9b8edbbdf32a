package catalog

import (
	"testing"

	"github.com/timewasted/nhl-gamecenter/internal/domain"
	"github.com/timewasted/nhl-gamecenter/internal/store"
)

func newService() *Service {
	return NewService(store.NewMemoryStore())
}

func TestServiceReplaceAndList(t *testing.T) {
	svc := newService()

	svc.ReplaceGames([]domain.GameRecord{
		{ID: "2015020001", HomeTeam: "MON", AwayTeam: "TOR"},
		{ID: "2015020002", HomeTeam: "BOS", AwayTeam: "NYR"},
	})

	games := svc.Games()
	if len(games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(games))
	}
	if games[0].ID != "2015020001" {
		t.Fatalf("expected insertion order preserved, got %s first", games[0].ID)
	}
}

func TestServiceGameByID(t *testing.T) {
	svc := newService()
	svc.ReplaceGames([]domain.GameRecord{{ID: "2015020001", HomeTeam: "MON"}})

	g, ok := svc.GameByID("2015020001")
	if !ok {
		t.Fatalf("expected game to be found")
	}
	if g.HomeTeam != "MON" {
		t.Fatalf("unexpected home team %s", g.HomeTeam)
	}

	if _, ok := svc.GameByID("2015029999"); ok {
		t.Fatalf("expected unknown id to be absent")
	}
}

func TestServiceBackfillsScoresFromScoreboard(t *testing.T) {
	svc := newService()
	svc.ReplaceGames([]domain.GameRecord{{ID: "2015020001", HomeTeam: "MON", AwayTeam: "TOR"}})
	svc.SetScoreboard(domain.Scoreboard{
		"0001": {HomeScore: "3", AwayScore: "2"},
	})

	g, ok := svc.GameByID("2015020001")
	if !ok {
		t.Fatalf("expected game to be found")
	}
	if g.HomeGoals == nil || *g.HomeGoals != 3 {
		t.Fatalf("expected home goals backfilled to 3, got %v", g.HomeGoals)
	}
	if g.AwayGoals == nil || *g.AwayGoals != 2 {
		t.Fatalf("expected away goals backfilled to 2, got %v", g.AwayGoals)
	}
}

func TestServiceScoreboardDoesNotOverrideCatalogScores(t *testing.T) {
	svc := newService()
	four := 4
	one := 1
	svc.ReplaceGames([]domain.GameRecord{
		{ID: "2015020001", HomeGoals: &four, AwayGoals: &one},
	})
	svc.SetScoreboard(domain.Scoreboard{
		"0001": {HomeScore: "9", AwayScore: "9"},
	})

	g, _ := svc.GameByID("2015020001")
	if *g.HomeGoals != 4 || *g.AwayGoals != 1 {
		t.Fatalf("expected catalog scores to win, got %d-%d", *g.HomeGoals, *g.AwayGoals)
	}
}

func TestServiceIgnoresNonNumericScores(t *testing.T) {
	svc := newService()
	svc.ReplaceGames([]domain.GameRecord{{ID: "2015020001"}})
	svc.SetScoreboard(domain.Scoreboard{
		"0001": {HomeScore: "3 (OT)", AwayScore: ""},
	})

	g, _ := svc.GameByID("2015020001")
	if g.HomeGoals != nil || g.AwayGoals != nil {
		t.Fatalf("expected unparseable scores to leave goals unset")
	}
}

func TestServiceListFoldsScores(t *testing.T) {
	svc := newService()
	svc.ReplaceGames([]domain.GameRecord{
		{ID: "2015020001"},
		{ID: "2015020002"},
	})
	svc.SetScoreboard(domain.Scoreboard{
		"0002": {HomeScore: "1", AwayScore: "0"},
	})

	games := svc.Games()
	if games[0].HomeGoals != nil {
		t.Fatalf("expected game without scoreboard entry to stay unset")
	}
	if games[1].HomeGoals == nil || *games[1].HomeGoals != 1 {
		t.Fatalf("expected second game to pick up scoreboard score")
	}
}
