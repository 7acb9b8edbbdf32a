// Package fixture is a deterministic in-process source for development
// and tests. It serves a small fixed slate of games and mints file-less
// playlist URLs without touching the network.
package fixture

import (
	"context"
	"fmt"
	"time"

	"github.com/timewasted/nhl-gamecenter/internal/domain"
	"github.com/timewasted/nhl-gamecenter/internal/providers"
	"github.com/timewasted/nhl-gamecenter/internal/timeutil"
)

// SourceName identifies this source in logs and metrics.
const SourceName = "fixture"

// Source implements CatalogSource and PlaylistMinter over a static slate.
type Source struct {
	now   func() time.Time
	games []domain.GameRecord
}

// New builds a fixture source with one live and one finished game dated
// relative to the current day.
func New() *Source {
	s := &Source{now: time.Now}
	s.games = s.defaultSlate()
	return s
}

// NewWithGames builds a fixture source serving the given records.
func NewWithGames(games []domain.GameRecord) *Source {
	return &Source{now: time.Now, games: games}
}

func (s *Source) defaultSlate() []domain.GameRecord {
	now := s.now().UTC()
	today := now.Format(timeutil.DateLayout)
	liveStart := now.Add(-30 * time.Minute)
	finishedStart := now.Add(-26 * time.Hour)
	finishedEnd := finishedStart.Add(3 * time.Hour)
	three, two := 3, 2

	return []domain.GameRecord{
		{
			ID:         "2015020001",
			Season:     "2015",
			SeasonType: domain.SeasonRegular,
			HomeTeam:   "MON",
			AwayTeam:   "TOR",
			Date:       today,
			StartTime:  &liveStart,
			Live:       true,
			FrenchGame: true,
			Streams: domain.StreamSet{
				Live: domain.PerspectiveURLs{
					Home:   "http://fixture.invalid/2015020001_h_live.m3u8?f=1",
					Away:   "http://fixture.invalid/2015020001_a_live.m3u8?f=1",
					French: "http://fixture.invalid/2015020001_fr_live.m3u8?f=1",
				},
			},
		},
		{
			ID:         "2015020002",
			Season:     "2015",
			SeasonType: domain.SeasonRegular,
			HomeTeam:   "BOS",
			AwayTeam:   "NYR",
			HomeGoals:  &three,
			AwayGoals:  &two,
			Date:       finishedStart.Format(timeutil.DateLayout),
			StartTime:  &finishedStart,
			EndTime:    &finishedEnd,
			Streams: domain.StreamSet{
				Live: domain.PerspectiveURLs{
					Home: "http://fixture.invalid/2015020002_h_whole.m3u8?f=1",
					Away: "http://fixture.invalid/2015020002_a_whole.m3u8?f=1",
				},
				Condensed:  "http://fixture.invalid/2015020002_condensed.m3u8",
				Highlights: "http://fixture.invalid/2015020002_recap.m3u8",
			},
		},
	}
}

// ListGames returns the slate, trimmed to today's date when todayOnly.
func (s *Source) ListGames(ctx context.Context, todayOnly bool) ([]domain.GameRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !todayOnly {
		return append([]domain.GameRecord(nil), s.games...), nil
	}

	today := s.now().UTC().Format(timeutil.DateLayout)
	var out []domain.GameRecord
	for _, g := range s.games {
		if g.Date == today {
			out = append(out, g)
		}
	}
	return out, nil
}

// GameInfo returns a slate game by id.
func (s *Source) GameInfo(ctx context.Context, id string) (domain.GameRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.GameRecord{}, err
	}
	for _, g := range s.games {
		if g.ID == id || g.ShortID() == id {
			return g, nil
		}
	}
	return domain.GameRecord{}, &providers.LogicError{Op: "game_info", Message: fmt.Sprintf("game %q not found", id)}
}

// ArchivedSeasons lists one archived season per distinct slate season.
func (s *Source) ArchivedSeasons(ctx context.Context) ([]domain.ArchiveSeason, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var seasons []domain.ArchiveSeason
	for _, g := range s.games {
		if g.Season == "" || seen[g.Season] {
			continue
		}
		seen[g.Season] = true
		seasons = append(seasons, domain.ArchiveSeason{
			Season: g.Season,
			Months: []string{"10", "11", "12", "01", "02", "03", "04"},
		})
	}
	return seasons, nil
}

// ArchivedMonth returns the finished slate games.
func (s *Source) ArchivedMonth(ctx context.Context, season int, month string) ([]domain.GameRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := s.now()
	var out []domain.GameRecord
	for _, g := range s.games {
		if g.Season == fmt.Sprintf("%d", season) && g.Finished(now) {
			out = append(out, g)
		}
	}
	return out, nil
}

// MintMasterURL hands back the slate locator for the requested feed.
func (s *Source) MintMasterURL(ctx context.Context, rc domain.ResolutionContext) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	game, err := s.GameInfo(ctx, rc.Game.ID)
	if err != nil {
		return "", err
	}

	var u string
	switch rc.Type {
	case domain.StreamCondensed:
		u = game.Streams.Condensed
	case domain.StreamHighlights:
		u = game.Streams.Highlights
	default:
		u = game.Streams.Live.ForPerspective(rc.Perspective)
	}
	if u == "" {
		return "", fmt.Errorf("%s %s: %w", rc.Type, rc.Perspective, providers.ErrNoFeed)
	}
	return u, nil
}
