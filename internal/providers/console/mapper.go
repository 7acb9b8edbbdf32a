package console

import (
	"strconv"
	"strings"

	"github.com/timewasted/nhl-gamecenter/internal/domain"
	"github.com/timewasted/nhl-gamecenter/internal/providers"
	"github.com/timewasted/nhl-gamecenter/internal/timeutil"
)

// mapGame converts one servlet game node into the canonical record.
func mapGame(g servletGame) domain.GameRecord {
	home := providers.First(g.HomeTeam)
	away := providers.First(g.AwayTeam)

	rec := domain.GameRecord{
		ID:         g.ID,
		Season:     g.Season,
		SeasonType: seasonTypeFromCode(g.GameType),
		HomeTeam:   home,
		AwayTeam:   away,
		HomeGoals:  optionalInt(g.HomeGoals),
		AwayGoals:  optionalInt(g.AwayGoals),
		Date:       timeutil.NormalizeDate(g.Date),
		StartTime:  timeutil.ParseUpstream(g.GameTimeGMT),
		EndTime:    timeutil.ParseUpstream(g.GameEndTimeGMT),
		Live:       flagSet(g.IsLive),
		Blocked:    flagSet(g.Blocked),
		FrenchGame: hasFrenchFeed(home, away),
	}

	// A ten-digit id carries season and type; the dedicated fields win
	// when both are present.
	if len(g.ID) == 10 {
		if rec.Season == "" {
			rec.Season = g.ID[:4]
		}
		if g.GameType == "" {
			rec.SeasonType = seasonTypeFromCode(g.ID[4:6])
		}
	}

	rec.Streams.Live = normalizePublishPoint(g.Program.PublishPoint, home, away)
	return rec
}

func seasonTypeFromCode(code string) domain.SeasonType {
	switch code {
	case "01", "1", "PR":
		return domain.SeasonPre
	case "03", "3", "P":
		return domain.SeasonPost
	default:
		return domain.SeasonRegular
	}
}

func optionalInt(value string) *int {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &n
}

func flagSet(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// normalizePublishPoint rewrites the raw publish point into directly
// fetchable per-perspective HLS locators. The servlet hands out a single
// home-feed URL in an adaptive pseudo-scheme; the away and French feeds
// are derived by marker substitution.
func normalizePublishPoint(raw, homeTeam, awayTeam string) domain.PerspectiveURLs {
	if raw == "" {
		return domain.PerspectiveURLs{}
	}

	base := strings.Replace(raw, "adaptive://", "http://", 1)
	base = strings.ReplaceAll(base, "_pc.mp4", ".mp4.m3u8")

	urls := domain.PerspectiveURLs{
		Home: base,
		Away: replaceFirst(base, "_h_", "_a_"),
	}
	if hasFrenchFeed(homeTeam, awayTeam) {
		french := strings.Replace(base, "/nlds_vod/nhl/", "/nlds_vod/nhlfr/", 1)
		urls.French = replaceFirst(french, "_h_", "_fr_")
	}
	return urls
}

func replaceFirst(s, old, new string) string {
	return strings.Replace(s, old, new, 1)
}
