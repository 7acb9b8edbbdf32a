package console

import (
	"context"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/timewasted/nhl-gamecenter/internal/domain"
	"github.com/timewasted/nhl-gamecenter/internal/providers"
)

// ArchivedSeasons lists the seasons with archived games, newest first.
// Seasons older than the resolvable CDN floor are dropped.
func (c *Client) ArchivedSeasons(ctx context.Context) ([]domain.ArchiveSeason, error) {
	const op = "archived_seasons"
	start := c.now()

	form := url.Values{}
	form.Set("date", "true")
	form.Set("isFlex", "true")

	result, err := c.postServlet(ctx, op, c.allArchivesURL, form)
	c.metrics.RecordSourceAttempt(SourceName, c.now().Sub(start), err)
	if err != nil {
		return nil, err
	}
	if len(result.Seasons) == 0 {
		return nil, &providers.LogicError{Op: op, Message: "no archived games found"}
	}

	seasons := make([]domain.ArchiveSeason, 0, len(result.Seasons))
	for _, s := range result.Seasons {
		year, err := strconv.Atoi(s.ID)
		if err != nil || year < minArchivedSeason {
			continue
		}
		season := domain.ArchiveSeason{Season: s.ID}
		seen := make(map[string]bool)
		for _, date := range s.Dates {
			month, _, _ := strings.Cut(date, "/")
			if month == "" || seen[month] {
				continue
			}
			seen[month] = true
			season.Months = append(season.Months, month)
		}
		seasons = append(seasons, season)
	}

	sort.Slice(seasons, func(i, j int) bool {
		return seasons[i].Season > seasons[j].Season
	})
	return seasons, nil
}

// ArchivedMonth lists the archived games of one season month. The raw
// publish points the servlet returns point at hosts that no longer serve
// them, so each is rewritten onto the CDN generation matching its season.
// Seasons below the resolvable floor yield an empty list without a
// network call.
func (c *Client) ArchivedMonth(ctx context.Context, season int, month string) ([]domain.GameRecord, error) {
	const op = "archived_month"

	if season < minArchivedSeason {
		return []domain.GameRecord{}, nil
	}

	start := c.now()
	form := url.Values{}
	form.Set("season", strconv.Itoa(season))
	form.Set("month", month)
	form.Set("isFlex", "true")

	result, err := c.postServlet(ctx, op, c.archivesURL, form)
	c.metrics.RecordSourceAttempt(SourceName, c.now().Sub(start), err)
	if err != nil {
		return nil, err
	}
	if len(result.Games) == 0 {
		return nil, &providers.LogicError{Op: op, Message: "no archived games found"}
	}

	games := make([]domain.GameRecord, 0, len(result.Games))
	for _, g := range result.Games {
		rec := mapGame(g)
		rec.Streams.Live = rewriteArchiveURLs(g.Program.PublishPoint, season, rec.HomeTeam, rec.AwayTeam)
		games = append(games, rec)
	}
	return games, nil
}

// rewriteArchiveURLs maps a stale archive publish point onto the CDN host
// and path layout that actually serves the season, deriving the away and
// French variants the same way the live rewrite does. The original query
// string is preserved verbatim on every variant.
func rewriteArchiveURLs(raw string, season int, homeTeam, awayTeam string) domain.PerspectiveURLs {
	if raw == "" {
		return domain.PerspectiveURLs{}
	}
	base, qs, _ := strings.Cut(raw, "?")

	var rewritten, french string
	switch {
	case season >= 2012:
		rewritten = "http://nlds150.cdnak.neulion.com/" + tailFrom(base, "/nlds_vod/")
		rewritten = strings.TrimSuffix(rewritten, ".mp4") + ".m3u8"
		french = strings.Replace(rewritten, "/nlds_vod/nhl/", "/nlds_vod/nhlfr/", 1)
		french = replaceFirst(french, "_h_", "_fr_")
		french = replaceFirst(french, "_whole_2", "_whole_1")
	case season >= minArchivedSeason:
		host := "http://nhl.cdnllnwnl.neulion.net/"
		if season == 2011 {
			host = "http://nhl.cdn.neulion.net/"
		}
		path := tailFrom(base, "u/nhlmobile/")
		path = strings.Replace(path, "/pc/", "/ced/", 1)
		path = strings.ReplaceAll(path, ".mp4", "")
		rewritten = host + path + "/v1/playlist.m3u8"
		french = strings.Replace(rewritten, "/vod/nhl/", "/vod/nhlfr/", 1)
		french = replaceFirst(french, "_h_", "_fr_")
	default:
		return domain.PerspectiveURLs{}
	}

	urls := domain.PerspectiveURLs{
		Home: withQuery(rewritten, qs),
		Away: withQuery(replaceFirst(rewritten, "_h_", "_a_"), qs),
	}
	if hasFrenchFeed(homeTeam, awayTeam) {
		urls.French = withQuery(french, qs)
	}
	return urls
}

// tailFrom returns the substring starting at marker, or the whole string
// when the marker is absent. The leading slash of a path marker is not
// part of the tail.
func tailFrom(s, marker string) string {
	idx := strings.Index(s, marker)
	if idx < 0 {
		return s
	}
	if strings.HasPrefix(marker, "/") {
		idx++
	}
	return s[idx:]
}

func withQuery(u, qs string) string {
	if qs == "" {
		return u
	}
	return u + "?" + qs
}
