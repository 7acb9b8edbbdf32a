package statsapi

import (
	"strconv"

	"github.com/timewasted/nhl-gamecenter/internal/domain"
	"github.com/timewasted/nhl-gamecenter/internal/timeutil"
)

// mapGame converts one schedule game into the canonical record.
func mapGame(date string, g scheduleGame) domain.GameRecord {
	rec := domain.GameRecord{
		ID:         strconv.FormatInt(g.GamePk, 10),
		SeasonType: seasonTypeFromCode(g.GameType),
		HomeTeam:   teamAbbrev(g.Teams.Home),
		AwayTeam:   teamAbbrev(g.Teams.Away),
		HomeGoals:  g.Teams.Home.Score,
		AwayGoals:  g.Teams.Away.Score,
		Date:       date,
		StartTime:  timeutil.ParseUpstream(g.GameDate),
		Live:       g.Status.AbstractGameState == "Live",
		FrenchGame: hasFrenchItem(g.Content),
	}
	if len(g.Season) >= 4 {
		rec.Season = g.Season[:4]
	}
	if rec.Date == "" && rec.StartTime != nil {
		rec.Date = rec.StartTime.Format(timeutil.DateLayout)
	}
	// The schedule carries no end timestamp; a Final state marks the
	// record archived as of its start.
	if g.Status.AbstractGameState == "Final" {
		rec.EndTime = rec.StartTime
	}

	if item := findEpgItem(g.Content, domain.StreamCondensed, domain.PerspectiveHome); item != nil {
		rec.Streams.Condensed = playbackURL(item)
	}
	if item := findEpgItem(g.Content, domain.StreamHighlights, domain.PerspectiveHome); item != nil {
		rec.Streams.Highlights = playbackURL(item)
	}
	return rec
}

func seasonTypeFromCode(code string) domain.SeasonType {
	switch code {
	case gameTypePreseason:
		return domain.SeasonPre
	case gameTypePlayoffs:
		return domain.SeasonPost
	default:
		return domain.SeasonRegular
	}
}

func teamAbbrev(t scheduleTeam) string {
	if abbrev := t.Team.Abbreviation.String(); abbrev != "" {
		return abbrev
	}
	return t.Team.Name
}

func hasFrenchItem(content gameContent) bool {
	for _, group := range content.Media.Epg {
		if group.Title != epgLive {
			continue
		}
		for _, item := range group.Items {
			if item.MediaFeedType == "FRENCH" {
				return true
			}
		}
	}
	return false
}

// feedTypeFor maps a perspective onto the epg mediaFeedType value.
func feedTypeFor(p domain.Perspective) string {
	switch p {
	case domain.PerspectiveAway:
		return "AWAY"
	case domain.PerspectiveFrench:
		return "FRENCH"
	case domain.PerspectiveHomeGoalie:
		return "HOME_GOALIE"
	case domain.PerspectiveAwayGoalie:
		return "AWAY_GOALIE"
	default:
		return "HOME"
	}
}

// findEpgItem locates the epg item for one stream type and perspective.
// Condensed and recap blocks are not always feed-tagged; for those the
// first item stands in when no tagged match exists.
func findEpgItem(content gameContent, st domain.StreamType, p domain.Perspective) *epgItem {
	var title string
	switch st {
	case domain.StreamCondensed:
		title = epgCondensed
	case domain.StreamHighlights:
		title = epgRecap
	default:
		title = epgLive
	}

	feedType := feedTypeFor(p)
	for gi := range content.Media.Epg {
		group := &content.Media.Epg[gi]
		if group.Title != title {
			continue
		}
		for i := range group.Items {
			if group.Items[i].MediaFeedType == feedType {
				return &group.Items[i]
			}
		}
		if title != epgLive && len(group.Items) > 0 {
			return &group.Items[0]
		}
	}
	return nil
}

// playbackURL picks the direct playback locator of an unauthenticated epg
// item, preferring the cloud HLS rendition.
func playbackURL(item *epgItem) string {
	var last string
	for _, pb := range item.Playbacks {
		if pb.URL == "" {
			continue
		}
		if pb.Name == mediaPlaybackScenario {
			return pb.URL
		}
		last = pb.URL
	}
	return last
}
