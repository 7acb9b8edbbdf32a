package domain

import (
	"sort"
	"strconv"
	"time"
)

// StreamType selects which recording of a game to resolve.
type StreamType string

const (
	StreamLive       StreamType = "live"
	StreamCondensed  StreamType = "condensed"
	StreamHighlights StreamType = "highlights"
)

// Perspective selects which broadcast feed of a game to resolve.
type Perspective string

const (
	PerspectiveHome       Perspective = "home"
	PerspectiveAway       Perspective = "away"
	PerspectiveFrench     Perspective = "french"
	PerspectiveHomeGoalie Perspective = "home_goalie"
	PerspectiveAwayGoalie Perspective = "away_goalie"
)

// SeasonType mirrors the upstream two-digit season-type codes.
type SeasonType string

const (
	SeasonPre     SeasonType = "pre"
	SeasonRegular SeasonType = "regular"
	SeasonPost    SeasonType = "post"
)

// Code returns the zero-padded code the upstream servlets embed in ids.
func (s SeasonType) Code() string {
	switch s {
	case SeasonPre:
		return "01"
	case SeasonPost:
		return "03"
	default:
		return "02"
	}
}

// PerspectiveURLs holds the per-feed live stream locators for one game.
// An empty string means the feed does not exist.
type PerspectiveURLs struct {
	Home   string `json:"home,omitempty"`
	Away   string `json:"away,omitempty"`
	French string `json:"french,omitempty"`
}

// ForPerspective returns the URL for the given feed, if any.
func (p PerspectiveURLs) ForPerspective(persp Perspective) string {
	switch persp {
	case PerspectiveAway:
		return p.Away
	case PerspectiveFrench:
		return p.French
	default:
		return p.Home
	}
}

// StreamSet is the normalized set of stream locators attached to a game.
type StreamSet struct {
	Live       PerspectiveURLs `json:"live"`
	Condensed  string          `json:"condensed,omitempty"`
	Highlights string          `json:"highlights,omitempty"`
}

// GameRecord is the canonical normalized game shape produced by every
// catalog source generation.
type GameRecord struct {
	ID         string     `json:"id"`
	Season     string     `json:"season"`
	SeasonType SeasonType `json:"seasonType"`

	HomeTeam string `json:"homeTeam"`
	AwayTeam string `json:"awayTeam"`

	HomeGoals *int `json:"homeGoals,omitempty"`
	AwayGoals *int `json:"awayGoals,omitempty"`

	// Date is the schedule date (YYYY-MM-DD); start/end are UTC when known.
	Date      string     `json:"date"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`

	Live       bool `json:"live"`
	Blocked    bool `json:"blocked"`
	FrenchGame bool `json:"frenchGame"`

	Streams StreamSet `json:"streams"`
}

// ShortID returns the 4-digit game id suffix used by the scoreboard feed
// and the publish-point servlet.
func (g GameRecord) ShortID() string {
	id := g.ID
	if len(id) > 4 {
		id = id[len(id)-4:]
	}
	for len(id) < 4 {
		id = "0" + id
	}
	return id
}

// Finished reports whether the game is archived relative to now.
func (g GameRecord) Finished(now time.Time) bool {
	return g.EndTime != nil && !now.Before(*g.EndTime)
}

// InProgress reports whether the game is being played relative to now.
func (g GameRecord) InProgress(now time.Time) bool {
	if !g.Live || g.StartTime == nil {
		return false
	}
	if now.Before(*g.StartTime) {
		return false
	}
	return g.EndTime == nil || now.Before(*g.EndTime)
}

// ScoreboardEntry holds the live score strings for one game, keyed by the
// 4-digit game id suffix. Score values stay strings for display parity.
type ScoreboardEntry struct {
	HomeScore string `json:"hts"`
	AwayScore string `json:"ats"`
}

// Scoreboard maps the 4-digit game id suffix to its live scores.
type Scoreboard map[string]ScoreboardEntry

// PlaylistMap maps a bitrate in kbps (string form, for ordering parity with
// the configured preference list) to a directly fetchable variant URL. A
// single-rendition source yields one synthetic entry keyed "0".
type PlaylistMap map[string]string

// Bitrates returns the available bitrates sorted numerically descending.
func (p PlaylistMap) Bitrates() []string {
	out := make([]string, 0, len(p))
	for k := range p {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.Atoi(out[i])
		b, _ := strconv.Atoi(out[j])
		return a > b
	})
	return out
}

// ResolutionContext fully determines one stream resolution request.
type ResolutionContext struct {
	Game        GameRecord  `json:"game"`
	Type        StreamType  `json:"type"`
	Perspective Perspective `json:"perspective"`
	// FromStart requests playback from the scheduled start through the
	// local time-shift proxy, when one is configured.
	FromStart bool `json:"fromStart,omitempty"`
}

// ArchiveSeason lists the months of one archived season that hold games.
type ArchiveSeason struct {
	Season string   `json:"season"`
	Months []string `json:"months"`
}

// ListResponse is the payload returned for game listings.
type ListResponse struct {
	Date  string       `json:"date"`
	Games []GameRecord `json:"games"`
}
