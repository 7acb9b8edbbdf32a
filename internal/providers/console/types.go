package console

import "encoding/xml"

// servletResult is the shared envelope of every legacy servlet response.
type servletResult struct {
	XMLName xml.Name        `xml:"result"`
	Code    string          `xml:"code"`
	Path    string          `xml:"path"`
	Games   []servletGame   `xml:"games>game"`
	Seasons []servletSeason `xml:"season"`
}

// servletGame mirrors one <game> node. Team abbreviations decode into
// slices because the servlet sometimes wraps them in a single-element
// list.
type servletGame struct {
	ID             string         `xml:"id"`
	Season         string         `xml:"season"`
	GameType       string         `xml:"type"`
	HomeTeam       []string       `xml:"homeTeam"`
	AwayTeam       []string       `xml:"awayTeam"`
	HomeGoals      string         `xml:"homeGoals"`
	AwayGoals      string         `xml:"awayGoals"`
	Date           string         `xml:"date"`
	GameTimeGMT    string         `xml:"gameTimeGMT"`
	GameEndTimeGMT string         `xml:"gameEndTimeGMT"`
	IsLive         string         `xml:"isLive"`
	Blocked        string         `xml:"blocked"`
	Program        servletProgram `xml:"program"`
}

type servletProgram struct {
	PublishPoint string `xml:"publishPoint"`
}

// servletSeason mirrors one <season id="YYYY"> node of the allarchives
// servlet; each <g> holds a "MM/DD" date with archived games.
type servletSeason struct {
	ID    string   `xml:"id,attr"`
	Dates []string `xml:"g"`
}

// highlightEntry mirrors one record of the highlights playlist servlet.
type highlightEntry struct {
	ID           string `json:"id"`
	PublishPoint string `json:"publishPoint"`
}
