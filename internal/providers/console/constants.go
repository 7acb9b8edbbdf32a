package console

// SourceName identifies this upstream generation in logs and metrics.
const SourceName = "console"

// Form field values and perspective codes are part of the servlet
// contract; casing and exact values matter.
const (
	perspectiveHomeCode   = "2"
	perspectiveAwayCode   = "4"
	perspectiveFrenchCode = "8"
)

// minArchivedSeason is the oldest season with resolvable streams. The
// server hosting 2009 and earlier answers 403 for the videos themselves,
// a permanent upstream limitation.
const minArchivedSeason = 2010

// frenchStreamTeams are the team codes whose games carry a French
// broadcast feed.
var frenchStreamTeams = map[string]bool{
	"MON": true, // Montreal Canadiens
	"OTT": true, // Ottawa Senators
}

func hasFrenchFeed(homeTeam, awayTeam string) bool {
	return frenchStreamTeams[homeTeam] || frenchStreamTeams[awayTeam]
}
