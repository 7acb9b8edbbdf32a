package statsapi

// SourceName identifies this upstream generation in logs and metrics.
const SourceName = "statsapi"

const (
	defaultScheduleURL  = "https://statsapi.web.nhl.com/api/v1/schedule"
	defaultSeasonsURL   = "https://statsapi.web.nhl.com/api/v1/seasons"
	defaultMediaAuthURL = "https://mf.svc.nhl.com/ws/media/mf/v2.4/stream"
)

// scheduleExpand pulls the nested media metadata into the schedule
// response; without it the epg blocks are absent.
const scheduleExpand = "schedule.game.content.media.epg,schedule.teams"

// Media framework request constants. Field values are part of the
// upstream contract.
const (
	mediaPlatform         = "WEB_MEDIAPLAYER"
	mediaSubject          = "NHLTV"
	mediaPlaybackScenario = "HTTP_CLOUD_WIRED_WEB"
)

// Authorization statuses the media framework returns per feed.
const (
	statusSuccess       = "SuccessStatus"
	statusLoginRequired = "LoginRequiredStatus"
	statusNotAuthorized = "NotAuthorizedStatus"
)

// epg block titles by stream type.
const (
	epgLive      = "NHLTV"
	epgCondensed = "Extended Highlights"
	epgRecap     = "Recap"
)

// Game type codes in schedule payloads.
const (
	gameTypePreseason = "PR"
	gameTypeRegular   = "R"
	gameTypePlayoffs  = "P"
)
