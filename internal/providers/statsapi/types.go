package statsapi

import "github.com/timewasted/nhl-gamecenter/internal/providers"

type scheduleResponse struct {
	Dates []scheduleDate `json:"dates"`
}

type scheduleDate struct {
	Date  string         `json:"date"`
	Games []scheduleGame `json:"games"`
}

type scheduleGame struct {
	GamePk   int64         `json:"gamePk"`
	GameType string        `json:"gameType"`
	Season   string        `json:"season"`
	GameDate string        `json:"gameDate"`
	Status   gameStatus    `json:"status"`
	Teams    scheduleTeams `json:"teams"`
	Content  gameContent   `json:"content"`
}

type gameStatus struct {
	AbstractGameState string `json:"abstractGameState"`
	DetailedState     string `json:"detailedState"`
}

type scheduleTeams struct {
	Home scheduleTeam `json:"home"`
	Away scheduleTeam `json:"away"`
}

type scheduleTeam struct {
	Score *int     `json:"score"`
	Team  teamInfo `json:"team"`
}

type teamInfo struct {
	Name string `json:"name"`
	// Abbreviation has shipped as a scalar and as a singleton list.
	Abbreviation providers.Flex `json:"abbreviation"`
}

type gameContent struct {
	Media struct {
		Epg []epgGroup `json:"epg"`
	} `json:"media"`
}

type epgGroup struct {
	Title string    `json:"title"`
	Items []epgItem `json:"items"`
}

type epgItem struct {
	MediaFeedType   string         `json:"mediaFeedType"`
	MediaPlaybackID providers.Flex `json:"mediaPlaybackId"`
	EventID         providers.Flex `json:"eventId"`
	MediaState      string         `json:"mediaState"`
	Language        string         `json:"language"`
	Playbacks       []playback     `json:"playbacks"`
}

type playback struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type seasonsResponse struct {
	Seasons []seasonInfo `json:"seasons"`
}

type seasonInfo struct {
	SeasonID               string `json:"seasonId"`
	RegularSeasonStartDate string `json:"regularSeasonStartDate"`
	SeasonEndDate          string `json:"seasonEndDate"`
}

// Media framework envelope. Field casing is upstream contract.
type mediaAuthResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	SessionKey    string `json:"session_key"`
	SessionInfo   struct {
		SessionAttributes []sessionAttribute `json:"sessionAttributes"`
	} `json:"session_info"`
	UserVerifiedMediaResponse struct {
		UserVerifiedEvent []struct {
			UserVerifiedContent []struct {
				UserVerifiedMediaItem []mediaItem `json:"user_verified_media_item"`
			} `json:"user_verified_content"`
		} `json:"user_verified_event"`
	} `json:"user_verified_media_response"`
}

type sessionAttribute struct {
	AttributeName  string `json:"attributeName"`
	AttributeValue string `json:"attributeValue"`
}

type mediaItem struct {
	AuthStatus string `json:"auth_status"`
	URL        string `json:"url"`
}

func (r *mediaAuthResponse) firstMediaItem() *mediaItem {
	for _, ev := range r.UserVerifiedMediaResponse.UserVerifiedEvent {
		for _, content := range ev.UserVerifiedContent {
			for i := range content.UserVerifiedMediaItem {
				return &content.UserVerifiedMediaItem[i]
			}
		}
	}
	return nil
}
