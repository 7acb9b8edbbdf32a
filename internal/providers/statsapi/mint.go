package statsapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/timewasted/nhl-gamecenter/internal/domain"
	"github.com/timewasted/nhl-gamecenter/internal/providers"
)

// MintMasterURL resolves the master playlist URL for one feed through the
// media framework service. Condensed games and recaps are served without
// authorization and short-circuit to their direct playback locator.
func (c *Client) MintMasterURL(ctx context.Context, rc domain.ResolutionContext) (string, error) {
	const op = "mint_master_url"

	game, err := c.rawGame(ctx, op, rc.Game.ID)
	if err != nil {
		return "", err
	}
	item := findEpgItem(game.Content, rc.Type, rc.Perspective)
	if item == nil {
		return "", fmt.Errorf("%s %s: %w", rc.Type, rc.Perspective, providers.ErrNoFeed)
	}

	if rc.Type == domain.StreamCondensed || rc.Type == domain.StreamHighlights {
		if u := playbackURL(item); u != "" {
			return u, nil
		}
		return "", &providers.LogicError{Op: op, Message: "no playlists found"}
	}

	sessionKey, err := c.ensureSessionKey(ctx, item.EventID.String())
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("contentId", item.MediaPlaybackID.String())
	q.Set("playbackScenario", mediaPlaybackScenario)
	q.Set("sessionKey", sessionKey)
	q.Set("auth", "response")
	q.Set("format", "json")

	start := c.now()
	var payload mediaAuthResponse
	err = c.getJSON(ctx, op, c.mediaAuthURL+"?"+q.Encode(), &payload)
	c.metrics.RecordSourceAttempt(SourceName, c.now().Sub(start), err)
	if err != nil {
		return "", err
	}

	media := payload.firstMediaItem()
	if media == nil {
		return "", &providers.LogicError{Op: op, Message: "no playlists found"}
	}
	switch media.AuthStatus {
	case statusSuccess:
	case statusLoginRequired:
		// Reads as expired auth so the resolver's single re-login
		// retry covers it.
		return "", &providers.LogicError{Op: op, Message: "login required", Code: providers.CodeNoAccess}
	default:
		msg := media.AuthStatus
		if payload.StatusMessage != "" {
			msg = payload.StatusMessage
		}
		return "", &providers.LogicError{Op: op, Message: msg}
	}
	if media.URL == "" {
		return "", &providers.LogicError{Op: op, Message: "no playlists found"}
	}

	c.storeSessionAttributes(payload.SessionInfo.SessionAttributes)
	return media.URL, nil
}

// ensureSessionKey returns the cached playback session key, minting one
// from the event id when none is cached. Keys are throttled server-side;
// a minted key is persisted and reused until auth is invalidated.
func (c *Client) ensureSessionKey(ctx context.Context, eventID string) (string, error) {
	const op = "session_key"

	if c.session != nil {
		if key := c.session.SessionKey(); key != "" {
			return key, nil
		}
	}
	if eventID == "" {
		return "", &providers.LogicError{Op: op, Message: "no event id for session key mint"}
	}

	q := url.Values{}
	q.Set("eventId", eventID)
	q.Set("format", "json")
	q.Set("platform", mediaPlatform)
	q.Set("subject", mediaSubject)

	start := c.now()
	var payload mediaAuthResponse
	err := c.getJSON(ctx, op, c.mediaAuthURL+"?"+q.Encode(), &payload)
	c.metrics.RecordSourceAttempt(SourceName, c.now().Sub(start), err)
	if err != nil {
		return "", err
	}
	if payload.SessionKey == "" {
		return "", &providers.LogicError{Op: op, Message: "no session key in response, status " + strconv.Itoa(payload.StatusCode)}
	}

	if c.session != nil {
		if err := c.session.SetSessionKey(payload.SessionKey); err != nil {
			return "", err
		}
	}
	return payload.SessionKey, nil
}

// storeSessionAttributes folds the mint response's session attributes
// into the cookie store so playlist and segment fetches carry them.
func (c *Client) storeSessionAttributes(attrs []sessionAttribute) {
	if c.session == nil || len(attrs) == 0 {
		return
	}
	host := c.mediaAuthURL
	if u, err := url.Parse(c.mediaAuthURL); err == nil {
		host = u.Hostname()
	}
	for _, attr := range attrs {
		if attr.AttributeName == "" {
			continue
		}
		c.session.Jar().SetPseudo(attr.AttributeName, attr.AttributeValue, host)
	}
	if err := c.session.Save(); err != nil && c.logger != nil {
		c.logger.Warn("failed to persist session attributes", "err", err)
	}
}

// rawGame fetches the schedule entry for one game with its media
// metadata intact.
func (c *Client) rawGame(ctx context.Context, op, id string) (*scheduleGame, error) {
	q := url.Values{}
	q.Set("expand", scheduleExpand)
	q.Set("gamePk", id)

	start := c.now()
	var payload scheduleResponse
	err := c.getJSON(ctx, op, c.scheduleURL+"?"+q.Encode(), &payload)
	c.metrics.RecordSourceAttempt(SourceName, c.now().Sub(start), err)
	if err != nil {
		return nil, err
	}

	for di := range payload.Dates {
		for gi := range payload.Dates[di].Games {
			g := &payload.Dates[di].Games[gi]
			if strconv.FormatInt(g.GamePk, 10) == id {
				return g, nil
			}
		}
	}
	return nil, &providers.LogicError{Op: op, Message: fmt.Sprintf("game %q not found", id)}
}
