package console

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/timewasted/nhl-gamecenter/internal/domain"
	"github.com/timewasted/nhl-gamecenter/internal/providers"
)

const (
	homeHighlightSuffix   = "-X-h"
	awayHighlightSuffix   = "-X-a"
	frenchHighlightSuffix = "-X-fr"
)

// Highlights fetches the per-perspective highlight URLs for a game from
// the playlist servlet. A game without highlights yields an empty map,
// not an error.
func (c *Client) Highlights(ctx context.Context, season, id string) (map[domain.Perspective]string, error) {
	const op = "highlights"
	start := c.now()

	// TODO: postseason highlight ids need the playoff season-type code;
	// the servlet only ever shipped regular-season ids so far.
	baseID := season + domain.SeasonRegular.Code() + pad4(id)
	ids := strings.Join([]string{
		baseID + homeHighlightSuffix,
		baseID + awayHighlightSuffix,
		baseID + frenchHighlightSuffix,
	}, ",")

	q := url.Values{}
	q.Set("format", "json")
	q.Set("ids", ids)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.highlightsURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, &providers.NetworkError{Op: op, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordSourceAttempt(SourceName, c.now().Sub(start), err)
		return nil, &providers.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	c.metrics.RecordSourceAttempt(SourceName, c.now().Sub(start), nil)

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &providers.NetworkError{Op: op, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &providers.NetworkError{Op: op, Err: err}
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return map[domain.Perspective]string{}, nil
	}

	var entries []highlightEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, &providers.LogicError{Op: op, Message: "unparseable highlights response"}
	}

	urls := make(map[domain.Perspective]string)
	for _, e := range entries {
		if e.PublishPoint == "" {
			continue
		}
		switch e.ID {
		case baseID + homeHighlightSuffix:
			urls[domain.PerspectiveHome] = e.PublishPoint
		case baseID + awayHighlightSuffix:
			urls[domain.PerspectiveAway] = e.PublishPoint
		case baseID + frenchHighlightSuffix:
			urls[domain.PerspectiveFrench] = e.PublishPoint
		}
	}
	return urls, nil
}

func pad4(id string) string {
	if len(id) > 4 {
		id = id[len(id)-4:]
	}
	for len(id) < 4 {
		id = "0" + id
	}
	return id
}
