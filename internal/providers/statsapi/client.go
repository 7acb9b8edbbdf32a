// Package statsapi talks to the JSON schedule generation of the upstream
// and mints playback grants through the media framework service.
package statsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/timewasted/nhl-gamecenter/internal/domain"
	"github.com/timewasted/nhl-gamecenter/internal/metrics"
	"github.com/timewasted/nhl-gamecenter/internal/providers"
	"github.com/timewasted/nhl-gamecenter/internal/session"
	"github.com/timewasted/nhl-gamecenter/internal/timeutil"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config controls how the statsapi client reaches the upstream.
type Config struct {
	ScheduleURL  string
	SeasonsURL   string
	MediaAuthURL string

	// RecentDays is how far back the non-today listing reaches.
	RecentDays int

	Session    *session.Session
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *metrics.Recorder
}

// Client fetches games from the schedule API and maps them to domain
// models. It implements CatalogSource and PlaylistMinter.
type Client struct {
	scheduleURL  string
	seasonsURL   string
	mediaAuthURL string
	recentDays   int

	session    *session.Session
	httpClient httpDoer
	logger     *slog.Logger
	metrics    *metrics.Recorder
	now        func() time.Time
}

// NewClient constructs a statsapi client with the provided configuration.
func NewClient(cfg Config) *Client {
	c := &Client{
		scheduleURL:  orDefault(cfg.ScheduleURL, defaultScheduleURL),
		seasonsURL:   orDefault(cfg.SeasonsURL, defaultSeasonsURL),
		mediaAuthURL: orDefault(cfg.MediaAuthURL, defaultMediaAuthURL),
		recentDays:   cfg.RecentDays,
		session:      cfg.Session,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
		now:          time.Now,
	}
	if c.recentDays <= 0 {
		c.recentDays = 3
	}
	switch {
	case cfg.HTTPClient != nil:
		c.httpClient = cfg.HTTPClient
	case cfg.Session != nil:
		c.httpClient = cfg.Session.Client()
	default:
		c.httpClient = http.DefaultClient
	}
	return c
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// ListGames fetches today's (todayOnly) or recent games from the
// schedule endpoint.
func (c *Client) ListGames(ctx context.Context, todayOnly bool) ([]domain.GameRecord, error) {
	const op = "list_games"

	today := c.now().UTC().Format(timeutil.DateLayout)
	q := url.Values{}
	q.Set("expand", scheduleExpand)
	if todayOnly {
		q.Set("date", today)
	} else {
		start := c.now().UTC().AddDate(0, 0, -c.recentDays)
		q.Set("startDate", start.Format(timeutil.DateLayout))
		q.Set("endDate", today)
	}

	games, err := c.fetchSchedule(ctx, op, q)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, &providers.LogicError{Op: op, Message: "no games found"}
	}
	return games, nil
}

// GameInfo fetches a single game by id.
func (c *Client) GameInfo(ctx context.Context, id string) (domain.GameRecord, error) {
	const op = "game_info"

	q := url.Values{}
	q.Set("expand", scheduleExpand)
	q.Set("gamePk", id)

	games, err := c.fetchSchedule(ctx, op, q)
	if err != nil {
		return domain.GameRecord{}, err
	}
	for _, g := range games {
		if g.ID == id || g.ShortID() == id {
			return g, nil
		}
	}
	return domain.GameRecord{}, &providers.LogicError{Op: op, Message: fmt.Sprintf("game %q not found", id)}
}

func (c *Client) fetchSchedule(ctx context.Context, op string, q url.Values) ([]domain.GameRecord, error) {
	start := c.now()

	var payload scheduleResponse
	err := c.getJSON(ctx, op, c.scheduleURL+"?"+q.Encode(), &payload)
	c.metrics.RecordSourceAttempt(SourceName, c.now().Sub(start), err)
	if err != nil {
		return nil, err
	}

	var games []domain.GameRecord
	for _, date := range payload.Dates {
		for _, g := range date.Games {
			games = append(games, mapGame(date.Date, g))
		}
	}
	if c.logger != nil {
		c.logger.DebugContext(ctx, "fetched schedule", "op", op, "count", len(games), "source", SourceName)
	}
	return games, nil
}

// getJSON issues an authenticated GET and decodes the JSON body,
// translating failures into the error taxonomy.
func (c *Client) getJSON(ctx context.Context, op, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &providers.NetworkError{Op: op, Err: err}
	}
	if c.session != nil {
		if token := c.session.AuthToken(); token != "" {
			req.Header.Set("Authorization", token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &providers.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &providers.NetworkError{Op: op, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &providers.LogicError{Op: op, Message: "unparseable schedule response"}
	}
	return nil
}

// ArchivedSeasons lists seasons from the seasons endpoint, newest first,
// with months derived from the regular-season date span.
func (c *Client) ArchivedSeasons(ctx context.Context) ([]domain.ArchiveSeason, error) {
	const op = "archived_seasons"
	start := c.now()

	var payload seasonsResponse
	err := c.getJSON(ctx, op, c.seasonsURL, &payload)
	c.metrics.RecordSourceAttempt(SourceName, c.now().Sub(start), err)
	if err != nil {
		return nil, err
	}
	if len(payload.Seasons) == 0 {
		return nil, &providers.LogicError{Op: op, Message: "no archived games found"}
	}

	seasons := make([]domain.ArchiveSeason, 0, len(payload.Seasons))
	for i := len(payload.Seasons) - 1; i >= 0; i-- {
		s := payload.Seasons[i]
		if len(s.SeasonID) < 4 {
			continue
		}
		seasons = append(seasons, domain.ArchiveSeason{
			Season: s.SeasonID[:4],
			Months: monthsBetween(s.RegularSeasonStartDate, s.SeasonEndDate),
		})
	}
	return seasons, nil
}

// ArchivedMonth lists the games of one month of a season via a
// date-bounded schedule query.
func (c *Client) ArchivedMonth(ctx context.Context, season int, month string) ([]domain.GameRecord, error) {
	const op = "archived_month"

	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return nil, &providers.LogicError{Op: op, Message: fmt.Sprintf("invalid month %q", month)}
	}
	// Months before July belong to the calendar year after the season's
	// starting year.
	year := season
	if m < 7 {
		year = season + 1
	}
	first := time.Date(year, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	q := url.Values{}
	q.Set("expand", scheduleExpand)
	q.Set("startDate", first.Format(timeutil.DateLayout))
	q.Set("endDate", last.Format(timeutil.DateLayout))

	games, err := c.fetchSchedule(ctx, op, q)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, &providers.LogicError{Op: op, Message: "no archived games found"}
	}
	return games, nil
}

func monthsBetween(startDate, endDate string) []string {
	start, err := time.Parse(timeutil.DateLayout, startDate)
	if err != nil {
		return nil
	}
	end, err := time.Parse(timeutil.DateLayout, endDate)
	if err != nil {
		return nil
	}

	var months []string
	for cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC); !cur.After(end); cur = cur.AddDate(0, 1, 0) {
		months = append(months, fmt.Sprintf("%02d", int(cur.Month())))
	}
	return months
}
