// Package console talks to the legacy XML servlet generation of the
// upstream: games list, archives, publish-point minting and the
// highlights playlist servlet.
package console

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/timewasted/nhl-gamecenter/internal/domain"
	"github.com/timewasted/nhl-gamecenter/internal/metrics"
	"github.com/timewasted/nhl-gamecenter/internal/providers"
	"github.com/timewasted/nhl-gamecenter/internal/session"
)

// Default servlet endpoints. Overridable for tests and for the day the
// upstream moves hosts again.
const (
	defaultConsoleURL      = "https://gamecenter.nhl.com/nhlgc/servlets/simpleconsole"
	defaultGamesURL        = "https://gamecenter.nhl.com/nhlgc/servlets/games"
	defaultPublishPointURL = "https://gamecenter.nhl.com/nhlgc/servlets/publishpoint"
	defaultAllArchivesURL  = "https://gamecenter.nhl.com/nhlgc/servlets/allarchives"
	defaultArchivesURL     = "https://gamecenter.nhl.com/nhlgc/servlets/archives"
	defaultHighlightsURL   = "http://video.nhl.com/videocenter/servlets/playlist"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config controls how the console client reaches the servlets.
type Config struct {
	ConsoleURL      string
	GamesURL        string
	PublishPointURL string
	AllArchivesURL  string
	ArchivesURL     string
	HighlightsURL   string

	Session    *session.Session
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *metrics.Recorder
}

// Client fetches games from the legacy servlets and maps them to domain
// models. It implements CatalogSource, PlaylistMinter and
// HighlightsSource.
type Client struct {
	consoleURL      string
	gamesURL        string
	publishPointURL string
	allArchivesURL  string
	archivesURL     string
	highlightsURL   string

	session    *session.Session
	httpClient httpDoer
	logger     *slog.Logger
	metrics    *metrics.Recorder
	now        func() time.Time
}

// NewClient constructs a console client with the provided configuration.
func NewClient(cfg Config) *Client {
	c := &Client{
		consoleURL:      orDefault(cfg.ConsoleURL, defaultConsoleURL),
		gamesURL:        orDefault(cfg.GamesURL, defaultGamesURL),
		publishPointURL: orDefault(cfg.PublishPointURL, defaultPublishPointURL),
		allArchivesURL:  orDefault(cfg.AllArchivesURL, defaultAllArchivesURL),
		archivesURL:     orDefault(cfg.ArchivesURL, defaultArchivesURL),
		highlightsURL:   orDefault(cfg.HighlightsURL, defaultHighlightsURL),
		session:         cfg.Session,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
		now:             time.Now,
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

// Bootstrap touches the console servlet once. The upstream needs this to
// seed a session clock cookie before it serves valid GMT timestamps, so
// it runs at construction time and the cookies are flushed after.
func (c *Client) Bootstrap(ctx context.Context) error {
	const op = "bootstrap"
	start := c.now()

	form := url.Values{}
	form.Set("isFlex", "true")
	_, err := c.postServlet(ctx, op, c.consoleURL, form)
	c.metrics.RecordSourceAttempt(SourceName, c.now().Sub(start), err)
	if err != nil {
		return err
	}
	if c.session != nil {
		return c.session.Save()
	}
	return nil
}

// ListGames fetches today's (todayOnly) or recent games.
func (c *Client) ListGames(ctx context.Context, todayOnly bool) ([]domain.GameRecord, error) {
	const op = "list_games"
	start := c.now()

	form := url.Values{}
	form.Set("format", "xml")
	form.Set("isFlex", "true")
	if todayOnly {
		form.Set("app", "true")
	}

	result, err := c.postServlet(ctx, op, c.gamesURL, form)
	c.metrics.RecordSourceAttempt(SourceName, c.now().Sub(start), err)
	if err != nil {
		return nil, err
	}
	if len(result.Games) == 0 {
		return nil, &providers.LogicError{Op: op, Message: "no games found"}
	}

	games := make([]domain.GameRecord, 0, len(result.Games))
	for _, g := range result.Games {
		games = append(games, mapGame(g))
	}
	logWith(ctx, c.logger, "fetched games list", "op", op, "count", len(games), "today_only", todayOnly)
	return games, nil
}

// GameInfo fetches a single game by id, matching either the full ten
// digit id or the 4-digit suffix.
func (c *Client) GameInfo(ctx context.Context, id string) (domain.GameRecord, error) {
	const op = "game_info"

	games, err := c.ListGames(ctx, false)
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

// MintMasterURL resolves the master playlist URL for one feed. Live games
// with a known stream locator use it directly; everything else goes
// through the publish-point servlet. Highlights come from the highlights
// servlet instead.
func (c *Client) MintMasterURL(ctx context.Context, rc domain.ResolutionContext) (string, error) {
	const op = "mint_master_url"

	if rc.Type == domain.StreamHighlights {
		return c.highlightURL(ctx, rc)
	}

	code, err := perspectiveCode(rc.Perspective)
	if err != nil {
		return "", err
	}
	if rc.Type == domain.StreamLive {
		if u := rc.Game.Streams.Live.ForPerspective(rc.Perspective); u != "" {
			return u, nil
		}
	}

	plid := make([]byte, 16)
	if _, err := rand.Read(plid); err != nil {
		return "", &providers.LogicError{Op: op, Message: err.Error()}
	}

	start := c.now()
	form := url.Values{}
	form.Set("type", "game")
	form.Set("gs", string(rc.Type))
	form.Set("ft", code)
	form.Set("id", rc.Game.Season+rc.Game.SeasonType.Code()+rc.Game.ShortID())
	form.Set("plid", hex.EncodeToString(plid))

	result, err := c.postServlet(ctx, op, c.publishPointURL, form)
	c.metrics.RecordSourceAttempt(SourceName, c.now().Sub(start), err)
	if err != nil {
		return "", err
	}
	if result.Path == "" {
		return "", &providers.LogicError{Op: op, Message: "no playlists found"}
	}

	// The servlet hands back the tablet rendition path.
	return strings.ReplaceAll(result.Path, "_ipad", ""), nil
}

func perspectiveCode(p domain.Perspective) (string, error) {
	switch p {
	case domain.PerspectiveHome:
		return perspectiveHomeCode, nil
	case domain.PerspectiveAway:
		return perspectiveAwayCode, nil
	case domain.PerspectiveFrench:
		return perspectiveFrenchCode, nil
	default:
		// The legacy servlets never carried goalie feeds.
		return "", fmt.Errorf("%s: %w", p, providers.ErrNoFeed)
	}
}

func (c *Client) highlightURL(ctx context.Context, rc domain.ResolutionContext) (string, error) {
	urls, err := c.Highlights(ctx, rc.Game.Season, rc.Game.ShortID())
	if err != nil {
		return "", err
	}
	u, ok := urls[rc.Perspective]
	if !ok || u == "" {
		return "", fmt.Errorf("%s highlights: %w", rc.Perspective, providers.ErrNoFeed)
	}
	return u, nil
}

// postServlet POSTs a form to a servlet and decodes the shared XML
// envelope, translating transport failures, non-200 statuses and the
// noaccess application code into the error taxonomy.
func (c *Client) postServlet(ctx context.Context, op, rawURL string, form url.Values) (*servletResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &providers.NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &providers.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &providers.NetworkError{Op: op, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &providers.NetworkError{Op: op, Err: err}
	}

	var result servletResult
	if err := xml.Unmarshal(bytes.TrimSpace(body), &result); err != nil {
		return nil, &providers.LogicError{Op: op, Message: "unparseable servlet response"}
	}
	if result.Code == providers.CodeNoAccess {
		return nil, &providers.LogicError{Op: op, Message: "access denied", Code: providers.CodeNoAccess}
	}
	return &result, nil
}

func logWith(ctx context.Context, logger *slog.Logger, msg string, args ...any) {
	if logger == nil {
		return
	}
	args = append(args, slog.String("source", SourceName))
	logger.InfoContext(ctx, msg, args...)
}
