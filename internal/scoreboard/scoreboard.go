// Package scoreboard fetches the JSONP live-score feed. Enrichment from
// it is best-effort everywhere; callers swallow its failures.
package scoreboard

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"

	"github.com/timewasted/nhl-gamecenter/internal/domain"
	"github.com/timewasted/nhl-gamecenter/internal/metrics"
	"github.com/timewasted/nhl-gamecenter/internal/providers"
	"github.com/timewasted/nhl-gamecenter/internal/timeutil"
)

// SourceName identifies the scoreboard feed in logs and metrics.
const SourceName = "scoreboard"

const (
	defaultBaseURL  = "http://live.nhle.com/GameData/GCScoreboard/"
	defaultAttempts = 3
	defaultDelay    = 500 * time.Millisecond
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config controls the scoreboard fetcher.
type Config struct {
	BaseURL  string
	Attempts uint
	Delay    time.Duration

	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *metrics.Recorder
}

// Fetcher retrieves the current day's scoreboard.
type Fetcher struct {
	baseURL  string
	attempts uint
	delay    time.Duration

	httpClient httpDoer
	logger     *slog.Logger
	metrics    *metrics.Recorder
	now        func() time.Time
}

// NewFetcher constructs a scoreboard fetcher.
func NewFetcher(cfg Config) *Fetcher {
	f := &Fetcher{
		baseURL:    cfg.BaseURL,
		attempts:   cfg.Attempts,
		delay:      cfg.Delay,
		httpClient: http.DefaultClient,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		now:        time.Now,
	}
	if f.baseURL == "" {
		f.baseURL = defaultBaseURL
	}
	if f.attempts == 0 {
		f.attempts = defaultAttempts
	}
	if f.delay <= 0 {
		f.delay = defaultDelay
	}
	if cfg.HTTPClient != nil {
		f.httpClient = cfg.HTTPClient
	}
	return f
}

type scoreboardPayload struct {
	Games []scoreboardGame `json:"games"`
}

type scoreboardGame struct {
	ID        providers.Flex `json:"id"`
	HomeScore providers.Flex `json:"hts"`
	AwayScore providers.Flex `json:"ats"`
}

// CurrentScoreboard fetches today's scoreboard, keyed by the 4-digit
// game id suffix. Transient failures are retried a bounded number of
// times before the error surfaces.
func (f *Fetcher) CurrentScoreboard(ctx context.Context) (domain.Scoreboard, error) {
	const op = "current_scoreboard"

	url := f.baseURL + f.now().UTC().Format(timeutil.DateLayout) + ".jsonp"
	start := f.now()

	var body []byte
	err := retry.Do(
		func() error {
			var ferr error
			body, ferr = f.fetch(ctx, op, url)
			return ferr
		},
		retry.Context(ctx),
		retry.Attempts(f.attempts),
		retry.Delay(f.delay),
		retry.LastErrorOnly(true),
	)
	f.metrics.RecordSourceAttempt(SourceName, f.now().Sub(start), err)
	if err != nil {
		return nil, err
	}
	return parseJSONP(op, body)
}

func (f *Fetcher) fetch(ctx context.Context, op, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &providers.NetworkError{Op: op, Err: err}
	}

	resp, err := f.httpClient.Do(req)
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
	return body, nil
}

// parseJSONP strips the padding wrapper by locating the first opening
// and last closing parenthesis, then keys each record by the last four
// characters of its composite id.
func parseJSONP(op string, body []byte) (domain.Scoreboard, error) {
	text := string(body)
	open := strings.Index(text, "(")
	end := strings.LastIndex(text, ")")
	if open < 0 || end <= open {
		return nil, &providers.LogicError{Op: op, Message: "unparseable scoreboard response"}
	}

	var payload scoreboardPayload
	if err := json.Unmarshal([]byte(text[open+1:end]), &payload); err != nil {
		return nil, &providers.LogicError{Op: op, Message: "unparseable scoreboard response"}
	}

	board := make(domain.Scoreboard, len(payload.Games))
	for _, g := range payload.Games {
		id := g.ID.String()
		if len(id) < 4 {
			continue
		}
		board[id[len(id)-4:]] = domain.ScoreboardEntry{
			HomeScore: g.HomeScore.String(),
			AwayScore: g.AwayScore.String(),
		}
	}
	return board, nil
}
