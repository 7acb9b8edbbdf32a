// Package stream resolves one game feed into a playable URL: master
// playlist mint, variant expansion, bitrate selection and authorization
// finalize.
package stream

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/timewasted/nhl-gamecenter/internal/domain"
	"github.com/timewasted/nhl-gamecenter/internal/metrics"
	"github.com/timewasted/nhl-gamecenter/internal/providers"
	"github.com/timewasted/nhl-gamecenter/internal/session"
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config wires a Resolver.
type Config struct {
	Minter providers.PlaylistMinter
	// Auth enables the single transparent re-login retry on auth
	// expiry; nil disables it.
	Auth      providers.Authenticator
	Session   *session.Session
	Timeshift TimeshiftProxy

	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    *metrics.Recorder
}

// Resolver runs the per-request resolution state machine. Resolution is
// sequential; callers drive one perspective at a time.
type Resolver struct {
	minter    providers.PlaylistMinter
	auth      providers.Authenticator
	session   *session.Session
	timeshift TimeshiftProxy

	httpClient httpDoer
	logger     *slog.Logger
	metrics    *metrics.Recorder
	now        func() time.Time
}

// NewResolver constructs a stream resolver.
func NewResolver(cfg Config) *Resolver {
	r := &Resolver{
		minter:     cfg.Minter,
		auth:       cfg.Auth,
		session:    cfg.Session,
		timeshift:  cfg.Timeshift,
		httpClient: http.DefaultClient,
		logger:     cfg.Logger,
		metrics:    cfg.Metrics,
		now:        time.Now,
	}
	switch {
	case cfg.HTTPClient != nil:
		r.httpClient = cfg.HTTPClient
	case cfg.Session != nil:
		r.httpClient = cfg.Session.Client()
	}
	return r
}

func (r *Resolver) userAgent() string {
	if r.session != nil {
		return r.session.UserAgent()
	}
	return session.DefaultUserAgent
}

// Playlists mints the master playlist for one feed and expands it into a
// PlaylistMap. An auth-expired mint triggers exactly one re-login and
// one retry of the mint.
func (r *Resolver) Playlists(ctx context.Context, rc domain.ResolutionContext) (domain.PlaylistMap, error) {
	var masterURL string
	err := providers.RetryOnce(ctx, r.auth, func() error {
		var merr error
		masterURL, merr = r.minter.MintMasterURL(ctx, rc)
		return merr
	})
	if err != nil {
		return nil, err
	}

	body, _, err := r.fetchURL(ctx, "fetch_master", masterURL)
	if err != nil {
		return nil, err
	}
	return expandVariants(masterURL, body)
}

// Resolve produces one playable URL for the feed: playlists, bitrate
// choice, authorization finalize and, when requested and possible, the
// play-from-start proxy rewrite.
func (r *Resolver) Resolve(ctx context.Context, rc domain.ResolutionContext, sel Selector) (string, error) {
	start := r.now()
	u, err := r.resolve(ctx, rc, sel)
	r.metrics.RecordResolution(r.now().Sub(start), err)
	if err != nil && r.logger != nil && !providers.FeedMissing(err) {
		r.logger.WarnContext(ctx, "stream resolution failed",
			"game", rc.Game.ID, "type", string(rc.Type), "perspective", string(rc.Perspective), "err", err)
	}
	return u, err
}

func (r *Resolver) resolve(ctx context.Context, rc domain.ResolutionContext, sel Selector) (string, error) {
	playlists, err := r.Playlists(ctx, rc)
	if err != nil {
		return "", err
	}
	bitrate, err := sel.Choose(playlists)
	if err != nil {
		return "", err
	}

	streamURL, headers, err := r.authorize(ctx, playlists[bitrate])
	if err != nil {
		return "", err
	}

	if rc.FromStart && r.timeshift.Enabled() && rc.Game.StartTime != nil {
		return r.timeshift.Wrap(streamURL, *rc.Game.StartTime, headers), nil
	}
	return withHeaderSuffix(streamURL, headers), nil
}

// Resolved is one successfully resolved perspective of a batch.
type Resolved struct {
	Perspective domain.Perspective `json:"perspective"`
	URL         string             `json:"url"`
}

// BatchResult reports a multi-perspective resolution. Perspectives with
// no feed are silently absent; other failures land in Failed.
type BatchResult struct {
	Streams []Resolved                   `json:"streams"`
	Failed  map[domain.Perspective]error `json:"-"`
	Chosen  string                       `json:"chosenBitrate,omitempty"`
}

// ResolveBatch resolves several perspectives of the same game and stream
// type sequentially. The first bitrate choice is reused for the rest of
// the batch so an interactive selector prompts at most once, and URLs
// already produced by another perspective are dropped as duplicates.
func (r *Resolver) ResolveBatch(ctx context.Context, game domain.GameRecord, st domain.StreamType, perspectives []domain.Perspective, sel Selector, fromStart bool) BatchResult {
	result := BatchResult{Failed: make(map[domain.Perspective]error)}
	seen := make(map[string]bool)

	for _, p := range perspectives {
		rc := domain.ResolutionContext{Game: game, Type: st, Perspective: p, FromStart: fromStart}

		active := sel
		if result.Chosen != "" {
			active = Selector{Preference: result.Chosen, Ask: sel.Ask}
		}

		playlists, err := r.Playlists(ctx, rc)
		if err != nil {
			if !providers.FeedMissing(err) {
				result.Failed[p] = err
			}
			continue
		}
		bitrate, err := active.Choose(playlists)
		if err != nil {
			result.Failed[p] = err
			continue
		}
		if len(playlists) > 1 && result.Chosen == "" {
			result.Chosen = bitrate
		}

		streamURL, headers, err := r.authorize(ctx, playlists[bitrate])
		if err != nil {
			if !providers.FeedMissing(err) {
				result.Failed[p] = err
			}
			continue
		}

		final := withHeaderSuffix(streamURL, headers)
		if fromStart && r.timeshift.Enabled() && game.StartTime != nil {
			final = r.timeshift.Wrap(streamURL, *game.StartTime, headers)
		}
		if seen[final] {
			continue
		}
		seen[final] = true
		result.Streams = append(result.Streams, Resolved{Perspective: p, URL: final})
	}
	return result
}
