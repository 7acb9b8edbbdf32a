package providers

import (
	"context"
	"log/slog"

	"github.com/timewasted/nhl-gamecenter/internal/domain"
	"github.com/timewasted/nhl-gamecenter/internal/metrics"
)

// reloginSource wraps a CatalogSource with the one-re-login retry policy:
// a call that fails with HTTP 401 or an upstream noaccess code triggers a
// single transparent login and one retry of the same request.
type reloginSource struct {
	inner   CatalogSource
	auth    Authenticator
	name    string
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewReloginSource decorates inner with the auth-expiry retry policy.
func NewReloginSource(inner CatalogSource, auth Authenticator, name string, logger *slog.Logger, recorder *metrics.Recorder) CatalogSource {
	return &reloginSource{
		inner:   inner,
		auth:    auth,
		name:    name,
		logger:  logger,
		metrics: recorder,
	}
}

func (r *reloginSource) ListGames(ctx context.Context, todayOnly bool) ([]domain.GameRecord, error) {
	var games []domain.GameRecord
	err := r.retryOnce(ctx, "list_games", func() error {
		var err error
		games, err = r.inner.ListGames(ctx, todayOnly)
		return err
	})
	return games, err
}

func (r *reloginSource) GameInfo(ctx context.Context, id string) (domain.GameRecord, error) {
	var game domain.GameRecord
	err := r.retryOnce(ctx, "game_info", func() error {
		var err error
		game, err = r.inner.GameInfo(ctx, id)
		return err
	})
	return game, err
}

func (r *reloginSource) ArchivedSeasons(ctx context.Context) ([]domain.ArchiveSeason, error) {
	var seasons []domain.ArchiveSeason
	err := r.retryOnce(ctx, "archived_seasons", func() error {
		var err error
		seasons, err = r.inner.ArchivedSeasons(ctx)
		return err
	})
	return seasons, err
}

func (r *reloginSource) ArchivedMonth(ctx context.Context, season int, month string) ([]domain.GameRecord, error) {
	var games []domain.GameRecord
	err := r.retryOnce(ctx, "archived_month", func() error {
		var err error
		games, err = r.inner.ArchivedMonth(ctx, season, month)
		return err
	})
	return games, err
}

// retryOnce delegates the auth-expiry policy to RetryOnce, instrumenting
// the re-login with the source name and failing operation.
func (r *reloginSource) retryOnce(ctx context.Context, op string, call func() error) error {
	if r.auth == nil {
		return call()
	}

	var cause error
	observed := func() error {
		cause = call()
		return cause
	}
	relogin := authenticatorFunc(func(ctx context.Context) error {
		logWithSource(ctx, r.logger, slog.LevelWarn, r.name, "session expired, re-authenticating", "op", op, "err", cause)
		r.metrics.RecordReloginRetry(r.name)
		return r.auth.Login(ctx)
	})
	return RetryOnce(ctx, relogin, observed)
}

type authenticatorFunc func(context.Context) error

func (f authenticatorFunc) Login(ctx context.Context) error { return f(ctx) }
