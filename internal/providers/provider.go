package providers

import (
	"context"

	"github.com/timewasted/nhl-gamecenter/internal/domain"
)

// CatalogSource defines how one upstream generation lists games and
// normalizes them into GameRecords.
type CatalogSource interface {
	// ListGames fetches today's (todayOnly) or recent games.
	ListGames(ctx context.Context, todayOnly bool) ([]domain.GameRecord, error)
	// GameInfo fetches a single game by id.
	GameInfo(ctx context.Context, id string) (domain.GameRecord, error)
	// ArchivedSeasons lists seasons (and their months) with archived games.
	ArchivedSeasons(ctx context.Context) ([]domain.ArchiveSeason, error)
	// ArchivedMonth lists the archived games of one season month. Seasons
	// older than the oldest resolvable CDN generation yield an empty list
	// without a network call.
	ArchivedMonth(ctx context.Context, season int, month string) ([]domain.GameRecord, error)
}

// PlaylistMinter turns a resolution context into an authorized master
// playlist URL. Each upstream generation mints differently.
type PlaylistMinter interface {
	MintMasterURL(ctx context.Context, rc domain.ResolutionContext) (string, error)
}

// HighlightsSource fetches per-perspective highlight URLs for a game.
type HighlightsSource interface {
	Highlights(ctx context.Context, season, id string) (map[domain.Perspective]string, error)
}

// ScoreboardSource fetches the best-effort live scoreboard.
type ScoreboardSource interface {
	CurrentScoreboard(ctx context.Context) (domain.Scoreboard, error)
}

// Authenticator re-establishes the upstream session using the last-known
// credentials.
type Authenticator interface {
	Login(ctx context.Context) error
}

// RetryOnce runs call and, when it fails with an auth-expiry signal,
// re-authenticates and retries exactly once. A second failure of any kind is
// surfaced; there is never a second login attempt.
func RetryOnce(ctx context.Context, auth Authenticator, call func() error) error {
	err := call()
	if err == nil || auth == nil || !AuthExpired(err) {
		return err
	}
	if lerr := auth.Login(ctx); lerr != nil {
		return lerr
	}
	return call()
}
