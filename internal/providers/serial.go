package providers

import (
	"context"
	"sync"

	"github.com/timewasted/nhl-gamecenter/internal/domain"
)

// serialSource admits one catalog call at a time. The upstream session is
// shared mutable state (cookies, auth token) owned by one logical thread;
// callers arriving concurrently through the facade are serialized here
// instead of each taking snapshots of a session mid-login.
type serialSource struct {
	mu    sync.Mutex
	inner CatalogSource
}

// NewSerialSource wraps inner so at most one call is in flight.
func NewSerialSource(inner CatalogSource) CatalogSource {
	return &serialSource{inner: inner}
}

func (s *serialSource) ListGames(ctx context.Context, todayOnly bool) ([]domain.GameRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.inner.ListGames(ctx, todayOnly)
}

func (s *serialSource) GameInfo(ctx context.Context, id string) (domain.GameRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return domain.GameRecord{}, err
	}
	return s.inner.GameInfo(ctx, id)
}

func (s *serialSource) ArchivedSeasons(ctx context.Context) ([]domain.ArchiveSeason, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.inner.ArchivedSeasons(ctx)
}

func (s *serialSource) ArchivedMonth(ctx context.Context, season int, month string) ([]domain.GameRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.inner.ArchivedMonth(ctx, season, month)
}
