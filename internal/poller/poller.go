package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/timewasted/nhl-gamecenter/internal/domain"
	"github.com/timewasted/nhl-gamecenter/internal/logging"
	"github.com/timewasted/nhl-gamecenter/internal/metrics"
	"github.com/timewasted/nhl-gamecenter/internal/providers"
)

const defaultInterval = 60 * time.Second

// Sink receives refreshed catalog and scoreboard snapshots.
type Sink interface {
	ReplaceGames(games []domain.GameRecord)
	SetScoreboard(board domain.Scoreboard)
}

// Poller refreshes the recent game slate and the live scoreboard on an
// interval. Scoreboard fetches are best effort and never fail a cycle.
type Poller struct {
	source     providers.CatalogSource
	scoreboard providers.ScoreboardSource
	sink       Sink
	logger     *slog.Logger
	metrics    *metrics.Recorder
	interval   time.Duration

	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the poller loop.
type Status struct {
	ConsecutiveFailures int
	LastError           string
	LastAttempt         time.Time
	LastSuccess         time.Time
}

// IsReady reports whether the poller has had a recent success and is not failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// New constructs a Poller with sane defaults. The scoreboard source may be
// nil when the deployment has no scoreboard feed.
func New(source providers.CatalogSource, scoreboard providers.ScoreboardSource, sink Sink, logger *slog.Logger, recorder *metrics.Recorder, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		source:     source,
		scoreboard: scoreboard,
		sink:       sink,
		logger:     logger,
		metrics:    recorder,
		interval:   interval,
		done:       make(chan struct{}),
	}
}

// Start begins polling until the context is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	p.startMu.Lock()
	if p.started {
		p.startMu.Unlock()
		return
	}
	p.started = true
	p.startMu.Unlock()

	p.ticker = time.NewTicker(p.interval)

	go func() {
		logging.Info(p.logger, "poller started", slog.Int64(logging.FieldDurationMS, p.interval.Milliseconds()))
		// Initial fetch to warm data on boot.
		p.refreshOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				p.stopTicker()
				logging.Info(p.logger, "poller stopped")
				return
			case <-p.done:
				p.stopTicker()
				logging.Info(p.logger, "poller stopped")
				return
			case <-p.ticker.C:
				p.refreshOnce(ctx)
			}
		}
	}()
}

// Stop halts the polling loop.
func (p *Poller) Stop(ctx context.Context) error {
	_ = ctx
	p.stopOnce.Do(func() {
		close(p.done)
		p.stopTicker()
	})
	return nil
}

func (p *Poller) refreshOnce(ctx context.Context) {
	start := time.Now()
	p.recordAttempt(start)

	games, err := p.source.ListGames(ctx, false)
	if p.metrics != nil {
		p.metrics.RecordPollerCycle(time.Since(start), err)
	}
	if err != nil {
		logging.Error(p.logger, "poller catalog refresh failed", err,
			slog.Int64(logging.FieldDurationMS, time.Since(start).Milliseconds()))
		p.recordFailure(err, start)
		return
	}
	p.sink.ReplaceGames(games)
	p.recordSuccess(start)

	p.refreshScoreboard(ctx)

	logging.Info(p.logger, "poller refreshed games",
		logging.FieldCount, len(games),
		logging.FieldDurationMS, time.Since(start).Milliseconds(),
	)
}

func (p *Poller) refreshScoreboard(ctx context.Context) {
	if p.scoreboard == nil {
		return
	}
	board, err := p.scoreboard.CurrentScoreboard(ctx)
	if err != nil {
		logging.Warn(p.logger, "poller scoreboard refresh failed", "error", err)
		return
	}
	p.sink.SetScoreboard(board)
}

func (p *Poller) stopTicker() {
	if p.ticker != nil {
		p.ticker.Stop()
	}
}

func (p *Poller) recordAttempt(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.LastAttempt = at
}

func (p *Poller) recordSuccess(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures = 0
	p.status.LastError = ""
	p.status.LastSuccess = at
}

func (p *Poller) recordFailure(err error, at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures++
	if err != nil {
		p.status.LastError = err.Error()
	}
	p.status.LastAttempt = at
}

// Status returns a snapshot of the poller's recent health.
func (p *Poller) Status() Status {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}
