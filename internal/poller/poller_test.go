package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/timewasted/nhl-gamecenter/internal/domain"
	"github.com/timewasted/nhl-gamecenter/internal/teststubs"
)

func TestPollerRefreshesCatalogAndScoreboard(t *testing.T) {
	source := &teststubs.StubSource{
		Games:  []domain.GameRecord{{ID: "2015020001", HomeTeam: "MON", AwayTeam: "TOR"}},
		Notify: make(chan struct{}, 1),
	}
	board := &teststubs.StubScoreboard{
		Board: domain.Scoreboard{"0001": {HomeScore: "2", AwayScore: "1"}},
	}
	sink := &teststubs.StubSink{}

	p := New(source, board, sink, nil, nil, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.Start(ctx)

	select {
	case <-source.Notify:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for initial refresh")
	}

	time.Sleep(30 * time.Millisecond) // allow at least one ticker fire

	cancel()
	_ = p.Stop(context.Background())

	games := sink.GameSnapshot()
	if len(games) != 1 || games[0].ID != "2015020001" {
		t.Fatalf("unexpected catalog snapshot: %+v", games)
	}
	snap := sink.BoardSnapshot()
	if snap["0001"].HomeScore != "2" {
		t.Fatalf("unexpected scoreboard snapshot: %+v", snap)
	}
	if source.Calls.Load() < 1 {
		t.Fatalf("expected at least one catalog fetch")
	}
}

func TestPollerStopsOnContextCancel(t *testing.T) {
	source := &teststubs.StubSource{Notify: make(chan struct{}, 1)}
	p := New(source, nil, &teststubs.StubSink{}, nil, nil, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	p.Start(ctx)

	select {
	case <-source.Notify:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for initial refresh")
	}

	cancel()
	_ = p.Stop(context.Background())

	callsAfterStop := source.Calls.Load()
	time.Sleep(20 * time.Millisecond)
	if source.Calls.Load() != callsAfterStop {
		t.Fatalf("expected no additional fetches after stop; before=%d after=%d", callsAfterStop, source.Calls.Load())
	}
}

func TestPollerStopIsIdempotent(t *testing.T) {
	p := New(&teststubs.StubSource{}, nil, &teststubs.StubSink{}, nil, nil, time.Hour)

	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("first stop returned error: %v", err)
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("second stop returned error: %v", err)
	}
}

func TestPollerStartIsIdempotent(t *testing.T) {
	p := New(&teststubs.StubSource{}, nil, &teststubs.StubSink{}, nil, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.Start(ctx)
	p.Start(ctx) // should no-op

	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("stop returned error: %v", err)
	}
}

func TestPollerDefaultsInterval(t *testing.T) {
	p := New(&teststubs.StubSource{}, nil, &teststubs.StubSink{}, nil, nil, 0)
	if p.interval != defaultInterval {
		t.Fatalf("expected default interval %s, got %s", defaultInterval, p.interval)
	}
}

func TestPollerStatusTracksFailuresAndSuccess(t *testing.T) {
	source := &teststubs.StubSource{Err: errors.New("boom")}
	p := New(source, nil, &teststubs.StubSink{}, nil, nil, time.Millisecond)
	ctx := context.Background()

	p.refreshOnce(ctx)
	status := p.Status()
	if status.ConsecutiveFailures != 1 {
		t.Fatalf("expected 1 failure, got %d", status.ConsecutiveFailures)
	}
	if status.LastError == "" {
		t.Fatalf("expected last error recorded")
	}
	if status.LastSuccess != (time.Time{}) {
		t.Fatalf("expected no success recorded yet")
	}
	if status.IsReady() {
		t.Fatalf("expected not ready after failure")
	}

	source.Err = nil
	p.refreshOnce(ctx)
	status = p.Status()
	if status.ConsecutiveFailures != 0 {
		t.Fatalf("expected failures reset, got %d", status.ConsecutiveFailures)
	}
	if status.LastSuccess.IsZero() {
		t.Fatalf("expected success timestamp")
	}
	if !status.IsReady() {
		t.Fatalf("expected ready after success")
	}
}

func TestPollerScoreboardFailureDoesNotFailCycle(t *testing.T) {
	source := &teststubs.StubSource{Games: []domain.GameRecord{{ID: "2015020001"}}}
	board := &teststubs.StubScoreboard{Err: errors.New("jsonp down")}
	sink := &teststubs.StubSink{}
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	p := New(source, board, sink, logger, nil, time.Minute)
	p.refreshOnce(context.Background())

	if p.Status().ConsecutiveFailures != 0 {
		t.Fatalf("expected success despite scoreboard failure")
	}
	if len(sink.GameSnapshot()) != 1 {
		t.Fatalf("expected catalog snapshot stored")
	}
	if sink.BoardSnapshot() != nil {
		t.Fatalf("expected no scoreboard stored on failure")
	}
}

func TestPollerNilScoreboardSource(t *testing.T) {
	source := &teststubs.StubSource{Games: []domain.GameRecord{{ID: "2015020001"}}}
	p := New(source, nil, &teststubs.StubSink{}, nil, nil, time.Minute)
	p.refreshOnce(context.Background()) // should not panic
}

func TestPollerLogsOnErrorAndSuccess(t *testing.T) {
	source := &teststubs.StubSource{Err: errors.New("fail")}
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	p := New(source, nil, &teststubs.StubSink{}, logger, nil, time.Second)
	p.refreshOnce(context.Background()) // should log error

	source.Err = nil
	source.Games = []domain.GameRecord{{ID: "ok"}}
	p.refreshOnce(context.Background()) // should log info
}
