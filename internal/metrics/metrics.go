package metrics

import (
	"sync"
	"time"
)

type sourceStats struct {
	calls           int
	errors          int
	reloginRetries  int
	lastCallLatency time.Duration
}

// Recorder captures lightweight, in-memory metrics about upstream calls.
// It is intentionally simple so it can be swapped for a real backend later.
type Recorder struct {
	mu             sync.Mutex
	stats          map[string]*sourceStats
	logins         int
	loginErrors    int
	resolutions    int
	resolutionErrs int
	otel           *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats: make(map[string]*sourceStats),
		otel:  otel,
	}
}

// RecordSourceAttempt increments counters for an upstream call and stores
// the last observed latency.
func (r *Recorder) RecordSourceAttempt(source string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	stats := r.ensureStats(source)
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	if r.otel != nil {
		r.otel.recordSourceAttempt(source, duration, err)
	}
}

// RecordReloginRetry tracks that a call hit the auth-expiry retry path.
func (r *Recorder) RecordReloginRetry(source string) {
	if r == nil {
		return
	}
	stats := r.ensureStats(source)
	stats.reloginRetries++
	if r.otel != nil {
		r.otel.recordReloginRetry(source)
	}
}

// RecordLogin tracks a login attempt against the identity endpoint.
func (r *Recorder) RecordLogin(err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.logins++
	if err != nil {
		r.loginErrors++
	}
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordLogin(err)
	}
}

// RecordResolution tracks one stream resolution attempt end to end.
func (r *Recorder) RecordResolution(duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.resolutions++
	if err != nil {
		r.resolutionErrs++
	}
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordResolution(duration, err)
	}
}

// RecordHTTPRequest tracks basic HTTP metrics for the facade.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// RecordPollerCycle tracks scoreboard refresh cycles and errors.
func (r *Recorder) RecordPollerCycle(duration time.Duration, err error) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordPoller(duration, err)
}

// Snapshot is a copy of the current stats for one source.
type Snapshot struct {
	Calls           int
	Errors          int
	ReloginRetries  int
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(source string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	stats := r.snapshot(source)
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		ReloginRetries:  stats.reloginRetries,
		LastCallLatency: stats.lastCallLatency,
	}
}

// Logins returns the number of login attempts and failures recorded.
func (r *Recorder) Logins() (attempts, failures int) {
	if r == nil {
		return 0, 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.logins, r.loginErrors
}

func (r *Recorder) ensureStats(source string) *sourceStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[source]
	if !ok {
		stats = &sourceStats{}
		r.stats[source] = stats
	}
	return stats
}

func (r *Recorder) snapshot(source string) sourceStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stats, ok := r.stats[source]; ok && stats != nil {
		return *stats
	}
	return sourceStats{}
}
