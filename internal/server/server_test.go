package server

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/timewasted/nhl-gamecenter/internal/app/catalog"
	"github.com/timewasted/nhl-gamecenter/internal/config"
	"github.com/timewasted/nhl-gamecenter/internal/poller"
	"github.com/timewasted/nhl-gamecenter/internal/store"
)

type stubPoller struct {
	mu         sync.Mutex
	startCalls int
	stopCalls  int
	err        error
	status     poller.Status
}

func (p *stubPoller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startCalls++
}

func (p *stubPoller) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopCalls++
	return p.err
}

func (p *stubPoller) Status() poller.Status {
	return p.status
}

type stubHTTPServer struct {
	mu            sync.Mutex
	addr          string
	handler       http.Handler
	listenCalls   int
	shutdownCalls int
}

func (s *stubHTTPServer) ListenAndServe() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listenCalls++
	return http.ErrServerClosed
}

func (s *stubHTTPServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shutdownCalls++
	return nil
}

func (s *stubHTTPServer) Addr() string          { return s.addr }
func (s *stubHTTPServer) Handler() http.Handler { return s.handler }

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Load()
	cfg.CookieFile = t.TempDir() + "/cookies.lwp"
	cfg.Metrics.Enabled = false
	return cfg
}

func TestRunStartsAndStopsComponents(t *testing.T) {
	httpSrv := &stubHTTPServer{addr: ":0"}
	plr := &stubPoller{}
	svc := catalog.NewService(store.NewMemoryStore())

	srv := newServerWithDeps(testConfig(t), nil, svc, httpSrv, plr)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.Run(ctx, cancel)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for run to return")
	}

	if plr.startCalls != 1 || plr.stopCalls != 1 {
		t.Fatalf("expected poller started and stopped once, got %d/%d", plr.startCalls, plr.stopCalls)
	}
	if httpSrv.shutdownCalls != 1 {
		t.Fatalf("expected http server shutdown, got %d", httpSrv.shutdownCalls)
	}
}

func TestNewWiresFixtureProviderByDefault(t *testing.T) {
	cfg := testConfig(t)
	cfg.Provider = ""

	srv, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if srv.Handler() == nil {
		t.Fatalf("expected handler wired")
	}
	if srv.bootstrap != nil {
		t.Fatalf("fixture source needs no bootstrap")
	}
}

func TestNewWiresConsoleWithBootstrap(t *testing.T) {
	cfg := testConfig(t)
	cfg.Provider = "console"

	srv, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if srv.bootstrap == nil {
		t.Fatalf("expected console bootstrap wired")
	}
	if srv.auth == nil {
		t.Fatalf("expected auth manager wired")
	}
}

func TestNewRejectsBadProxy(t *testing.T) {
	cfg := testConfig(t)
	cfg.Proxy.Enabled = true
	cfg.Proxy.Scheme = "socks5"
	cfg.Proxy.Host = "proxy.example.com"
	cfg.Proxy.Port = 1080

	if _, err := New(cfg, nil); err == nil {
		t.Fatalf("expected proxy validation error")
	}
}

func TestNormalizeProviderName(t *testing.T) {
	cases := map[string]string{
		"":           "fixture",
		"Console":    "console",
		" STATSAPI ": "statsapi",
	}
	for in, want := range cases {
		if got := normalizeProviderName(in); got != want {
			t.Fatalf("normalizeProviderName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildSessionLoadsCookieFile(t *testing.T) {
	cfg := testConfig(t)

	sess, err := buildSession(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Client() == nil || sess.Jar() == nil {
		t.Fatalf("expected session client and jar wired")
	}
	if sess.AuthToken() != "" {
		t.Fatalf("expected no auth token from fresh cookie file")
	}
}
