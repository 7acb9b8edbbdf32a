package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/timewasted/nhl-gamecenter/internal/app/catalog"
	"github.com/timewasted/nhl-gamecenter/internal/config"
	httpserver "github.com/timewasted/nhl-gamecenter/internal/http"
	"github.com/timewasted/nhl-gamecenter/internal/http/handlers"
	"github.com/timewasted/nhl-gamecenter/internal/http/middleware"
	"github.com/timewasted/nhl-gamecenter/internal/logging"
	"github.com/timewasted/nhl-gamecenter/internal/metrics"
	"github.com/timewasted/nhl-gamecenter/internal/poller"
	"github.com/timewasted/nhl-gamecenter/internal/providers"
	"github.com/timewasted/nhl-gamecenter/internal/scoreboard"
	"github.com/timewasted/nhl-gamecenter/internal/session"
	"github.com/timewasted/nhl-gamecenter/internal/store"
	"github.com/timewasted/nhl-gamecenter/internal/stream"
)

var metricsSetup = metrics.Setup

// Server owns the wired components and their lifecycle.
type Server struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.Recorder
	session *session.Session
	catalog *catalog.Service
	auth    providers.Authenticator
	// bootstrap runs once at startup for generations that need a session
	// clock seed.
	bootstrap     func(context.Context) error
	httpServer    httpServer
	metricsServer httpServer
	poller        Poller
	metricsStop   func(context.Context) error
}

// New constructs a fully wired server. The returned error covers session
// construction only (bad cookie path or proxy descriptor).
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger)

	sess, err := buildSession(cfg)
	if err != nil {
		return nil, err
	}

	authMgr := buildAuth(cfg, sess, logger, recorder)
	bundle := buildSource(cfg, sess, authMgr, logger, recorder)

	svc := catalog.NewService(store.NewMemoryStore())
	board := buildScoreboard(cfg, sess, logger, recorder)
	plr := poller.New(bundle.source, board, svc, logger, recorder, cfg.PollInterval)

	resolver := stream.NewResolver(stream.Config{
		Minter:    bundle.minter,
		Auth:      bundle.auth,
		Session:   sess,
		Timeshift: stream.TimeshiftProxy{Host: cfg.Stream.TimeshiftProxy},
		Logger:    logger,
		Metrics:   recorder,
	})

	httpSrv := buildHTTPServer(cfg, svc, bundle.source, resolver, logger, recorder, plr)

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		session:       sess,
		catalog:       svc,
		auth:          bundle.auth,
		bootstrap:     bundle.bootstrap,
		httpServer:    httpSrv,
		metricsServer: metricsSrv,
		poller:        plr,
		metricsStop:   metricsShutdown,
	}, nil
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, svc *catalog.Service, httpSrv httpServer, plr Poller) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		catalog:    svc,
		httpServer: httpSrv,
		poller:     plr,
	}
}

func buildScoreboard(cfg config.Config, sess *session.Session, logger *slog.Logger, recorder *metrics.Recorder) providers.ScoreboardSource {
	return scoreboard.NewFetcher(scoreboard.Config{
		BaseURL:    cfg.Scoreboard.BaseURL,
		HTTPClient: sess.Client(),
		Logger:     logger,
		Metrics:    recorder,
	})
}

func buildHTTPServer(cfg config.Config, svc *catalog.Service, source providers.CatalogSource, resolver handlers.StreamResolver, logger *slog.Logger, recorder *metrics.Recorder, plr Poller) httpServer {
	var statusFn func() poller.Status
	if plr != nil {
		statusFn = plr.Status
	}

	handler := handlers.NewHandler(svc, source, resolver, cfg.Stream.PreferredBitrate, logger, statusFn)
	router := httpserver.NewRouter(handler)
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	wrapped := middleware.LoggingMiddleware(logger, recorder, router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      wrapped,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return netHTTPServer{srv: srv}
}

// Run starts the poller and HTTP server, then waits for context
// cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.seedSession(ctx)
	s.startServer(stop)
	s.poller.Start(ctx)

	<-ctx.Done()
	if s.logger != nil {
		s.logger.Info("shutdown signal received")
	}

	s.gracefulShutdown()
}

// seedSession touches the upstream console and logs in when no auth token
// survived in the cookie file. Failures are logged and left for the
// re-login decorator to repair on first use.
func (s *Server) seedSession(ctx context.Context) {
	if s.bootstrap != nil {
		if err := s.bootstrap(ctx); err != nil {
			logging.Warn(s.logger, "session bootstrap failed", "error", err)
		}
	}
	if s.auth == nil || s.session == nil || s.session.AuthToken() != "" {
		return
	}
	if s.cfg.Credentials.Username == "" {
		return
	}
	if err := s.auth.Login(ctx); err != nil {
		logging.Warn(s.logger, "startup login failed", "error", err)
	}
}

func (s *Server) startServer(stop context.CancelFunc) {
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics shutdown failed", "error", err)
		}
	}

	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
			s.logger.Warn("metrics server shutdown failed", "error", err)
		}
	}

	if err := s.poller.Stop(shutdownCtx); err != nil && s.logger != nil {
		s.logger.Error("failed to stop poller", "error", err)
	}

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil && s.logger != nil {
		s.logger.Error("graceful shutdown failed", "error", err)
	}

	// Flush any cookies picked up since the last save.
	if s.session != nil {
		if err := s.session.Save(); err != nil && s.logger != nil {
			s.logger.Warn("cookie save failed", "error", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("shutdown complete")
	}
}

func buildMetrics(cfg config.Config, logger *slog.Logger) (*metrics.Recorder, httpServer, func(context.Context) error) {
	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		if logger != nil {
			logger.Warn("metrics setup failed, continuing without telemetry", "err", err)
		}
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			srv: &http.Server{
				Addr:    ":" + recCfg.Port,
				Handler: handler,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		if logger != nil {
			logger.Info("starting "+name+" server", slog.String("addr", srv.Addr()))
		}
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if logger != nil {
				logger.Warn(name+" server failed", "error", err)
			}
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
