package server

import (
	"context"
	"log/slog"
	"strings"

	"github.com/timewasted/nhl-gamecenter/internal/auth"
	"github.com/timewasted/nhl-gamecenter/internal/config"
	"github.com/timewasted/nhl-gamecenter/internal/metrics"
	"github.com/timewasted/nhl-gamecenter/internal/providers"
	"github.com/timewasted/nhl-gamecenter/internal/providers/console"
	"github.com/timewasted/nhl-gamecenter/internal/providers/fixture"
	"github.com/timewasted/nhl-gamecenter/internal/providers/statsapi"
	"github.com/timewasted/nhl-gamecenter/internal/session"
)

const (
	formLoginURL       = "https://gamecenter.nhl.com/nhlgc/secure/login"
	subscriberLoginURL = "https://user.svc.nhl.com/v2/user/identity"
)

// sourceBundle holds everything the selected generation provides.
type sourceBundle struct {
	// source is the decorated catalog source (single-flight + re-login).
	source providers.CatalogSource
	minter providers.PlaylistMinter
	auth   providers.Authenticator
	// bootstrap seeds the upstream session clock when the generation
	// needs it; nil otherwise.
	bootstrap func(context.Context) error
}

// buildSession constructs the shared HTTP session from configuration.
func buildSession(cfg config.Config) (*session.Session, error) {
	sessCfg := session.Config{
		CookieFile: cfg.CookieFile,
		Timeout:    cfg.HTTPTimeout,
	}
	if cfg.Proxy.Enabled {
		sessCfg.Proxy = &session.ProxyConfig{
			Scheme:   cfg.Proxy.Scheme,
			Host:     cfg.Proxy.Host,
			Port:     cfg.Proxy.Port,
			Username: cfg.Proxy.Username,
			Password: cfg.Proxy.Password,
		}
	}
	return session.New(sessCfg)
}

// buildAuth constructs the auth manager for the selected generation. The
// console servlets run the legacy form scheme; the schedule API runs the
// subscriber scheme. GC_LOGIN_MODE overrides either.
func buildAuth(cfg config.Config, sess *session.Session, logger *slog.Logger, recorder *metrics.Recorder) *auth.Manager {
	mode := auth.ModeForm
	if normalizeProviderName(cfg.Provider) == "statsapi" {
		mode = auth.ModeSubscriber
	}
	switch strings.ToLower(cfg.Credentials.LoginMode) {
	case "form":
		mode = auth.ModeForm
	case "subscriber":
		mode = auth.ModeSubscriber
	}

	return auth.NewManager(sess, auth.Config{
		Mode:          mode,
		LoginURL:      formLoginURL,
		SubscriberURL: subscriberLoginURL,
	}, auth.Credentials{
		Username:    cfg.Credentials.Username,
		Password:    cfg.Credentials.Password,
		RogersLogin: cfg.Credentials.RogersLogin,
	}, logger, recorder)
}

// buildSource assembles the catalog source for the configured generation,
// wrapped with the re-login decorator and the single-flight serializer.
func buildSource(cfg config.Config, sess *session.Session, authMgr *auth.Manager, logger *slog.Logger, recorder *metrics.Recorder) sourceBundle {
	name := normalizeProviderName(cfg.Provider)
	switch name {
	case "console":
		client := console.NewClient(consoleConfig(cfg, sess, logger, recorder))
		return sourceBundle{
			source:    providers.NewSerialSource(providers.NewReloginSource(client, authMgr, console.SourceName, logger, recorder)),
			minter:    client,
			auth:      authMgr,
			bootstrap: client.Bootstrap,
		}
	case "statsapi":
		client := statsapi.NewClient(statsapiConfig(cfg, sess, logger, recorder))
		return sourceBundle{
			source: providers.NewSerialSource(providers.NewReloginSource(client, authMgr, statsapi.SourceName, logger, recorder)),
			minter: client,
			auth:   authMgr,
		}
	default:
		if name != "fixture" && logger != nil {
			logger.Warn("unknown provider, using fixture", slog.String("provider", cfg.Provider))
		}
		src := fixture.New()
		return sourceBundle{
			source: providers.NewSerialSource(src),
			minter: src,
		}
	}
}

func consoleConfig(cfg config.Config, sess *session.Session, logger *slog.Logger, recorder *metrics.Recorder) console.Config {
	out := console.Config{
		Session: sess,
		Logger:  logger,
		Metrics: recorder,
	}
	if base := strings.TrimSuffix(cfg.BaseURL, "/"); base != "" {
		out.ConsoleURL = base + "/servlets/simpleconsole"
		out.GamesURL = base + "/servlets/games"
		out.PublishPointURL = base + "/servlets/publishpoint"
		out.AllArchivesURL = base + "/servlets/allarchives"
		out.ArchivesURL = base + "/servlets/archives"
		out.HighlightsURL = base + "/servlets/playlist"
	}
	return out
}

func statsapiConfig(cfg config.Config, sess *session.Session, logger *slog.Logger, recorder *metrics.Recorder) statsapi.Config {
	out := statsapi.Config{
		Session: sess,
		Logger:  logger,
		Metrics: recorder,
	}
	if base := strings.TrimSuffix(cfg.BaseURL, "/"); base != "" {
		out.ScheduleURL = base + "/api/v1/schedule"
		out.SeasonsURL = base + "/api/v1/seasons"
	}
	return out
}

// normalizeProviderName lower-cases the configured generation name.
func normalizeProviderName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return "fixture"
	}
	return name
}
