package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if cfg.PollInterval != defaultPollInterval {
		t.Fatalf("expected default poll interval %s, got %s", defaultPollInterval, cfg.PollInterval)
	}
	if cfg.Provider != defaultProvider {
		t.Fatalf("expected default provider %s, got %s", defaultProvider, cfg.Provider)
	}
	if cfg.CookieFile != defaultCookieFile {
		t.Fatalf("expected default cookie file %s, got %s", defaultCookieFile, cfg.CookieFile)
	}
	if cfg.Stream.PreferredBitrate != defaultBitrate {
		t.Fatalf("expected default bitrate %s, got %s", defaultBitrate, cfg.Stream.PreferredBitrate)
	}
	if cfg.Proxy.Enabled {
		t.Fatalf("expected proxy disabled by default")
	}
	if !cfg.Metrics.Enabled {
		t.Fatalf("expected metrics enabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv(envPort, "5000")
	t.Setenv(envPollInterval, "45s")
	t.Setenv(envProvider, "console")
	t.Setenv(envUsername, "user@example.com")
	t.Setenv(envPassword, "hunter2")
	t.Setenv(envRogersLogin, "true")
	t.Setenv(envCookieFile, "/tmp/session.lwp")
	t.Setenv(envPreferredBitrate, "3000")
	t.Setenv(envTimeshiftProxy, "127.0.0.1:8888")
	t.Setenv(envProxyEnabled, "1")
	t.Setenv(envProxyHost, "proxy.example.com")
	t.Setenv(envProxyPort, "3128")

	cfg := Load()

	if cfg.Port != "5000" {
		t.Fatalf("expected port 5000, got %s", cfg.Port)
	}
	if cfg.PollInterval != 45*time.Second {
		t.Fatalf("expected poll interval 45s, got %s", cfg.PollInterval)
	}
	if cfg.Provider != "console" {
		t.Fatalf("expected provider console, got %s", cfg.Provider)
	}
	if cfg.Credentials.Username != "user@example.com" || cfg.Credentials.Password != "hunter2" {
		t.Fatalf("expected credentials loaded, got %+v", cfg.Credentials)
	}
	if !cfg.Credentials.RogersLogin {
		t.Fatalf("expected rogers login enabled")
	}
	if cfg.CookieFile != "/tmp/session.lwp" {
		t.Fatalf("expected cookie file override, got %s", cfg.CookieFile)
	}
	if cfg.Stream.PreferredBitrate != "3000" || cfg.Stream.TimeshiftProxy != "127.0.0.1:8888" {
		t.Fatalf("expected stream overrides, got %+v", cfg.Stream)
	}
	if !cfg.Proxy.Enabled || cfg.Proxy.Host != "proxy.example.com" || cfg.Proxy.Port != 3128 {
		t.Fatalf("expected proxy overrides, got %+v", cfg.Proxy)
	}
}

func TestLoadInvalidDurationFallsBack(t *testing.T) {
	t.Setenv(envPollInterval, "not-a-duration")

	cfg := Load()

	if cfg.PollInterval != defaultPollInterval {
		t.Fatalf("expected default poll interval on invalid value, got %s", cfg.PollInterval)
	}
}

func TestLoadInvalidProxyPortFallsBack(t *testing.T) {
	t.Setenv(envProxyPort, "not-a-port")

	cfg := Load()

	if cfg.Proxy.Port != 0 {
		t.Fatalf("expected zero proxy port on invalid value, got %d", cfg.Proxy.Port)
	}
}
