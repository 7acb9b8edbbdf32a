package config

import "time"

const (
	envUsername         = "GC_USERNAME"
	envPassword         = "GC_PASSWORD"
	envRogersLogin      = "GC_ROGERS_LOGIN"
	envLoginMode        = "GC_LOGIN_MODE"
	envCookieFile       = "GC_COOKIE_FILE"
	envProvider         = "GC_PROVIDER"
	envBaseURL          = "GC_BASE_URL"
	envScoreboardURL    = "GC_SCOREBOARD_URL"
	envPreferredBitrate = "GC_PREFERRED_BITRATE"
	envTimeshiftProxy   = "GC_TIMESHIFT_PROXY"
	envProxyEnabled     = "PROXY_ENABLED"
	envProxyScheme      = "PROXY_SCHEME"
	envProxyHost        = "PROXY_HOST"
	envProxyPort        = "PROXY_PORT"
	envProxyUsername    = "PROXY_USERNAME"
	envProxyPassword    = "PROXY_PASSWORD"
	envHTTPTimeout      = "HTTP_TIMEOUT"
	envPollInterval     = "POLL_INTERVAL"
	envPort             = "PORT"
	envMetricsPort      = "METRICS_PORT"
	envMetricsOn        = "METRICS_ENABLED"
	envOtelEndpoint     = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService      = "OTEL_SERVICE_NAME"
	envOtelInsecure     = "OTEL_EXPORTER_OTLP_INSECURE"
	envLogLevel         = "LOG_LEVEL"
	envLogFormat        = "LOG_FORMAT"

	defaultPort        = "4000"
	defaultProvider    = "fixture"
	defaultCookieFile  = "cookies.lwp"
	defaultBitrate     = "best"
	defaultMetricsPort = "9090"
	defaultHTTPTimeout = 30 * Duration(time.Second)
	// Matches the scoreboard cadence the upstream console UI polls at.
	defaultPollInterval = 60 * Duration(time.Second)
)
