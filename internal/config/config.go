package config

// Config holds runtime configuration for the server.
type Config struct {
	Port         string
	PollInterval Duration
	HTTPTimeout  Duration
	Provider     string
	Credentials  CredentialsConfig
	CookieFile   string
	BaseURL      string
	Scoreboard   ScoreboardConfig
	Stream       StreamConfig
	Proxy        ProxyConfig
	Metrics      MetricsConfig
	Log          LogConfig
}

// CredentialsConfig identifies the subscriber account.
type CredentialsConfig struct {
	Username    string
	Password    string
	RogersLogin bool
	// LoginMode overrides the provider's default scheme (form | subscriber).
	LoginMode string
}

// ScoreboardConfig points at the JSONP scoreboard feed.
type ScoreboardConfig struct {
	BaseURL string
}

// StreamConfig controls bitrate selection and the time-shift proxy.
type StreamConfig struct {
	PreferredBitrate string
	// TimeshiftProxy is host:port of a local playlist proxy; empty disables it.
	TimeshiftProxy string
}

// ProxyConfig describes the optional outbound HTTP proxy.
type ProxyConfig struct {
	Enabled  bool
	Scheme   string
	Host     string
	Port     int
	Username string
	Password string
}

// LogConfig selects log level and format.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Port:         envOrDefault(envPort, defaultPort),
		PollInterval: durationEnvOrDefault(envPollInterval, defaultPollInterval),
		HTTPTimeout:  durationEnvOrDefault(envHTTPTimeout, defaultHTTPTimeout),
		Provider:     envOrDefault(envProvider, defaultProvider),
		Credentials: CredentialsConfig{
			Username:    envOrDefault(envUsername, ""),
			Password:    envOrDefault(envPassword, ""),
			RogersLogin: boolEnvOrDefault(envRogersLogin, false),
			LoginMode:   envOrDefault(envLoginMode, ""),
		},
		CookieFile: envOrDefault(envCookieFile, defaultCookieFile),
		BaseURL:    envOrDefault(envBaseURL, ""),
		Scoreboard: ScoreboardConfig{
			BaseURL: envOrDefault(envScoreboardURL, ""),
		},
		Stream: StreamConfig{
			PreferredBitrate: envOrDefault(envPreferredBitrate, defaultBitrate),
			TimeshiftProxy:   envOrDefault(envTimeshiftProxy, ""),
		},
		Proxy: ProxyConfig{
			Enabled:  boolEnvOrDefault(envProxyEnabled, false),
			Scheme:   envOrDefault(envProxyScheme, "http"),
			Host:     envOrDefault(envProxyHost, ""),
			Port:     intEnvOrDefault(envProxyPort, 0),
			Username: envOrDefault(envProxyUsername, ""),
			Password: envOrDefault(envProxyPassword, ""),
		},
		Metrics: loadMetrics(),
		Log: LogConfig{
			Level:  envOrDefault(envLogLevel, "info"),
			Format: envOrDefault(envLogFormat, "text"),
		},
	}
}
