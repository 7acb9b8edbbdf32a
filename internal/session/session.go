package session

import (
	"crypto/tls"
	"net/http"
	"sync"
	"time"
)

// DefaultUserAgent matches the mobile Safari agent the upstream gates on.
const DefaultUserAgent = "Mozilla/5.0 (iPad; CPU OS 8_1 like Mac OS X) AppleWebKit/600.1.4 (KHTML, like Gecko) Version/8.0 Mobile/12B410 Safari/600.1.4"

const (
	// authCookieName is the upstream cookie carrying the auth token.
	authCookieName = "Authorization"
	// sessionKeyName is the pseudo-cookie persisting the throttled
	// playback session key across process invocations.
	sessionKeyName = "nlSessionKey"
	// sessionKeyDomain scopes the pseudo-cookie in the jar file.
	sessionKeyDomain = "nhl.com"

	defaultTimeout = 30 * time.Second
)

// Config controls the shared HTTP client and cookie persistence.
type Config struct {
	CookieFile string
	UserAgent  string
	Proxy      *ProxyConfig
	Timeout    time.Duration
}

// Session owns the HTTP client configuration, the persistent cookie store,
// and the cached auth token and session key. It is constructed once per
// process; every component takes it as an explicit dependency.
type Session struct {
	client    *http.Client
	jar       *Jar
	userAgent string

	mu         sync.RWMutex
	authToken  string
	sessionKey string
}

type headerTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req2 := req.Clone(req.Context())
	if req2.Header.Get("User-Agent") == "" {
		req2.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req2)
}

// New builds a Session, loading any persisted cookies best-effort and
// seeding the cached auth token and session key from them.
func New(cfg Config) (*Session, error) {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	transport := &http.Transport{
		// The archive CDNs still negotiate down to TLS 1.0.
		TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS10},
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	if cfg.Proxy != nil {
		proxyURL, err := cfg.Proxy.URL()
		if err != nil {
			return nil, err
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	jar := NewJar(cfg.CookieFile)
	s := &Session{
		jar:       jar,
		userAgent: cfg.UserAgent,
		client: &http.Client{
			Jar:     jar,
			Timeout: cfg.Timeout,
			Transport: &headerTransport{
				base:      transport,
				userAgent: cfg.UserAgent,
			},
		},
	}

	// Re-use a surviving session instead of logging in again.
	s.authToken = jar.Get(authCookieName)
	s.sessionKey = jar.Get(sessionKeyName)
	return s, nil
}

// Client returns the shared HTTP client (cookie jar, proxy, UA attached).
func (s *Session) Client() *http.Client { return s.client }

// UserAgent returns the agent string sent on every request.
func (s *Session) UserAgent() string { return s.userAgent }

// Jar exposes the persistent cookie store.
func (s *Session) Jar() *Jar { return s.jar }

// AuthToken returns the cached auth token, or "".
func (s *Session) AuthToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authToken
}

// SetAuthToken caches the token and flushes cookies to disk. Passing ""
// invalidates the cached token without touching the jar.
func (s *Session) SetAuthToken(token string) error {
	s.mu.Lock()
	s.authToken = token
	s.mu.Unlock()
	if token == "" {
		return nil
	}
	return s.jar.Save()
}

// RefreshAuthToken re-reads the token cookie the login response set.
func (s *Session) RefreshAuthToken() string {
	token := s.jar.Get(authCookieName)
	s.mu.Lock()
	s.authToken = token
	s.mu.Unlock()
	return token
}

// SessionKey returns the cached playback session key, or "".
func (s *Session) SessionKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionKey
}

// SetSessionKey caches the key, persists it as a pseudo-cookie and flushes
// the jar. Keys are throttled server-side, so they are never refreshed
// proactively; only a fresh login or InvalidateAuth clears one. Passing ""
// removes the pseudo-cookie.
func (s *Session) SetSessionKey(key string) error {
	s.mu.Lock()
	s.sessionKey = key
	s.mu.Unlock()
	s.jar.SetPseudo(sessionKeyName, key, sessionKeyDomain)
	return s.jar.Save()
}

// InvalidateAuth drops the cached token and session key, forcing the next
// EnsureAccessToken call to log in again.
func (s *Session) InvalidateAuth() {
	s.mu.Lock()
	s.authToken = ""
	s.sessionKey = ""
	s.mu.Unlock()
	s.jar.SetPseudo(sessionKeyName, "", sessionKeyDomain)
}

// Save flushes the cookie store to disk.
func (s *Session) Save() error { return s.jar.Save() }
