// Package auth performs login against the upstream identity endpoints and
// owns the credential/token lifecycle on the shared session.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/timewasted/nhl-gamecenter/internal/metrics"
	"github.com/timewasted/nhl-gamecenter/internal/providers"
	"github.com/timewasted/nhl-gamecenter/internal/session"
)

// Mode selects which historical login scheme the upstream currently runs.
type Mode string

const (
	// ModeForm is the legacy cookie-based form POST with an XML result.
	ModeForm Mode = "form"
	// ModeSubscriber is the JSON subscriber-login endpoint with per-flag
	// credential envelopes.
	ModeSubscriber Mode = "subscriber"
)

// Credentials identify the subscriber. RogersLogin selects the alternate
// login path on both schemes.
type Credentials struct {
	Username    string
	Password    string
	RogersLogin bool
}

// Config points the manager at the identity endpoints.
type Config struct {
	Mode          Mode
	LoginURL      string
	SubscriberURL string
}

// Manager logs in, persists the resulting auth artifact on the session and
// exposes ensure/force operations. Credentials are replaced atomically on
// each successful login, supporting mid-run rotation.
type Manager struct {
	session *session.Session
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Recorder

	mu    sync.Mutex
	creds Credentials
}

// NewManager builds an auth manager bound to the session.
func NewManager(sess *session.Session, cfg Config, creds Credentials, logger *slog.Logger, recorder *metrics.Recorder) *Manager {
	if cfg.Mode == "" {
		cfg.Mode = ModeForm
	}
	return &Manager{
		session: sess,
		cfg:     cfg,
		logger:  logger,
		metrics: recorder,
		creds:   creds,
	}
}

// Login authenticates with the last-known credentials.
func (m *Manager) Login(ctx context.Context) error {
	m.mu.Lock()
	creds := m.creds
	m.mu.Unlock()
	return m.LoginAs(ctx, creds)
}

// LoginAs authenticates with the given credentials and, on success, makes
// them the manager's stored credentials.
func (m *Manager) LoginAs(ctx context.Context, creds Credentials) error {
	var err error
	switch m.cfg.Mode {
	case ModeSubscriber:
		err = m.subscriberLogin(ctx, creds)
	default:
		err = m.formLogin(ctx, creds)
	}
	m.metrics.RecordLogin(err)
	if err != nil {
		if m.logger != nil {
			m.logger.Warn("login failed", "mode", string(m.cfg.Mode), "err", err)
		}
		return err
	}

	m.mu.Lock()
	m.creds = creds
	m.mu.Unlock()

	if m.logger != nil {
		m.logger.Info("login succeeded", "mode", string(m.cfg.Mode), "rogers", creds.RogersLogin)
	}
	// A session key minted under the previous identity is dead weight after a
	// fresh login; drop it so the next resolution mints a new one. Clearing it
	// also flushes the jar with the new auth cookie.
	return m.session.SetSessionKey("")
}

// EnsureAccessToken returns the cached token, logging in first when none
// is cached.
func (m *Manager) EnsureAccessToken(ctx context.Context) (string, error) {
	if token := m.session.AuthToken(); token != "" {
		return token, nil
	}
	if err := m.Login(ctx); err != nil {
		return "", err
	}
	return m.session.AuthToken(), nil
}

// ForceRelogin drops the cached auth state and performs a fresh login.
func (m *Manager) ForceRelogin(ctx context.Context) error {
	m.session.InvalidateAuth()
	return m.Login(ctx)
}

type loginResult struct {
	XMLName xml.Name `xml:"result"`
	Code    string   `xml:"code"`
}

func (m *Manager) formLogin(ctx context.Context, creds Credentials) error {
	const op = "login"

	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("password", creds.Password)
	if creds.RogersLogin {
		form.Set("rogers", "true")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.LoginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return &providers.NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.session.Client().Do(req)
	if err != nil {
		return &providers.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &providers.NetworkError{Op: op, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &providers.NetworkError{Op: op, Err: err}
	}

	var result loginResult
	if err := xml.Unmarshal(body, &result); err != nil {
		return &providers.LogicError{Op: op, Message: "unparseable login response"}
	}
	if result.Code == "loginfailed" {
		return &providers.LoginError{}
	}

	m.session.RefreshAuthToken()
	return nil
}

// Envelope field names are part of the upstream contract; casing matters.
type subscriberEnvelope struct {
	NHLCredentials    *emailPassword `json:"nhlCredentials,omitempty"`
	RogersCredentials *emailPassword `json:"rogersCredentials,omitempty"`
}

type emailPassword struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (m *Manager) subscriberLogin(ctx context.Context, creds Credentials) error {
	const op = "login"

	envelope := subscriberEnvelope{}
	ep := &emailPassword{Email: creds.Username, Password: creds.Password}
	if creds.RogersLogin {
		envelope.RogersCredentials = ep
	} else {
		envelope.NHLCredentials = ep
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return &providers.LogicError{Op: op, Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.SubscriberURL, bytes.NewReader(payload))
	if err != nil {
		return &providers.NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.session.Client().Do(req)
	if err != nil {
		return &providers.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &providers.NetworkError{Op: op, StatusCode: resp.StatusCode}
	}

	// The subscriber endpoint hands the token back as a response header;
	// older revisions set it as a cookie. Either way it must be present.
	token := resp.Header.Get("Authorization")
	if token != "" {
		if err := m.session.SetAuthToken(token); err != nil {
			return err
		}
		return nil
	}
	if token = m.session.RefreshAuthToken(); token == "" {
		return &providers.LoginError{Reason: "no authorization credential in response"}
	}
	return nil
}
