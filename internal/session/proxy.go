package session

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/timewasted/nhl-gamecenter/internal/providers"
)

// ProxyConfig describes an optional outbound HTTP proxy. Malformed
// configuration is rejected before any network call.
type ProxyConfig struct {
	Scheme   string
	Host     string
	Port     int
	Username string
	Password string
}

// URL validates the descriptor and builds the proxy URL.
func (p *ProxyConfig) URL() (*url.URL, error) {
	const op = "proxy_config"

	scheme := strings.ToLower(strings.TrimSpace(p.Scheme))
	if scheme == "" {
		scheme = "http"
	}
	if scheme != "http" && scheme != "https" {
		return nil, &providers.LogicError{Op: op, Message: fmt.Sprintf("unsupported scheme %q", p.Scheme)}
	}

	host := strings.TrimSpace(p.Host)
	if host == "" {
		return nil, &providers.LogicError{Op: op, Message: "host is not valid"}
	}

	if p.Port < 1 || p.Port > 65535 {
		return nil, &providers.LogicError{Op: op, Message: "port must be a number between 1 and 65535"}
	}

	// Credentials travel together: one without the other is a config error.
	if (p.Username == "") != (p.Password == "") {
		return nil, &providers.LogicError{Op: op, Message: "auth does not contain a valid username and/or password"}
	}

	u := &url.URL{
		Scheme: scheme,
		Host:   fmt.Sprintf("%s:%d", host, p.Port),
	}
	if p.Username != "" {
		u.User = url.UserPassword(p.Username, p.Password)
	}
	return u, nil
}
