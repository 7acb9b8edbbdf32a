package session

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"
)

const lwpHeader = "#LWP-Cookies-2.0"

// timeLayout matches the quoted expiry format of LWP cookie files.
const timeLayout = "2006-01-02 15:04:05Z"

type cookieEntry struct {
	Name    string
	Value   string
	Domain  string // stored without a leading dot
	Path    string
	Expires time.Time // zero means no expiry recorded
	Secure  bool
}

// Jar is a persistent cookie jar round-tripped to an LWP-style text file.
// A missing file is not an error; the file is rewritten in full on Save.
// The session-key pseudo-cookie shares the same file via SetPseudo.
type Jar struct {
	mu      sync.Mutex
	path    string
	entries map[string]cookieEntry // key: domain|path|name
	now     func() time.Time
}

// NewJar creates a jar backed by path, loading any existing cookies
// best-effort.
func NewJar(path string) *Jar {
	j := &Jar{
		path:    path,
		entries: make(map[string]cookieEntry),
		now:     time.Now,
	}
	j.load()
	return j
}

// SetCookies implements http.CookieJar.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	host := canonicalHost(u.Host)

	j.mu.Lock()
	defer j.mu.Unlock()

	for _, c := range cookies {
		if c.Name == "" {
			continue
		}
		domain := strings.TrimPrefix(strings.ToLower(c.Domain), ".")
		if domain == "" {
			domain = host
		} else if !domainMatch(host, domain) {
			continue
		}
		// Refuse cookies scoped to a bare public suffix.
		if ps, _ := publicsuffix.PublicSuffix(domain); ps == domain {
			if domain != host {
				continue
			}
		}

		path := c.Path
		if path == "" || !strings.HasPrefix(path, "/") {
			path = "/"
		}

		entry := cookieEntry{
			Name:   c.Name,
			Value:  c.Value,
			Domain: domain,
			Path:   path,
			Secure: c.Secure,
		}
		if !c.Expires.IsZero() {
			entry.Expires = c.Expires.UTC()
		} else if c.MaxAge > 0 {
			entry.Expires = j.now().Add(time.Duration(c.MaxAge) * time.Second).UTC()
		}

		key := entry.Domain + "|" + entry.Path + "|" + entry.Name
		if c.MaxAge < 0 || (c.Value == "" && !c.Expires.IsZero() && c.Expires.Before(j.now())) {
			delete(j.entries, key)
			continue
		}
		j.entries[key] = entry
	}
}

// Cookies implements http.CookieJar.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	host := canonicalHost(u.Host)
	secure := u.Scheme == "https"
	now := j.now()

	j.mu.Lock()
	defer j.mu.Unlock()

	var selected []cookieEntry
	for key, e := range j.entries {
		if !e.Expires.IsZero() && now.After(e.Expires) {
			delete(j.entries, key)
			continue
		}
		if !domainMatch(host, e.Domain) {
			continue
		}
		if !pathMatch(u.Path, e.Path) {
			continue
		}
		if e.Secure && !secure {
			continue
		}
		selected = append(selected, e)
	}

	// Longest path first, stable by name, matching browser ordering.
	sort.Slice(selected, func(i, k int) bool {
		if len(selected[i].Path) != len(selected[k].Path) {
			return len(selected[i].Path) > len(selected[k].Path)
		}
		return selected[i].Name < selected[k].Name
	})

	out := make([]*http.Cookie, 0, len(selected))
	for _, e := range selected {
		out = append(out, &http.Cookie{Name: e.Name, Value: e.Value})
	}
	return out
}

// Get returns the value of the first cookie with the given name in any
// domain, or "".
func (j *Jar) Get(name string) string {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	for _, e := range j.entries {
		if e.Name != name {
			continue
		}
		if !e.Expires.IsZero() && now.After(e.Expires) {
			continue
		}
		return e.Value
	}
	return ""
}

// SetPseudo stores a client-minted pseudo-cookie (such as the upstream
// session key) so it persists alongside real cookies.
func (j *Jar) SetPseudo(name, value, domain string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	domain = strings.TrimPrefix(strings.ToLower(domain), ".")
	key := domain + "|/|" + name
	if value == "" {
		delete(j.entries, key)
		return
	}
	j.entries[key] = cookieEntry{
		Name:   name,
		Value:  value,
		Domain: domain,
		Path:   "/",
	}
}

// Save rewrites the cookie file atomically.
func (j *Jar) Save() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.path == "" {
		return nil
	}

	var b strings.Builder
	b.WriteString(lwpHeader + "\n")

	keys := make([]string, 0, len(j.entries))
	for k := range j.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	now := j.now()
	for _, k := range keys {
		e := j.entries[k]
		if !e.Expires.IsZero() && now.After(e.Expires) {
			continue
		}
		fmt.Fprintf(&b, "Set-Cookie3: %s=%s; path=%q; domain=%q", e.Name, quoteValue(e.Value), e.Path, e.Domain)
		if !e.Expires.IsZero() {
			fmt.Fprintf(&b, "; expires=%q", e.Expires.UTC().Format(timeLayout))
		}
		if e.Secure {
			b.WriteString("; secure")
		}
		b.WriteString("; version=0\n")
	}

	tmp := j.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, j.path)
}

func (j *Jar) load() {
	f, err := os.Open(j.path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "Set-Cookie3:") {
			continue
		}
		e, ok := parseSetCookie3(strings.TrimSpace(strings.TrimPrefix(line, "Set-Cookie3:")))
		if !ok {
			continue
		}
		j.entries[e.Domain+"|"+e.Path+"|"+e.Name] = e
	}
}

func parseSetCookie3(line string) (cookieEntry, bool) {
	parts := strings.Split(line, ";")
	if len(parts) == 0 {
		return cookieEntry{}, false
	}

	name, value, ok := strings.Cut(strings.TrimSpace(parts[0]), "=")
	if !ok || name == "" {
		return cookieEntry{}, false
	}

	e := cookieEntry{Name: name, Value: unquote(value), Path: "/"}
	for _, attr := range parts[1:] {
		attr = strings.TrimSpace(attr)
		k, v, _ := strings.Cut(attr, "=")
		switch strings.ToLower(k) {
		case "domain":
			e.Domain = strings.TrimPrefix(strings.ToLower(unquote(v)), ".")
		case "path":
			if p := unquote(v); strings.HasPrefix(p, "/") {
				e.Path = p
			}
		case "expires":
			if t, err := time.Parse(timeLayout, unquote(v)); err == nil {
				e.Expires = t
			}
		case "secure":
			e.Secure = true
		}
	}
	if e.Domain == "" {
		return cookieEntry{}, false
	}
	return e, true
}

func quoteValue(v string) string {
	if strings.ContainsAny(v, " ;,") {
		return `"` + v + `"`
	}
	return v
}

func unquote(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return v[1 : len(v)-1]
	}
	return v
}

func canonicalHost(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(host)
}

func domainMatch(host, domain string) bool {
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func pathMatch(reqPath, cookiePath string) bool {
	if reqPath == "" {
		reqPath = "/"
	}
	if reqPath == cookiePath {
		return true
	}
	if !strings.HasPrefix(reqPath, cookiePath) {
		return false
	}
	return strings.HasSuffix(cookiePath, "/") || reqPath[len(cookiePath)] == '/'
}
