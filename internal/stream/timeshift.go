package stream

import (
	"net/url"
	"time"
)

// TimeshiftProxy points at a local proxy that can replay a live stream
// from an earlier timestamp. Configured as host:port; empty disables the
// play-from-start path.
type TimeshiftProxy struct {
	Host string
}

// Enabled reports whether a proxy endpoint is configured.
func (p TimeshiftProxy) Enabled() bool { return p.Host != "" }

// Wrap rewrites an authorized stream URL into a proxy playlist request
// carrying the stream URL, the start timestamp and the encoded header
// blob the proxy should attach to upstream fetches.
func (p TimeshiftProxy) Wrap(streamURL string, start time.Time, headers url.Values) string {
	q := url.Values{}
	q.Set("url", streamURL)
	q.Set("start_at", start.UTC().Format("20060102150405"))
	if len(headers) > 0 {
		q.Set("headers", headers.Encode())
	}
	return "http://" + p.Host + "/playlist.m3u8?" + q.Encode()
}
