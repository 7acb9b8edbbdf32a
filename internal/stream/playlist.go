package stream

import (
	"strconv"
	"strings"

	"github.com/bluenviron/gohlslib/v2/pkg/playlist"

	"github.com/timewasted/nhl-gamecenter/internal/domain"
	"github.com/timewasted/nhl-gamecenter/internal/providers"
)

// expandVariants turns a fetched master playlist into a PlaylistMap. A
// multivariant master yields one entry per rendition keyed by bandwidth
// in kbps, each variant URL carrying the master's query string. A plain
// media playlist yields the single synthetic "0" entry.
func expandVariants(masterURL string, body []byte) (domain.PlaylistMap, error) {
	const op = "expand_variants"

	pl, err := playlist.Unmarshal(body)
	if err != nil {
		return nil, &providers.LogicError{Op: op, Message: "unparseable master playlist"}
	}

	switch p := pl.(type) {
	case *playlist.Multivariant:
		base, qs := splitQuery(masterURL)
		dir := base[:strings.LastIndex(base, "/")+1]

		playlists := make(domain.PlaylistMap, len(p.Variants))
		for _, v := range p.Variants {
			if v == nil || v.URI == "" {
				continue
			}
			u := v.URI
			if !strings.Contains(u, "://") {
				u = dir + u
			}
			if qs != "" {
				u += "?" + qs
			}
			playlists[strconv.Itoa(v.Bandwidth/1000)] = u
		}
		if len(playlists) == 0 {
			return nil, &providers.LogicError{Op: op, Message: "no playlists found"}
		}
		return playlists, nil
	case *playlist.Media:
		return domain.PlaylistMap{"0": masterURL}, nil
	default:
		return nil, &providers.LogicError{Op: op, Message: "unknown playlist type"}
	}
}

// encryptionKeyURI returns the EXT-X-KEY URI of a variant playlist, or
// "" when the content is not encrypted.
func encryptionKeyURI(body []byte) string {
	pl, err := playlist.Unmarshal(body)
	if err != nil {
		return ""
	}
	media, ok := pl.(*playlist.Media)
	if !ok {
		return ""
	}
	for _, seg := range media.Segments {
		if seg != nil && seg.Key != nil && seg.Key.URI != "" {
			return seg.Key.URI
		}
	}
	return ""
}

func splitQuery(u string) (base, qs string) {
	base, qs, _ = strings.Cut(u, "?")
	return base, qs
}
