package stream

import (
	"strings"
	"testing"
)

const masterPlaylist = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-STREAM-INF:BANDWIDTH=3000000,CODECS="avc1.77.30,mp4a.40.2"
variant_3000.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=1600000,CODECS="avc1.77.30,mp4a.40.2"
variant_1600.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=800000,CODECS="avc1.77.30,mp4a.40.2"
variant_800.m3u8
`

const mediaPlaylist = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:10
#EXT-X-MEDIA-SEQUENCE:0
#EXTINF:10,
seg0.ts
#EXTINF:10,
seg1.ts
#EXT-X-ENDLIST
`

const encryptedPlaylist = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:10
#EXT-X-MEDIA-SEQUENCE:0
#EXT-X-KEY:METHOD=AES-128,URI="https://keys.example.com/fetch?id=1"
#EXTINF:10,
seg0.ts
#EXT-X-ENDLIST
`

func TestExpandVariantsKeysByKbps(t *testing.T) {
	masterURL := "http://cdn.example.com/nhl/game/master.m3u8?auth=abc"

	playlists, err := expandVariants(masterURL, []byte(masterPlaylist))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(playlists) != 3 {
		t.Fatalf("expected one entry per rendition, got %d", len(playlists))
	}
	want := "http://cdn.example.com/nhl/game/variant_1600.m3u8?auth=abc"
	if playlists["1600"] != want {
		t.Fatalf("unexpected variant url %s", playlists["1600"])
	}
	for bitrate, u := range playlists {
		if !strings.HasSuffix(u, "?auth=abc") {
			t.Fatalf("expected master query preserved on %s: %s", bitrate, u)
		}
	}
}

func TestExpandVariantsSingleRendition(t *testing.T) {
	masterURL := "http://cdn.example.com/nhl/game/single.m3u8?auth=abc"

	playlists, err := expandVariants(masterURL, []byte(mediaPlaylist))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(playlists) != 1 || playlists["0"] != masterURL {
		t.Fatalf("expected single synthetic entry, got %v", playlists)
	}
}

func TestExpandVariantsRejectsGarbage(t *testing.T) {
	if _, err := expandVariants("http://example.com/m.m3u8", []byte("not a playlist")); err == nil {
		t.Fatal("expected error for unparseable playlist")
	}
}

func TestEncryptionKeyURI(t *testing.T) {
	if got := encryptionKeyURI([]byte(encryptedPlaylist)); got != "https://keys.example.com/fetch?id=1" {
		t.Fatalf("unexpected key uri %q", got)
	}
	if got := encryptionKeyURI([]byte(mediaPlaylist)); got != "" {
		t.Fatalf("expected no key for plain playlist, got %q", got)
	}
}
