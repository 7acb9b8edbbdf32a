package console

import (
	"strings"
	"testing"
)

func TestNormalizePublishPointRewritesSchemeAndSuffix(t *testing.T) {
	raw := "adaptive://cp99999.live.edgefcs.net/nlds_vod/nhl/2015/02/14/123_h_whole_pc.mp4?eid=123"

	urls := normalizePublishPoint(raw, "BOS", "TOR")
	if !strings.HasPrefix(urls.Home, "http://") {
		t.Fatalf("expected http scheme, got %s", urls.Home)
	}
	if !strings.Contains(urls.Home, ".mp4.m3u8") || strings.Contains(urls.Home, "_pc.mp4") {
		t.Fatalf("expected playlist suffix rewrite, got %s", urls.Home)
	}
	if !strings.Contains(urls.Away, "_a_") || strings.Contains(urls.Away, "_h_") {
		t.Fatalf("expected away marker swap, got %s", urls.Away)
	}
	if urls.French != "" {
		t.Fatalf("expected no French feed for BOS/TOR, got %s", urls.French)
	}
}

func TestNormalizePublishPointDerivesFrenchFeed(t *testing.T) {
	raw := "adaptive://cp99999.live.edgefcs.net/nlds_vod/nhl/2015/02/14/123_h_whole_pc.mp4"

	urls := normalizePublishPoint(raw, "MON", "NYR")
	if !strings.Contains(urls.French, "/nlds_vod/nhlfr/") {
		t.Fatalf("expected French path, got %s", urls.French)
	}
	if !strings.Contains(urls.French, "_fr_") {
		t.Fatalf("expected French marker, got %s", urls.French)
	}
}

func TestNormalizePublishPointSwapsOnlyFirstMarker(t *testing.T) {
	raw := "adaptive://host/nlds_vod/nhl/123_h_whole_h_pc.mp4"

	urls := normalizePublishPoint(raw, "BOS", "TOR")
	if got := urls.Away; !strings.Contains(got, "_a_whole_h_") {
		t.Fatalf("expected only the first marker swapped, got %s", got)
	}
}

func TestNormalizePublishPointEmpty(t *testing.T) {
	urls := normalizePublishPoint("", "MON", "NYR")
	if urls.Home != "" || urls.Away != "" || urls.French != "" {
		t.Fatalf("expected empty urls, got %+v", urls)
	}
}

func TestMapGameDerivesSeasonFromID(t *testing.T) {
	rec := mapGame(servletGame{
		ID:       "2013030145",
		HomeTeam: []string{"CHI"},
		AwayTeam: []string{"LAK"},
	})
	if rec.Season != "2013" {
		t.Fatalf("expected season from id, got %s", rec.Season)
	}
	if rec.SeasonType.Code() != "03" {
		t.Fatalf("expected playoff type from id, got %s", rec.SeasonType)
	}
	if rec.ShortID() != "0145" {
		t.Fatalf("unexpected short id %s", rec.ShortID())
	}
}

func TestMapGameUnwrapsSingletonTeamLists(t *testing.T) {
	rec := mapGame(servletGame{
		ID:       "2014020789",
		HomeTeam: []string{"", "MON"},
		AwayTeam: []string{"NYR"},
	})
	if rec.HomeTeam != "MON" || rec.AwayTeam != "NYR" {
		t.Fatalf("unexpected teams %+v", rec)
	}
}

func TestOptionalIntIgnoresGarbage(t *testing.T) {
	if optionalInt("") != nil || optionalInt("n/a") != nil {
		t.Fatal("expected nil for absent or garbage values")
	}
	if got := optionalInt(" 4 "); got == nil || *got != 4 {
		t.Fatal("expected padded value parsed")
	}
}
