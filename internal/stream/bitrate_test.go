package stream

import (
	"testing"

	"github.com/timewasted/nhl-gamecenter/internal/domain"
)

func testPlaylists() domain.PlaylistMap {
	return domain.PlaylistMap{
		"3000": "http://example.com/v_3000.m3u8",
		"1600": "http://example.com/v_1600.m3u8",
		"800":  "http://example.com/v_800.m3u8",
	}
}

func TestSelectorExactMatch(t *testing.T) {
	sel := Selector{Preference: "1600"}
	got, err := sel.Choose(testPlaylists())
	if err != nil || got != "1600" {
		t.Fatalf("expected exact match, got %q err %v", got, err)
	}
}

func TestSelectorBestPicksHighest(t *testing.T) {
	sel := Selector{Preference: BitrateBest}
	got, err := sel.Choose(testPlaylists())
	if err != nil || got != "3000" {
		t.Fatalf("expected highest bitrate, got %q err %v", got, err)
	}
}

func TestSelectorAsksWhenConfigured(t *testing.T) {
	var offered []string
	sel := Selector{
		Preference: BitrateAsk,
		Ask: func(available []string) (string, error) {
			offered = available
			return "800", nil
		},
	}
	got, err := sel.Choose(testPlaylists())
	if err != nil || got != "800" {
		t.Fatalf("expected prompted choice, got %q err %v", got, err)
	}
	if len(offered) != 3 || offered[0] != "3000" {
		t.Fatalf("expected descending offer list, got %v", offered)
	}
}

func TestSelectorUnavailablePreferenceFallsBackToAsk(t *testing.T) {
	sel := Selector{
		Preference: "5000",
		Ask: func(available []string) (string, error) {
			return available[len(available)-1], nil
		},
	}
	got, err := sel.Choose(testPlaylists())
	if err != nil || got != "800" {
		t.Fatalf("expected prompted fallback, got %q err %v", got, err)
	}
}

func TestSelectorUnavailablePreferenceHeadlessPicksHighest(t *testing.T) {
	sel := Selector{Preference: "5000"}
	got, err := sel.Choose(testPlaylists())
	if err != nil || got != "3000" {
		t.Fatalf("expected highest fallback, got %q err %v", got, err)
	}
}

func TestSelectorSingleEntryShortCircuits(t *testing.T) {
	sel := Selector{
		Preference: BitrateAsk,
		Ask: func([]string) (string, error) {
			t.Fatal("expected no prompt for a single rendition")
			return "", nil
		},
	}
	got, err := sel.Choose(domain.PlaylistMap{"0": "http://example.com/single.m3u8"})
	if err != nil || got != "0" {
		t.Fatalf("expected the single entry, got %q err %v", got, err)
	}
}

func TestSelectorEmptyMapIsError(t *testing.T) {
	if _, err := (Selector{Preference: BitrateBest}).Choose(domain.PlaylistMap{}); err == nil {
		t.Fatal("expected error for empty playlist map")
	}
}
