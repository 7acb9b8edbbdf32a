package console

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/timewasted/nhl-gamecenter/internal/domain"
	"github.com/timewasted/nhl-gamecenter/internal/providers"
)

const gamesListXML = `<?xml version="1.0" encoding="UTF-8"?>
<result>
	<games>
		<game>
			<id>2014020789</id>
			<season>2014</season>
			<homeTeam>MON</homeTeam>
			<homeTeam>Montreal Canadiens</homeTeam>
			<awayTeam>NYR</awayTeam>
			<homeGoals>3</homeGoals>
			<awayGoals>2</awayGoals>
			<date>2015-02-14</date>
			<gameTimeGMT>2015-02-14T18:00:00</gameTimeGMT>
			<gameEndTimeGMT>2015-02-14T21:05:00</gameEndTimeGMT>
			<isLive>true</isLive>
			<program>
				<publishPoint>adaptive://cp99999.live.edgefcs.net/nlds_vod/nhl/2015/02/14/123_h_whole_pc.mp4?eid=123</publishPoint>
			</program>
		</game>
		<game>
			<id>2014020790</id>
			<season>2014</season>
			<homeTeam>BOS</homeTeam>
			<awayTeam>TOR</awayTeam>
			<date>2015-02-14</date>
			<blocked>true</blocked>
		</game>
	</games>
</result>`

func TestListGamesPostsFormAndMapsResponse(t *testing.T) {
	var capturedForm url.Values

	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", req.Method)
		}
		body, _ := io.ReadAll(req.Body)
		capturedForm, _ = url.ParseQuery(string(body))
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(gamesListXML)),
			Header:     make(http.Header),
		}, nil
	})

	client := NewClient(Config{
		GamesURL:   "http://example.com/servlets/games",
		HTTPClient: &http.Client{Transport: rt},
	})

	games, err := client.ListGames(context.Background(), true)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if capturedForm.Get("format") != "xml" || capturedForm.Get("isFlex") != "true" {
		t.Fatalf("unexpected form %v", capturedForm)
	}
	if capturedForm.Get("app") != "true" {
		t.Fatalf("expected app=true for today-only listing, got %v", capturedForm)
	}
	if len(games) != 2 {
		t.Fatalf("expected 2 games, got %d", len(games))
	}

	game := games[0]
	if game.ID != "2014020789" || game.HomeTeam != "MON" || game.AwayTeam != "NYR" {
		t.Fatalf("unexpected game identity %+v", game)
	}
	if game.HomeGoals == nil || *game.HomeGoals != 3 || game.AwayGoals == nil || *game.AwayGoals != 2 {
		t.Fatalf("unexpected scores %+v", game)
	}
	if !game.Live || game.Blocked {
		t.Fatalf("unexpected flags %+v", game)
	}
	if game.StartTime == nil || game.EndTime == nil {
		t.Fatalf("expected parsed times %+v", game)
	}
	if !game.FrenchGame {
		t.Fatal("expected a Montreal game to carry the French feed flag")
	}
	if games[1].HomeGoals != nil || games[1].Live || !games[1].Blocked {
		t.Fatalf("unexpected second game %+v", games[1])
	}
}

func TestListGamesOmitsAppFieldForRecentGames(t *testing.T) {
	var capturedForm url.Values
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		capturedForm, _ = url.ParseQuery(string(body))
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(gamesListXML)),
			Header:     make(http.Header),
		}, nil
	})

	client := NewClient(Config{HTTPClient: &http.Client{Transport: rt}})
	if _, err := client.ListGames(context.Background(), false); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if capturedForm.Has("app") {
		t.Fatalf("expected no app field, got %v", capturedForm)
	}
}

func TestListGamesTranslatesNoAccessCode(t *testing.T) {
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`<result><code>noaccess</code></result>`)),
			Header:     make(http.Header),
		}, nil
	})

	client := NewClient(Config{HTTPClient: &http.Client{Transport: rt}})
	_, err := client.ListGames(context.Background(), true)
	le, ok := providers.AsLogicError(err)
	if !ok || le.Code != providers.CodeNoAccess {
		t.Fatalf("expected noaccess logic error, got %v", err)
	}
	if !providers.AuthExpired(err) {
		t.Fatal("expected noaccess to read as expired auth")
	}
}

func TestListGamesTranslatesNon200(t *testing.T) {
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusUnauthorized,
			Body:       io.NopCloser(strings.NewReader("")),
			Header:     make(http.Header),
		}, nil
	})

	client := NewClient(Config{HTTPClient: &http.Client{Transport: rt}})
	_, err := client.ListGames(context.Background(), true)
	ne, ok := providers.AsNetworkError(err)
	if !ok || ne.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 network error, got %v", err)
	}
}

func TestGameInfoFindsByShortID(t *testing.T) {
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(gamesListXML)),
			Header:     make(http.Header),
		}, nil
	})

	client := NewClient(Config{HTTPClient: &http.Client{Transport: rt}})
	game, err := client.GameInfo(context.Background(), "0790")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if game.ID != "2014020790" {
		t.Fatalf("unexpected game %+v", game)
	}

	if _, err := client.GameInfo(context.Background(), "9999"); err == nil {
		t.Fatal("expected error for unknown game")
	}
}

func TestMintMasterURLStripsTabletMarker(t *testing.T) {
	var capturedForm url.Values
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		body, _ := io.ReadAll(req.Body)
		capturedForm, _ = url.ParseQuery(string(body))
		xml := `<result><path>http://nlds.example.com/nhl/2015/02/14/123_h_whole_ipad.mp4.m3u8?eid=123</path></result>`
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(xml)),
			Header:     make(http.Header),
		}, nil
	})

	client := NewClient(Config{HTTPClient: &http.Client{Transport: rt}})
	rc := domain.ResolutionContext{
		Game: domain.GameRecord{
			ID:         "2014020789",
			Season:     "2014",
			SeasonType: domain.SeasonRegular,
		},
		Type:        domain.StreamCondensed,
		Perspective: domain.PerspectiveAway,
	}

	got, err := client.MintMasterURL(context.Background(), rc)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if strings.Contains(got, "_ipad") {
		t.Fatalf("expected tablet marker stripped, got %s", got)
	}
	if capturedForm.Get("type") != "game" || capturedForm.Get("gs") != "condensed" || capturedForm.Get("ft") != "4" {
		t.Fatalf("unexpected mint form %v", capturedForm)
	}
	if capturedForm.Get("id") != "2014020789" {
		t.Fatalf("unexpected mint id %s", capturedForm.Get("id"))
	}
	if len(capturedForm.Get("plid")) != 32 {
		t.Fatalf("expected 16 random bytes hex encoded, got %q", capturedForm.Get("plid"))
	}
}

func TestMintMasterURLUsesKnownLiveLocator(t *testing.T) {
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		t.Fatal("expected no network call for a known live locator")
		return nil, nil
	})

	client := NewClient(Config{HTTPClient: &http.Client{Transport: rt}})
	rc := domain.ResolutionContext{
		Game: domain.GameRecord{
			Streams: domain.StreamSet{
				Live: domain.PerspectiveURLs{Home: "http://example.com/live_h.m3u8"},
			},
		},
		Type:        domain.StreamLive,
		Perspective: domain.PerspectiveHome,
	}

	got, err := client.MintMasterURL(context.Background(), rc)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "http://example.com/live_h.m3u8" {
		t.Fatalf("unexpected url %s", got)
	}
}

func TestMintMasterURLRejectsGoaliePerspectives(t *testing.T) {
	client := NewClient(Config{})
	rc := domain.ResolutionContext{
		Type:        domain.StreamLive,
		Perspective: domain.PerspectiveHomeGoalie,
	}

	_, err := client.MintMasterURL(context.Background(), rc)
	if !errors.Is(err, providers.ErrNoFeed) {
		t.Fatalf("expected no-feed error, got %v", err)
	}
	if !providers.FeedMissing(err) {
		t.Fatal("expected goalie feeds to read as missing")
	}
}

func TestBootstrapTouchesConsoleServlet(t *testing.T) {
	var capturedURL string
	var capturedForm url.Values
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		capturedURL = req.URL.String()
		body, _ := io.ReadAll(req.Body)
		capturedForm, _ = url.ParseQuery(string(body))
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`<result><code>ok</code></result>`)),
			Header:     make(http.Header),
		}, nil
	})

	client := NewClient(Config{
		ConsoleURL: "http://example.com/servlets/simpleconsole",
		HTTPClient: &http.Client{Transport: rt},
	})
	if err := client.Bootstrap(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if capturedURL != "http://example.com/servlets/simpleconsole" {
		t.Fatalf("unexpected url %s", capturedURL)
	}
	if capturedForm.Get("isFlex") != "true" {
		t.Fatalf("unexpected form %v", capturedForm)
	}
}

func TestHighlightsMapsPerspectives(t *testing.T) {
	var capturedQuery url.Values
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		capturedQuery = req.URL.Query()
		body := `[
			{"id": "2014020789-X-h", "publishPoint": "http://example.com/hl_h.mp4"},
			{"id": "2014020789-X-a", "publishPoint": "http://example.com/hl_a.mp4"},
			{"id": "2014020789-X-fr", "publishPoint": "http://example.com/hl_fr.mp4"}
		]`
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     make(http.Header),
		}, nil
	})

	client := NewClient(Config{HTTPClient: &http.Client{Transport: rt}})
	urls, err := client.Highlights(context.Background(), "2014", "789")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if capturedQuery.Get("format") != "json" {
		t.Fatalf("unexpected query %v", capturedQuery)
	}
	if capturedQuery.Get("ids") != "2014020789-X-h,2014020789-X-a,2014020789-X-fr" {
		t.Fatalf("unexpected ids %s", capturedQuery.Get("ids"))
	}
	if urls[domain.PerspectiveFrench] != "http://example.com/hl_fr.mp4" {
		t.Fatalf("unexpected urls %v", urls)
	}
}

func TestHighlightsEmptyBodyMeansNoHighlights(t *testing.T) {
	rt := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader("  ")),
			Header:     make(http.Header),
		}, nil
	})

	client := NewClient(Config{HTTPClient: &http.Client{Transport: rt}})
	urls, err := client.Highlights(context.Background(), "2014", "789")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(urls) != 0 {
		t.Fatalf("expected empty map, got %v", urls)
	}
}

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
