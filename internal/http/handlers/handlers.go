package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/timewasted/nhl-gamecenter/internal/app/catalog"
	"github.com/timewasted/nhl-gamecenter/internal/domain"
	"github.com/timewasted/nhl-gamecenter/internal/http/requestutil"
	"github.com/timewasted/nhl-gamecenter/internal/poller"
	"github.com/timewasted/nhl-gamecenter/internal/providers"
	"github.com/timewasted/nhl-gamecenter/internal/stream"
	"github.com/timewasted/nhl-gamecenter/internal/timeutil"
)

type nowFunc func() time.Time

// StreamResolver is the slice of the stream resolver the facade needs.
type StreamResolver interface {
	Playlists(ctx context.Context, rc domain.ResolutionContext) (domain.PlaylistMap, error)
	Resolve(ctx context.Context, rc domain.ResolutionContext, sel stream.Selector) (string, error)
}

// Handler wires HTTP routes to the catalog, archive, and stream services.
type Handler struct {
	catalog  *catalog.Service
	source   providers.CatalogSource
	resolver StreamResolver
	bitrate  string
	logger   *slog.Logger
	now      nowFunc
	statusFn func() poller.Status
}

// NewHandler constructs a Handler with defaults. bitrate is the configured
// preference applied when the request does not carry one.
func NewHandler(svc *catalog.Service, source providers.CatalogSource, resolver StreamResolver, bitrate string, logger *slog.Logger, statusFn func() poller.Status) *Handler {
	return &Handler{
		catalog:  svc,
		source:   source,
		resolver: resolver,
		bitrate:  bitrate,
		logger:   logger,
		now:      time.Now,
		statusFn: statusFn,
	}
}

// Health reports the service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}
	if h.statusFn == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	if h.statusFn().IsReady() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := h.statusFn().LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, http.StatusServiceUnavailable, msg, h.logger)
}

// gameView decorates a GameRecord with a display title for listings.
type gameView struct {
	domain.GameRecord
	Title string `json:"title"`
}

// Games returns the current slate with live scores folded in.
func (h *Handler) Games(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}
	logger := loggerFromContext(r, h.logger)
	query := r.URL.Query()
	todayOnly := requestutil.ParseBool(query.Get("today"))
	awayFirst := requestutil.ParseBool(query.Get("away_first"))

	games := h.catalog.Games()
	if len(games) == 0 {
		fetched, err := h.source.ListGames(r.Context(), todayOnly)
		if err != nil {
			writeOpError(w, r, errorStatus(err), err.Error(), "list_games", query, logger)
			return
		}
		h.catalog.ReplaceGames(fetched)
		games = h.catalog.Games()
	}

	date := h.now().UTC().Format(timeutil.DateLayout)
	if todayOnly {
		filtered := games[:0:0]
		for _, g := range games {
			if g.Date == date {
				filtered = append(filtered, g)
			}
		}
		games = filtered
	}

	views := make([]gameView, 0, len(games))
	for _, g := range games {
		views = append(views, gameView{GameRecord: g, Title: gameTitle(g, awayFirst)})
	}

	payload := struct {
		Date  string     `json:"date"`
		Games []gameView `json:"games"`
	}{Date: date, Games: views}
	writeJSON(w, http.StatusOK, payload, h.logger)
}

// GameByID returns a specific game if present.
func (h *Handler) GameByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}
	id, ok := gameIDFromPath(r.URL.Path)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "invalid game id", h.logger)
		return
	}

	game, found, err := h.lookupGame(r, id)
	if err != nil {
		writeOpError(w, r, errorStatus(err), err.Error(), "game_info", url.Values{"id": {id}}, h.logger)
		return
	}
	if !found {
		writeError(w, r, http.StatusNotFound, "game not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, game, h.logger)
}

// Archives lists the seasons and months with archived games.
func (h *Handler) Archives(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}
	seasons, err := h.source.ArchivedSeasons(r.Context())
	if err != nil {
		writeOpError(w, r, errorStatus(err), err.Error(), "archived_seasons", nil, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Seasons []domain.ArchiveSeason `json:"seasons"`
	}{Seasons: seasons}, h.logger)
}

// ArchiveMonth lists the archived games of one season month.
func (h *Handler) ArchiveMonth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}
	season, month, ok := archivePathParts(r.URL.Path)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "expected /archives/{season}/{month}", h.logger)
		return
	}
	params := url.Values{"season": {strconv.Itoa(season)}, "month": {month}}

	games, err := h.source.ArchivedMonth(r.Context(), season, month)
	if err != nil {
		status := errorStatus(err)
		if _, ok := providers.AsLogicError(err); ok {
			status = http.StatusBadRequest
		}
		writeOpError(w, r, status, err.Error(), "archived_month", params, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Season string              `json:"season"`
		Month  string              `json:"month"`
		Games  []domain.GameRecord `json:"games"`
	}{Season: strconv.Itoa(season), Month: month, Games: games}, h.logger)
}

// Stream resolves one playable URL, or the full playlist map when the
// request asks for bitrate=ask.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}
	logger := loggerFromContext(r, h.logger)
	query := r.URL.Query()

	id := query.Get("game")
	if id == "" {
		writeError(w, r, http.StatusBadRequest, "missing game parameter", h.logger)
		return
	}
	st, err := parseStreamType(query.Get("type"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	persp, err := parsePerspective(query.Get("perspective"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	bitrate := query.Get("bitrate")
	if bitrate == "" {
		bitrate = h.bitrate
	}
	fromStart := requestutil.ParseBool(query.Get("from_start"))

	game, found, err := h.lookupGame(r, id)
	if err != nil {
		writeOpError(w, r, errorStatus(err), err.Error(), "resolve_stream", query, logger)
		return
	}
	if !found {
		writeError(w, r, http.StatusNotFound, "game not found", h.logger)
		return
	}

	rc := domain.ResolutionContext{
		Game:        game,
		Type:        st,
		Perspective: persp,
		FromStart:   fromStart,
	}

	if bitrate == stream.BitrateAsk {
		playlists, err := h.resolver.Playlists(r.Context(), rc)
		if err != nil {
			h.writeStreamError(w, r, err, query, logger)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Game        string             `json:"game"`
			Type        domain.StreamType  `json:"type"`
			Perspective domain.Perspective `json:"perspective"`
			Playlists   domain.PlaylistMap `json:"playlists"`
		}{Game: game.ID, Type: st, Perspective: persp, Playlists: playlists}, h.logger)
		return
	}

	sel := stream.Selector{Preference: bitrate}
	streamURL, err := h.resolver.Resolve(r.Context(), rc, sel)
	if err != nil {
		h.writeStreamError(w, r, err, query, logger)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Game        string             `json:"game"`
		Type        domain.StreamType  `json:"type"`
		Perspective domain.Perspective `json:"perspective"`
		Bitrate     string             `json:"bitrate"`
		URL         string             `json:"url"`
	}{Game: game.ID, Type: st, Perspective: persp, Bitrate: bitrate, URL: streamURL}, h.logger)
}

func (h *Handler) writeStreamError(w http.ResponseWriter, r *http.Request, err error, query url.Values, logger *slog.Logger) {
	if providers.FeedMissing(err) {
		writeOpError(w, r, http.StatusNotFound, "no feed for the requested perspective", "resolve_stream", query, logger)
		return
	}
	writeOpError(w, r, errorStatus(err), err.Error(), "resolve_stream", query, logger)
}

// lookupGame serves from the catalog cache first and falls back to a
// direct source fetch for archived games the poller never saw.
func (h *Handler) lookupGame(r *http.Request, id string) (domain.GameRecord, bool, error) {
	if game, ok := h.catalog.GameByID(id); ok {
		return game, true, nil
	}
	game, err := h.source.GameInfo(r.Context(), id)
	if err != nil {
		if _, ok := providers.AsLogicError(err); ok {
			return domain.GameRecord{}, false, nil
		}
		return domain.GameRecord{}, false, err
	}
	return game, true, nil
}

// errorStatus maps the provider error taxonomy onto facade status codes.
// Upstream auth expiry surfaces as 401 so clients know to retry after the
// next login; other upstream failures are 502.
func errorStatus(err error) int {
	if ne, ok := providers.AsNetworkError(err); ok {
		if ne.StatusCode == http.StatusUnauthorized {
			return http.StatusUnauthorized
		}
		return http.StatusBadGateway
	}
	if _, ok := providers.AsLoginError(err); ok {
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func gameIDFromPath(path string) (string, bool) {
	raw := strings.TrimPrefix(path, "/games")
	raw = strings.TrimPrefix(raw, "/")
	if raw == "" {
		return "", false
	}
	id, err := url.PathUnescape(raw)
	if err != nil || id == "" || strings.ContainsAny(id, " \t/") {
		return "", false
	}
	return id, true
}

func archivePathParts(path string) (int, string, bool) {
	raw := strings.TrimPrefix(path, "/archives")
	raw = strings.Trim(raw, "/")
	parts := strings.Split(raw, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return 0, "", false
	}
	season, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", false
	}
	if _, err := strconv.Atoi(parts[1]); err != nil {
		return 0, "", false
	}
	return season, parts[1], true
}

func parseStreamType(raw string) (domain.StreamType, error) {
	switch domain.StreamType(raw) {
	case "":
		return domain.StreamLive, nil
	case domain.StreamLive, domain.StreamCondensed, domain.StreamHighlights:
		return domain.StreamType(raw), nil
	default:
		return "", fmt.Errorf("invalid stream type %q", raw)
	}
}

func parsePerspective(raw string) (domain.Perspective, error) {
	switch domain.Perspective(raw) {
	case "":
		return domain.PerspectiveHome, nil
	case domain.PerspectiveHome, domain.PerspectiveAway, domain.PerspectiveFrench,
		domain.PerspectiveHomeGoalie, domain.PerspectiveAwayGoalie:
		return domain.Perspective(raw), nil
	default:
		return "", fmt.Errorf("invalid perspective %q", raw)
	}
}

// gameTitle renders the listing title, optionally away first, with scores
// folded in when known.
func gameTitle(g domain.GameRecord, awayFirst bool) string {
	home := teamLabel(g.HomeTeam, g.HomeGoals)
	away := teamLabel(g.AwayTeam, g.AwayGoals)
	if awayFirst {
		return away + " at " + home
	}
	return home + " vs " + away
}

func teamLabel(team string, goals *int) string {
	if goals == nil {
		return team
	}
	return fmt.Sprintf("%s %d", team, *goals)
}
