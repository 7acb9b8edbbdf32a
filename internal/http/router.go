package http

import (
	nethttp "net/http"

	"github.com/timewasted/nhl-gamecenter/internal/http/handlers"
)

// NewRouter registers the facade routes on a ServeMux.
func NewRouter(handler *handlers.Handler) nethttp.Handler {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/health", handler.Health)
	mux.HandleFunc("/ready", handler.Ready)
	mux.HandleFunc("/games", handler.Games)
	mux.HandleFunc("/games/", handler.GameByID)
	mux.HandleFunc("/archives", handler.Archives)
	mux.HandleFunc("/archives/", handler.ArchiveMonth)
	mux.HandleFunc("/stream", handler.Stream)
	return mux
}
