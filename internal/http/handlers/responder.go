package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/timewasted/nhl-gamecenter/internal/http/middleware"
	"github.com/timewasted/nhl-gamecenter/internal/logging"
)

// errorBody is the uniform error payload. Op and Params carry enough to
// replay the failed operation verbatim.
type errorBody struct {
	Error     string            `json:"error"`
	Op        string            `json:"op,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && logger != nil {
		logger.Error("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, logger *slog.Logger) {
	writeOpError(w, r, status, message, "", nil, logger)
}

func writeOpError(w http.ResponseWriter, r *http.Request, status int, message, op string, params url.Values, logger *slog.Logger) {
	reqID := middleware.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = r.Header.Get("X-Request-ID")
	}
	body := errorBody{Error: message, Op: op, RequestID: reqID}
	if len(params) > 0 {
		body.Params = make(map[string]string, len(params))
		for k := range params {
			body.Params[k] = params.Get(k)
		}
	}
	writeJSON(w, status, body, logger)
}

func loggerFromContext(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	return logging.FromContext(r.Context(), fallback)
}
