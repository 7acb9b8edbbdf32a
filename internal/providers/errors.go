package providers

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkError captures transport failures and non-200 upstream responses.
type NetworkError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	msg := "received a non-200 HTTP response"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status=%d, op=%s)", msg, e.StatusCode, e.Op)
	}
	return fmt.Sprintf("%s (op=%s)", msg, e.Op)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AsNetworkError attempts to unwrap an error into a NetworkError.
func AsNetworkError(err error) (*NetworkError, bool) {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}

// LoginError reports that upstream rejected the current credentials. It is
// terminal for the attempt and never retried automatically.
type LoginError struct {
	Reason string
}

func (e *LoginError) Error() string {
	if e.Reason != "" {
		return "login failed: " + e.Reason
	}
	return "login failed: check your login credentials"
}

// AsLoginError attempts to unwrap an error into a LoginError.
func AsLoginError(err error) (*LoginError, bool) {
	var le *LoginError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

// LogicError reports a malformed or unexpected upstream response shape, an
// access-denied application code, or invalid local configuration. Code holds
// the upstream application code when one was present.
type LogicError struct {
	Op      string
	Message string
	Code    string
}

func (e *LogicError) Error() string {
	return fmt.Sprintf("%s (op=%s)", e.Message, e.Op)
}

// AsLogicError attempts to unwrap an error into a LogicError.
func AsLogicError(err error) (*LogicError, bool) {
	var le *LogicError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

// CodeNoAccess is the application-level code the legacy servlets return when
// the session is no longer authorized.
const CodeNoAccess = "noaccess"

// AuthExpired reports whether the error indicates an expired or missing
// authorization (HTTP 401 or an upstream noaccess code) that a single
// re-login may fix.
func AuthExpired(err error) bool {
	if ne, ok := AsNetworkError(err); ok {
		return ne.StatusCode == http.StatusUnauthorized
	}
	if le, ok := AsLogicError(err); ok {
		return le.Code == CodeNoAccess
	}
	return false
}

// ErrNoFeed reports that the requested perspective has no feed on the
// current source. Sources that cannot even ask upstream (the legacy
// servlets have no goalie feeds) return it directly.
var ErrNoFeed = errors.New("no feed for the requested perspective")

// FeedMissing reports whether the error means "this perspective has no
// feed" (HTTP 404 or ErrNoFeed), which per-perspective resolution
// silently skips.
func FeedMissing(err error) bool {
	if errors.Is(err, ErrNoFeed) {
		return true
	}
	ne, ok := AsNetworkError(err)
	return ok && ne.StatusCode == http.StatusNotFound
}
