package stream

import (
	"github.com/timewasted/nhl-gamecenter/internal/domain"
	"github.com/timewasted/nhl-gamecenter/internal/providers"
)

// BitrateLadder is the ordered preference table exposed to the front
// end. Index 0 always asks, index 1 picks the best available, the rest
// are exact kbps targets.
var BitrateLadder = []string{
	"ask", "best", "5000", "4500", "3000", "1600", "1200", "800", "400", "240", "150",
}

const (
	// BitrateAsk defers selection to the interactive collaborator.
	BitrateAsk = "ask"
	// BitrateBest picks the highest available rendition.
	BitrateBest = "best"
)

// AskFunc is the interactive collaborator invoked when the preference is
// "ask" or the configured bitrate is unavailable. It receives the
// available bitrates sorted descending and returns the chosen one.
type AskFunc func(available []string) (string, error)

// Selector implements the bitrate selection policy over a PlaylistMap.
type Selector struct {
	// Preference is an entry of BitrateLadder.
	Preference string
	// Ask is the interactive fallback; optional.
	Ask AskFunc
}

// Choose picks the playlist key to play. A single-entry map is returned
// as-is. An exact preference match wins; otherwise the Ask collaborator
// decides when present, else the highest bitrate stands in.
func (s Selector) Choose(playlists domain.PlaylistMap) (string, error) {
	const op = "select_bitrate"

	if len(playlists) == 0 {
		return "", &providers.LogicError{Op: op, Message: "no playlists found"}
	}
	available := playlists.Bitrates()
	if len(available) == 1 {
		return available[0], nil
	}

	switch s.Preference {
	case BitrateAsk, "":
		return s.ask(op, available)
	case BitrateBest:
		return available[0], nil
	}

	for _, bitrate := range available {
		if bitrate == s.Preference {
			return bitrate, nil
		}
	}
	if s.Ask != nil {
		return s.ask(op, available)
	}
	return available[0], nil
}

func (s Selector) ask(op string, available []string) (string, error) {
	if s.Ask == nil {
		// Headless deployments have no prompt to fall back to.
		return available[0], nil
	}
	choice, err := s.Ask(available)
	if err != nil {
		return "", err
	}
	for _, bitrate := range available {
		if bitrate == choice {
			return bitrate, nil
		}
	}
	return "", &providers.LogicError{Op: op, Message: "chosen bitrate is not available"}
}
