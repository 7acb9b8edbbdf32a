// Package timeutil parses the loosely formatted timestamps the upstream
// generations emit.
package timeutil

import (
	"strings"
	"time"
)

// DateLayout is the canonical schedule-date form used throughout.
const DateLayout = "2006-01-02"

// upstreamLayouts covers the timestamp shapes observed across the servlet
// and schedule generations. All are interpreted as UTC.
var upstreamLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"1/2/2006 3:04:05 PM",
}

// ParseUpstream parses one upstream timestamp as UTC, returning nil when
// the value is absent or unparseable.
func ParseUpstream(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range upstreamLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

var dateLayouts = []string{
	DateLayout,
	"1/2/2006",
	"01/02/2006",
	"2006/01/02",
}

// NormalizeDate rewrites an upstream schedule date into DateLayout,
// passing unrecognized values through untouched.
func NormalizeDate(value string) string {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(DateLayout)
		}
	}
	return value
}
