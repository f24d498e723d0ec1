// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package normalize

import (
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"
	"time"
)

// DefaultLanguages is the preference order for multilingual upstream fields.
var DefaultLanguages = []string{"en", "fi", "sv"}

// PickLanguage returns the first non-empty value in preference order, then
// any non-empty value in sorted key order so the choice is deterministic.
func PickLanguage(values map[string]string, prefs []string) string {
	for _, lang := range prefs {
		if v := strings.TrimSpace(values[lang]); v != "" {
			return v
		}
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := strings.TrimSpace(values[k]); v != "" {
			return v
		}
	}
	return ""
}

// FirstNonEmpty returns the first value that is not blank after trimming.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

var (
	htmlTag    = regexp.MustCompile(`<[^>]*>`)
	whitespace = regexp.MustCompile(`\s+`)
)

// CleanText strips markup, unescapes entities, collapses whitespace and
// truncates to maxRunes (0 means no limit).
func CleanText(s string, maxRunes int) string {
	if s == "" {
		return ""
	}
	s = htmlTag.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = strings.TrimSpace(whitespace.ReplaceAllString(s, " "))

	if maxRunes > 0 {
		runes := []rune(s)
		if len(runes) > maxRunes {
			return strings.TrimSpace(string(runes[:maxRunes])) + "…"
		}
	}
	return s
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	dateOnly,
}

const dateOnly = "2006-01-02"

// ParseTime accepts the timestamp layouts seen across upstreams. Values
// without a zone are interpreted in loc (UTC when nil).
func ParseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ParseEndTime parses an end timestamp. A date-only value covers the whole
// day, so it resolves to the following midnight in loc. Empty or invalid
// values return nil.
func ParseEndTime(s string, loc *time.Location) *time.Time {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.UTC
	}
	if day, err := time.ParseInLocation(dateOnly, s, loc); err == nil {
		end := day.AddDate(0, 0, 1).UTC()
		return &end
	}
	return ParseOptionalTime(s, loc)
}

// ParseOptionalTime parses s and returns nil when it is empty or invalid.
func ParseOptionalTime(s string, loc *time.Location) *time.Time {
	t, err := ParseTime(s, loc)
	if err != nil {
		return nil
	}
	return &t
}
