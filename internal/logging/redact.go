// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package logging

import (
	"net/url"
	"strings"
)

// redactedValue replaces credential values in logged URLs.
const redactedValue = "REDACTED"

var sensitiveParams = map[string]bool{
	"apikey":       true,
	"api_key":      true,
	"key":          true,
	"token":        true,
	"access_token": true,
	"secret":       true,
}

// SanitizeURL returns raw with credential query parameters redacted.
// Unparseable input is replaced entirely.
func SanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "[invalid url]"
	}
	u.User = nil

	query := u.Query()
	changed := false
	for name := range query {
		if sensitiveParams[strings.ToLower(name)] {
			query.Set(name, redactedValue)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// SanitizeValue truncates a caller-controlled value before it is logged and
// strips control characters so log lines cannot be forged.
func SanitizeValue(value string, maxLen int) string {
	var b strings.Builder
	for _, r := range value {
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	clean := []rune(b.String())
	if maxLen > 0 && len(clean) > maxLen {
		return string(clean[:maxLen]) + "..."
	}
	return string(clean)
}
