// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

/*
Package normalize holds the classification rules and text helpers shared by
every source adapter.

# Classification

A Ruleset is an ordered list of (predicate, category) rules evaluated
first-match-wins over the lowercased event text. DefaultRuleset ships
keyword rules in English, Finnish and Swedish; anything unmatched is
models.CategoryOther.

	rules := normalize.DefaultRuleset()
	cat := rules.Classify(title, strings.Join(tags, " "))

# Screening

Screen drops purely online events and events restricted to an excluded
audience (school groups, seniors-only, members-only).

# Acceptance

Normalizer.Accept applies the adapter boundary checks in one place: usable
title and coordinates, screening, already-ended events, caller bounds. It
also fills Category and PriceType. Adapters build a candidate record from
their upstream schema and hand it to Accept.
*/
package normalize
