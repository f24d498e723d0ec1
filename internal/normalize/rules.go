// Happening - Local Event Aggregation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/happening

package normalize

import (
	"regexp"
	"strings"

	"github.com/tomtom215/happening/internal/models"
)

// Rule maps text to a category when Match returns true.
type Rule struct {
	Category models.Category
	Match    func(text string) bool
}

// KeywordRule builds a rule from a case-insensitive regular expression.
// It panics on an invalid pattern; rules are compiled at startup.
func KeywordRule(category models.Category, pattern string) Rule {
	re := regexp.MustCompile(`(?i)` + pattern)
	return Rule{Category: category, Match: re.MatchString}
}

// Ruleset evaluates rules in order; the first match wins.
type Ruleset struct {
	rules []Rule
}

// NewRuleset creates a ruleset from rules in evaluation order.
func NewRuleset(rules ...Rule) *Ruleset {
	return &Ruleset{rules: rules}
}

// Classify returns the first matching category for the joined texts, or
// models.CategoryOther when nothing matches.
func (r *Ruleset) Classify(texts ...string) models.Category {
	text := joinLower(texts)
	if text == "" {
		return models.CategoryOther
	}
	for _, rule := range r.rules {
		if rule.Match(text) {
			return rule.Category
		}
	}
	return models.CategoryOther
}

// Len returns the number of rules.
func (r *Ruleset) Len() int {
	return len(r.rules)
}

// DefaultRuleset returns the built-in multi-language keyword rules.
// Finnish stems are matched as substrings because compounds are common
// ("jazzkonsertti", "lastenteatteri").
func DefaultRuleset() *Ruleset {
	return NewRuleset(
		KeywordRule(models.CategoryMusic,
			`\b(concert|music|gig|jazz|blues|rock|pop|hip[- ]?hop|band|orchestra|choir|opera|symphony|dj)\b|konsert|musiikk|keikk|kuoro|ooppera|orkester|musik`),
		KeywordRule(models.CategoryFood,
			`\b(food|restaurant|dinner|brunch|lunch|tasting|wine|beer|cooking|street food|bakery)\b|ruoka|ravintol|viini|maistelu|\bmat\b|matmarknad|vinprovning`),
		KeywordRule(models.CategorySports,
			`\b(sports?|football|soccer|hockey|basketball|running|marathon|yoga|fitness|tennis|cycling|match)\b|urheilu|jalkapallo|jääkiekko|juoksu|liikunta|idrott`),
		KeywordRule(models.CategoryFamily,
			`\b(family|families|kids|children|child|toddlers?)\b|perhe|lapsi|lasten|barn|familj`),
		KeywordRule(models.CategoryArts,
			`\b(art|arts|exhibition|gallery|museum|theatre|theater|dance|film|cinema|culture|literature|poetry|circus)\b|taide|näyttely|teatteri|tanssi|elokuva|museo|sirkus|konst|utställning`),
		KeywordRule(models.CategoryTech,
			`\b(tech|technology|coding|programming|developers?|startup|hackathon|ai|software|meetup)\b|teknologi|ohjelmointi|koodaus`),
		KeywordRule(models.CategoryNightlife,
			`\b(club|party|nightlife|bar|karaoke|stand[- ]?up|comedy|drag)\b|klubi|bileet|yökerho|baari`),
	)
}

// Screen rejects events that cannot be attended in person or are closed to
// the general public.
type Screen struct {
	online      *regexp.Regexp
	demographic *regexp.Regexp
}

// DefaultScreen returns the built-in online and restricted-audience lists.
func DefaultScreen() *Screen {
	return &Screen{
		online: regexp.MustCompile(`(?i)\b(online|virtual|webinar|livestream|live stream|zoom)\b|verkossa|etänä|etätapahtum|virtuaal|webinaari|striimi|digitalt`),
		demographic: regexp.MustCompile(`(?i)\b(school groups?|seniors only|members only|for seniors)\b|koululaisille|kouluryhm|senioreille|ikäihmisille|vain jäsenille|för skolgrupper|för seniorer`),
	}
}

// Excluded reports whether the texts mark the event as online-only or
// restricted, and which list matched.
func (s *Screen) Excluded(texts ...string) (bool, string) {
	text := joinLower(texts)
	if text == "" {
		return false, ""
	}
	if s.online.MatchString(text) {
		return true, "online"
	}
	if s.demographic.MatchString(text) {
		return true, "demographic"
	}
	return false, ""
}

var freeKeywords = regexp.MustCompile(`(?i)\b(free|free entry|free admission|gratis)\b|ilmai|maksuton|vapaa pääsy|fritt inträde|avgiftsfri`)

// InferPriceType prefers the upstream's explicit flag and falls back to a
// free-keyword screen over texts. Unknown prices are paid.
func InferPriceType(isFree *bool, texts ...string) models.PriceType {
	if isFree != nil {
		if *isFree {
			return models.PriceFree
		}
		return models.PricePaid
	}
	if freeKeywords.MatchString(joinLower(texts)) {
		return models.PriceFree
	}
	return models.PricePaid
}

func joinLower(texts []string) string {
	parts := make([]string, 0, len(texts))
	for _, t := range texts {
		if t = strings.TrimSpace(t); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}
