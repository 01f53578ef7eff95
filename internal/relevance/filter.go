// Package relevance decides whether a news item is about game-industry
// regulation at all.
package relevance

import (
	"strings"
	"time"

	"GameRegMonitor/internal/domain"
	"GameRegMonitor/internal/rules"
)

// DefaultMaxAgeDays bounds IsRecent when no window is configured.
const DefaultMaxAgeDays = 90

// Reason explains a verdict.
type Reason string

const (
	ReasonRelevant     Reason = "relevant"
	ReasonJurisdiction Reason = "jurisdiction"
	ReasonExcluded     Reason = "excluded"
	ReasonNoRegulatory Reason = "no_regulatory_signal"
	ReasonNoGameSignal Reason = "no_game_signal"
)

// Verdict is the outcome of the relevance gate. Pattern holds the rule that
// rejected the item, when there is one.
type Verdict struct {
	Relevant bool
	Reason   Reason
	Pattern  string
}

// Filter applies the ordered relevance checks of a rule pack.
type Filter struct {
	rules rules.Relevance
}

// NewFilter builds a filter from a compiled pack.
func NewFilter(pack *rules.Pack) *Filter {
	return &Filter{rules: pack.Relevance}
}

// Evaluate runs the checks in order and stops at the first rejection.
func (f *Filter) Evaluate(item domain.RawItem) Verdict {
	text := strings.ToLower(item.Text())

	if pattern, ok := f.mainland(text); ok {
		return Verdict{Reason: ReasonJurisdiction, Pattern: pattern}
	}
	if pattern, ok := f.rules.Exclusions.First(text); ok {
		return Verdict{Reason: ReasonExcluded, Pattern: pattern}
	}
	if !f.rules.Regulatory.Any(text) {
		return Verdict{Reason: ReasonNoRegulatory}
	}
	if !f.rules.Game.Any(text) {
		return Verdict{Reason: ReasonNoGameSignal}
	}
	return Verdict{Relevant: true, Reason: ReasonRelevant}
}

// IsRelevant is Evaluate reduced to a boolean.
func (f *Filter) IsRelevant(item domain.RawItem) bool {
	return f.Evaluate(item).Relevant
}

// mainland reports mainland-China content. Strong markers always count; weak
// ones count only when no Hong Kong, Macau or Taiwan marker is present.
func (f *Filter) mainland(text string) (string, bool) {
	j := f.rules.Jurisdiction
	if pattern, ok := j.Strong.First(text); ok {
		return pattern, true
	}
	pattern, ok := j.Weak.First(text)
	if !ok || j.CarveOuts.Any(text) {
		return "", false
	}
	return pattern, true
}

// IsRecent keeps items dated within maxAgeDays of now. Items without a
// parseable date are kept.
func IsRecent(item domain.RawItem, now time.Time, maxAgeDays int) bool {
	if maxAgeDays <= 0 {
		maxAgeDays = DefaultMaxAgeDays
	}
	date, err := time.ParseInLocation(domain.DateLayout, item.Date, now.Location())
	if err != nil {
		return true
	}
	cutoff := now.AddDate(0, 0, -maxAgeDays)
	return !date.Before(cutoff)
}
