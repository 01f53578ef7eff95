package domain

import (
	"strings"
	"time"
)

// DateLayout is the canonical item date format.
const DateLayout = "2006-01-02"

// SummaryLimit caps stored summaries, counted in runes.
const SummaryLimit = 500

// RawItem is a single news/feed entry as produced by a source.
type RawItem struct {
	Title      string
	Summary    string
	URL        string
	Date       string
	Source     string
	Lang       string
	RegionHint string
}

// Text joins title and summary into the string every rule is evaluated against.
func (i RawItem) Text() string {
	return strings.TrimSpace(i.Title + " " + i.Summary)
}

// LabeledItem is a classified item ready for persistence and reporting.
type LabeledItem struct {
	ID                int64
	Region            string
	CategoryL1        string
	CategoryL2        string
	Title             string
	Date              string
	Status            string
	Summary           string
	SourceName        string
	SourceURL         string
	Lang              string
	Tier              Tier
	ImpactScore       int
	SummaryTranslated string
	CreatedAt         time.Time
}

// Tier ranks the authority of a publishing source.
type Tier string

const (
	TierOfficial Tier = "official"
	TierLegal    Tier = "legal"
	TierIndustry Tier = "industry"
	TierNews     Tier = "news"
)

// ParseTier accepts the four known tier names.
func ParseTier(value string) (Tier, bool) {
	switch Tier(strings.ToLower(strings.TrimSpace(value))) {
	case TierOfficial:
		return TierOfficial, true
	case TierLegal:
		return TierLegal, true
	case TierIndustry:
		return TierIndustry, true
	case TierNews:
		return TierNews, true
	default:
		return "", false
	}
}

// TruncateRunes cuts s to at most limit runes.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	count := 0
	for idx := range s {
		if count == limit {
			return s[:idx]
		}
		count++
	}
	return s
}

// SourceBatch is the outcome of fetching one configured source.
type SourceBatch struct {
	Source string
	Items  []RawItem
	Err    error
}
