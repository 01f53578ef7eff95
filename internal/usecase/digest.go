package usecase

import (
	"fmt"
	"sort"
	"strings"

	"GameRegMonitor/internal/domain"
)

const (
	translationLimit   = 500
	titlePrefixCompare = 40
	digestTitleLimit   = 120
)

// digestOrder ranks statuses for the digest; unlisted statuses sort last.
var digestOrder = map[string]int{
	"Enforcement Action": 0,
	"In Force":           1,
	"Upcoming":           2,
	"Draft/Consultation": 3,
	"Under Deliberation": 4,
}

func buildDigestMessage(report domain.RunReport, limit int) string {
	if len(report.NewItems) == 0 {
		return ""
	}

	items := make([]domain.LabeledItem, len(report.NewItems))
	copy(items, report.NewItems)
	sort.SliceStable(items, func(i, j int) bool {
		pi, pj := statusRank(items[i].Status), statusRank(items[j].Status)
		if pi != pj {
			return pi < pj
		}
		return items[i].ImpactScore > items[j].ImpactScore
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Game regulation monitor: %d new item(s), %d classified this run\n", report.Inserted, report.Classified)
	for _, item := range items {
		category := item.CategoryL1
		if item.CategoryL2 != "" {
			category += "/" + item.CategoryL2
		}
		fmt.Fprintf(&b, "\n[%d] %s | %s | %s | %s\n", item.ImpactScore, item.Region, category, item.Status, item.Date)
		b.WriteString(domain.TruncateRunes(item.Title, digestTitleLimit))
		b.WriteByte('\n')
		if item.SummaryTranslated != "" {
			b.WriteString(item.SummaryTranslated)
			b.WriteByte('\n')
		}
		if item.SourceURL != "" {
			b.WriteString(item.SourceURL)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func statusRank(status string) int {
	if rank, ok := digestOrder[status]; ok {
		return rank
	}
	return len(digestOrder)
}

// translationSource picks the text handed to the translator. Summaries that
// merely repeat the title (common for search results) are dropped.
func translationSource(item domain.LabeledItem) string {
	title := strings.TrimSpace(item.Title)
	summary := strings.TrimSpace(item.Summary)

	if title == "" {
		return domain.TruncateRunes(summary, translationLimit)
	}
	titleNorm := normalizeSpace(title)
	summaryNorm := normalizeSpace(summary)
	if summary == "" || strings.HasPrefix(summaryNorm, domain.TruncateRunes(titleNorm, titlePrefixCompare)) {
		return title
	}
	return domain.TruncateRunes(title+"。"+summary, translationLimit)
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
