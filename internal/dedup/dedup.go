// Package dedup drops repeated news items by normalized title.
package dedup

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"GameRegMonitor/internal/domain"
)

// TitleKey folds case, normalizes to NFC and collapses whitespace runs.
func TitleKey(title string) string {
	chain := transform.Chain(norm.NFC, cases.Fold())
	folded, _, err := transform.String(chain, title)
	if err != nil {
		folded = strings.ToLower(title)
	}
	return strings.Join(strings.Fields(folded), " ")
}

// Deduplicate keeps the first item for every title key, preserving order.
// Items whose key is empty are dropped.
func Deduplicate(items []domain.RawItem) []domain.RawItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]domain.RawItem, 0, len(items))
	for _, item := range items {
		key := TitleKey(item.Title)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
