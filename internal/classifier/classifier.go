// Package classifier assigns region, category, lifecycle status, source tier and
// impact score to relevant news items.
package classifier

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"GameRegMonitor/internal/domain"
	"GameRegMonitor/internal/rules"
)

const defaultWorkers = 4

// Classifier evaluates a compiled rule pack. It holds no mutable state.
type Classifier struct {
	pack    *rules.Pack
	workers int
}

// Option customizes a Classifier.
type Option func(*Classifier)

// WithWorkers bounds ClassifyAll parallelism.
func WithWorkers(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.workers = n
		}
	}
}

// New builds a classifier around pack.
func New(pack *rules.Pack, opts ...Option) *Classifier {
	c := &Classifier{pack: pack, workers: defaultWorkers}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify labels a single item. It never fails: missing text yields defaults.
func (c *Classifier) Classify(item domain.RawItem) domain.LabeledItem {
	text := strings.ToLower(item.Text())

	region := c.DetectRegion(text, item.RegionHint)
	l1, l2 := c.DetectCategory(text)
	status := c.DetectStatus(text)
	tier := c.ResolveTier(item.Source)

	lang := item.Lang
	if lang == "" {
		lang = "en"
	}

	return domain.LabeledItem{
		Region:      region,
		CategoryL1:  l1,
		CategoryL2:  l2,
		Title:       item.Title,
		Date:        item.Date,
		Status:      status,
		Summary:     domain.TruncateRunes(item.Summary, domain.SummaryLimit),
		SourceName:  item.Source,
		SourceURL:   item.URL,
		Lang:        lang,
		Tier:        tier,
		ImpactScore: c.ScoreImpact(status, tier),
	}
}

// ClassifyAll labels items concurrently and keeps input order.
func (c *Classifier) ClassifyAll(ctx context.Context, items []domain.RawItem) ([]domain.LabeledItem, error) {
	out := make([]domain.LabeledItem, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = c.Classify(items[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("classify items: %w", err)
	}
	return out, nil
}

// DetectRegion scores every country, maps the winner to its region and then
// falls back to the Europe marker, a recognized hint and finally the default.
func (c *Classifier) DetectRegion(text, hint string) string {
	text = strings.ToLower(text)
	p := c.pack

	if country, score := p.Countries.Best(text); score > 0 {
		if region, ok := p.CountryRegion[country]; ok {
			return region
		}
	}
	if p.EuropeMarkers.Any(text) {
		return p.EuropeRegion
	}
	if hint != "" && p.IsRegion(hint) {
		return hint
	}
	return p.DefaultRegion
}

// DetectCategory picks the level-1 category with the strictly highest signal
// score and the best level-2 label inside that category only.
func (c *Classifier) DetectCategory(text string) (string, string) {
	text = strings.ToLower(text)

	bestL1, bestL2, bestScore := c.pack.DefaultCategory, "", 0
	for _, cat := range c.pack.Categories {
		score := cat.Signals.Score(text)
		if score <= bestScore {
			continue
		}
		bestL1, bestScore = cat.Name, score
		bestL2, _ = cat.Subcategories.Best(text)
	}
	return bestL1, bestL2
}

// DetectStatus returns the lifecycle status with the highest score.
func (c *Classifier) DetectStatus(text string) string {
	return c.pack.Statuses.BestLabel(strings.ToLower(text), c.pack.DefaultStatus)
}

// ResolveTier looks up the exact source name, then the fuzzy tier groups.
func (c *Classifier) ResolveTier(source string) domain.Tier {
	if tier, ok := c.pack.SourceTiers[source]; ok {
		return tier
	}
	if label, ok := c.pack.TierPatterns.FirstMatch(source); ok {
		return domain.Tier(label)
	}
	return c.pack.DefaultTier
}

// ScoreImpact combines the status base score with the source tier.
func (c *Classifier) ScoreImpact(status string, tier domain.Tier) int {
	base, ok := c.pack.StatusBase[status]
	if !ok {
		base = c.pack.UnknownStatusBase
	}
	return Impact(base, tier)
}

// Impact raises base by one for official sources, and for legal sources
// below the maximum. The result is clamped to 1..3.
func Impact(base int, tier domain.Tier) int {
	switch {
	case tier == domain.TierOfficial:
		base++
	case tier == domain.TierLegal && base < 3:
		base++
	}
	return min(max(base, 1), 3)
}
