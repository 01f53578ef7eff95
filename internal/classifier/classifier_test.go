package classifier

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"GameRegMonitor/internal/domain"
	"GameRegMonitor/internal/rules"
)

func newTestClassifier(t *testing.T) *Classifier {
	t.Helper()
	pack, err := rules.Load()
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}
	return New(pack, WithWorkers(2))
}

func TestClassifyKoreanLootBoxLaw(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(t)
	item := c.Classify(domain.RawItem{
		Title:  "South Korea passes game loot box probability disclosure law",
		URL:    "https://example.org/kr-loot-box",
		Date:   "2026-10-01",
		Source: "Korea MOLEG",
	})

	if item.Region != "Korea" {
		t.Fatalf("region = %q, want Korea", item.Region)
	}
	if item.CategoryL1 != "Gameplay Compliance" || item.CategoryL2 != "Loot Box" {
		t.Fatalf("category = %q/%q", item.CategoryL1, item.CategoryL2)
	}
	if item.Status != "In Force" {
		t.Fatalf("status = %q, want In Force", item.Status)
	}
	if item.Tier != domain.TierOfficial {
		t.Fatalf("tier = %q, want official", item.Tier)
	}
	if item.ImpactScore != 3 {
		t.Fatalf("impact = %d, want 3", item.ImpactScore)
	}
	if item.Lang != "en" || item.SourceURL != "https://example.org/kr-loot-box" {
		t.Fatalf("unexpected passthrough fields: %+v", item)
	}
}

func TestDetectRegion(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(t)
	cases := []struct {
		name string
		text string
		hint string
		want string
	}{
		{name: "eu acronym", text: "New EU rules for loot boxes", want: "Europe"},
		{name: "per country not per region", text: "Germany and France follow Japan as Japan tightens rules", want: "Japan"},
		{name: "carve-out region", text: "Hong Kong passes loot box regulation", want: "Hong Kong/Macau/Taiwan"},
		{name: "europe marker", text: "Europe weighs game rules", want: "Europe"},
		{name: "known hint", text: "loot box law update", hint: "Japan", want: "Japan"},
		{name: "unknown hint", text: "loot box law update", hint: "Global", want: "Other"},
		{name: "gamers is not a country", text: "us state passes loot box bill for us gamers", want: "Other"},
		{name: "saudi gamers", text: "saudi gamers face new loot box rules", want: "Middle East/Africa"},
		{name: "empty", text: "", want: "Other"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := c.DetectRegion(tc.text, tc.hint); got != tc.want {
				t.Fatalf("DetectRegion(%q, %q) = %q, want %q", tc.text, tc.hint, got, tc.want)
			}
		})
	}
}

func TestDetectCategory(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(t)
	cases := []struct {
		name   string
		text   string
		wantL1 string
		wantL2 string
	}{
		{name: "default", text: "nothing of note", wantL1: "Content Regulation", wantL2: ""},
		{name: "level-1 without level-2", text: "privacy cookie consent data", wantL1: "Data Privacy", wantL2: ""},
		{name: "level-2 tie goes to first", text: "loot box probability disclosure", wantL1: "Gameplay Compliance", wantL2: "Loot Box"},
		{name: "gdpr", text: "GDPR fine for game studio privacy breach", wantL1: "Data Privacy", wantL2: "GDPR"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			l1, l2 := c.DetectCategory(tc.text)
			if l1 != tc.wantL1 || l2 != tc.wantL2 {
				t.Fatalf("DetectCategory(%q) = %q/%q, want %q/%q", tc.text, l1, l2, tc.wantL1, tc.wantL2)
			}
		})
	}
}

func TestDetectCategoryLevel2BelongsToLevel1(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(t)
	children := map[string]*rules.Registry{}
	for _, cat := range c.pack.Categories {
		children[cat.Name] = cat.Subcategories
	}

	texts := []string{
		"FTC COPPA settlement over children's privacy in mobile games",
		"app store policy change allows sideloading and third-party payments",
		"Korea local agent requirement for foreign game publishers",
		"dark pattern ban and misleading ads in games",
		"age verification and parental controls for minors",
		"refund rules for game subscriptions with auto-renewal",
		"AI act copyright law content moderation",
	}
	for _, text := range texts {
		l1, l2 := c.DetectCategory(text)
		if l2 == "" {
			continue
		}
		if !children[l1].Has(l2) {
			t.Fatalf("level-2 %q is not a child of %q (text %q)", l2, l1, text)
		}
	}
}

func TestDetectStatus(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(t)
	cases := []struct {
		text string
		want string
	}{
		{text: "Draft consultation opens on loot box rules", want: "Draft/Consultation"},
		{text: "FTC fined game maker over loot boxes", want: "Enforcement Action"},
		{text: "Loot box rules amended and repealed", want: "Amended"},
		{text: "Loot box talk", want: "Policy Signal"},
		{text: "", want: "Policy Signal"},
	}

	for _, tc := range cases {
		if got := c.DetectStatus(tc.text); got != tc.want {
			t.Fatalf("DetectStatus(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestResolveTier(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(t)
	cases := map[string]domain.Tier{
		"FTC News":                domain.TierOfficial,
		"IAPP":                    domain.TierLegal,
		"Kotaku":                  domain.TierIndustry,
		"Korea MOLEG":             domain.TierOfficial,
		"Baker McKenzie Insights": domain.TierLegal,
		"Mobile Game News Daily":  domain.TierIndustry,
		"Random Blog":             domain.TierNews,
		"":                        domain.TierNews,
	}

	for source, want := range cases {
		if got := c.ResolveTier(source); got != want {
			t.Fatalf("ResolveTier(%q) = %q, want %q", source, got, want)
		}
	}
}

func TestScoreImpact(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(t)
	cases := []struct {
		status string
		tier   domain.Tier
		want   int
	}{
		{status: "In Force", tier: domain.TierNews, want: 3},
		{status: "Policy Signal", tier: domain.TierOfficial, want: 2},
		{status: "Draft/Consultation", tier: domain.TierLegal, want: 3},
		{status: "In Force", tier: domain.TierLegal, want: 3},
		{status: "Amended", tier: domain.TierOfficial, want: 3},
		{status: "Repealed", tier: domain.TierIndustry, want: 1},
		{status: "Enforcement Action", tier: domain.TierNews, want: 2},
		{status: "Rumour", tier: domain.TierNews, want: 1},
		{status: "Rumour", tier: domain.TierOfficial, want: 2},
	}

	for _, tc := range cases {
		if got := c.ScoreImpact(tc.status, tc.tier); got != tc.want {
			t.Fatalf("ScoreImpact(%q, %q) = %d, want %d", tc.status, tc.tier, got, tc.want)
		}
	}
}

func TestClassifyTruncatesSummary(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(t)
	item := c.Classify(domain.RawItem{
		Title:   "规制",
		Summary: strings.Repeat("界", 650),
		Lang:    "ja",
	})

	if n := utf8.RuneCountInString(item.Summary); n != domain.SummaryLimit {
		t.Fatalf("summary has %d runes, want %d", n, domain.SummaryLimit)
	}
	if item.Lang != "ja" {
		t.Fatalf("lang should pass through, got %q", item.Lang)
	}
	if item.ImpactScore < 1 || item.ImpactScore > 3 {
		t.Fatalf("impact out of range: %d", item.ImpactScore)
	}
}

func TestClassifyAllKeepsOrder(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(t)
	raw := []domain.RawItem{
		{Title: "Japan gacha rules", Source: "IGN"},
		{Title: "EU loot box directive", Source: "FTC News"},
		{Title: "Brazil LGPD game fine", Source: "Lexology"},
	}

	labeled, err := c.ClassifyAll(context.Background(), raw)
	if err != nil {
		t.Fatalf("ClassifyAll: %v", err)
	}
	if len(labeled) != len(raw) {
		t.Fatalf("expected %d items, got %d", len(raw), len(labeled))
	}
	for i := range raw {
		if labeled[i].Title != raw[i].Title {
			t.Fatalf("order changed at %d: %q", i, labeled[i].Title)
		}
	}
	if labeled[0].Region != "Japan" || labeled[1].Region != "Europe" || labeled[2].Region != "South America" {
		t.Fatalf("unexpected regions: %q %q %q", labeled[0].Region, labeled[1].Region, labeled[2].Region)
	}
}

func TestClassifyAllHonoursCancellation(t *testing.T) {
	t.Parallel()

	c := newTestClassifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.ClassifyAll(ctx, []domain.RawItem{{Title: "x"}}); err == nil {
		t.Fatalf("expected context error")
	}
}
