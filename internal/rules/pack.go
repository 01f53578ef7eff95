// Package rules loads and compiles the classification rule pack: countries and
// regions, the two-level category taxonomy, lifecycle statuses, source tiers and
// the relevance gate. A compiled Pack is immutable and safe for concurrent use.
package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"GameRegMonitor/internal/domain"
)

//go:embed default_rules.yaml
var embedded []byte

const packVersion = 1

// ErrInvalidPack marks structural problems in a rule pack.
var ErrInvalidPack = errors.New("rulepack: invalid pack")

type rawRule struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

type rawRegion struct {
	Name      string   `yaml:"name"`
	Countries []string `yaml:"countries"`
	Focus     []string `yaml:"focus"`
}

type rawCategory struct {
	Name          string    `yaml:"name"`
	Patterns      []string  `yaml:"patterns"`
	Subcategories []rawRule `yaml:"subcategories"`
}

type rawStatus struct {
	Name     string   `yaml:"name"`
	Base     int      `yaml:"base"`
	Patterns []string `yaml:"patterns"`
}

type rawTierGroup struct {
	Tier     string   `yaml:"tier"`
	Patterns []string `yaml:"patterns"`
}

type rawPack struct {
	Version int `yaml:"version"`
	Regions struct {
		Default      string `yaml:"default"`
		EuropeMarker struct {
			Region   string   `yaml:"region"`
			Patterns []string `yaml:"patterns"`
		} `yaml:"europe_marker"`
		List []rawRegion `yaml:"list"`
	} `yaml:"regions"`
	Countries  []rawRule `yaml:"countries"`
	Categories struct {
		Default string        `yaml:"default"`
		List    []rawCategory `yaml:"list"`
	} `yaml:"categories"`
	Statuses struct {
		Default     string      `yaml:"default"`
		UnknownBase int         `yaml:"unknown_base"`
		List        []rawStatus `yaml:"list"`
	} `yaml:"statuses"`
	Tiers struct {
		Default  string            `yaml:"default"`
		Sources  map[string]string `yaml:"sources"`
		Patterns []rawTierGroup    `yaml:"patterns"`
	} `yaml:"tiers"`
	Relevance struct {
		Jurisdiction struct {
			Strong    []string `yaml:"strong"`
			Weak      []string `yaml:"weak"`
			CarveOuts []string `yaml:"carve_outs"`
		} `yaml:"jurisdiction"`
		Exclusions []string `yaml:"exclusions"`
		Regulatory []string `yaml:"regulatory"`
		Game       []string `yaml:"game"`
	} `yaml:"relevance"`
}

// Region is a monitored macro-region and its member countries.
type Region struct {
	Name      string
	Countries []string
	Focus     []string
}

// Category is a level-1 category with its own signals and level-2 registry.
type Category struct {
	Name          string
	Signals       Rule
	Subcategories *Registry
}

// Jurisdiction holds the mainland-China exclusion rules.
type Jurisdiction struct {
	Strong    PatternSet
	Weak      PatternSet
	CarveOuts PatternSet
}

// Relevance holds the ordered rule sets of the relevance gate.
type Relevance struct {
	Jurisdiction Jurisdiction
	Exclusions   PatternSet
	Regulatory   PatternSet
	Game         PatternSet
}

// Pack is a compiled rule pack.
type Pack struct {
	Version int

	Regions       []Region
	DefaultRegion string
	EuropeRegion  string
	EuropeMarkers PatternSet
	Countries     *Registry
	CountryRegion map[string]string

	Categories      []Category
	DefaultCategory string

	Statuses          *Registry
	StatusBase        map[string]int
	UnknownStatusBase int
	DefaultStatus     string

	SourceTiers  map[string]domain.Tier
	TierPatterns *Registry
	DefaultTier  domain.Tier

	Relevance Relevance

	regionSet map[string]struct{}
}

// IsRegion reports whether name is a declared macro-region.
func (p *Pack) IsRegion(name string) bool {
	_, ok := p.regionSet[name]
	return ok
}

// Load compiles the embedded default pack.
func Load() (*Pack, error) {
	return Parse(embedded)
}

// LoadFile compiles a pack from a YAML file.
func LoadFile(path string) (*Pack, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rulepack: read %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse compiles a pack from YAML bytes.
func Parse(raw []byte) (*Pack, error) {
	var rp rawPack
	if err := yaml.Unmarshal(raw, &rp); err != nil {
		return nil, fmt.Errorf("rulepack: parse yaml: %w", err)
	}
	if rp.Version != packVersion {
		return nil, fmt.Errorf("%w: unsupported version %d (want %d)", ErrInvalidPack, rp.Version, packVersion)
	}

	p := &Pack{Version: rp.Version}
	steps := []func(*rawPack) error{
		p.compileRegions,
		p.compileCategories,
		p.compileStatuses,
		p.compileTiers,
		p.compileRelevance,
	}
	for _, step := range steps {
		if err := step(&rp); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Pack) compileRegions(rp *rawPack) error {
	p.regionSet = make(map[string]struct{}, len(rp.Regions.List))
	p.CountryRegion = make(map[string]string)
	for _, r := range rp.Regions.List {
		if r.Name == "" {
			return fmt.Errorf("%w: region without name", ErrInvalidPack)
		}
		if _, dup := p.regionSet[r.Name]; dup {
			return fmt.Errorf("%w: duplicate region %q", ErrInvalidPack, r.Name)
		}
		p.regionSet[r.Name] = struct{}{}
		for _, country := range r.Countries {
			if prev, taken := p.CountryRegion[country]; taken {
				return fmt.Errorf("%w: country %q listed in %q and %q", ErrInvalidPack, country, prev, r.Name)
			}
			p.CountryRegion[country] = r.Name
		}
		p.Regions = append(p.Regions, Region{Name: r.Name, Countries: r.Countries, Focus: r.Focus})
	}

	if rp.Regions.Default == "" {
		return fmt.Errorf("%w: missing default region", ErrInvalidPack)
	}
	p.DefaultRegion = rp.Regions.Default

	p.EuropeRegion = rp.Regions.EuropeMarker.Region
	if !p.IsRegion(p.EuropeRegion) {
		return fmt.Errorf("%w: europe marker region %q is not declared", ErrInvalidPack, p.EuropeRegion)
	}
	markers, err := compileAll("europe marker", rp.Regions.EuropeMarker.Patterns)
	if err != nil {
		return err
	}
	p.EuropeMarkers = markers

	countries, err := compileRules("country", rp.Countries)
	if err != nil {
		return err
	}
	p.Countries, err = NewRegistry(countries)
	if err != nil {
		return fmt.Errorf("countries: %w", err)
	}
	return nil
}

func (p *Pack) compileCategories(rp *rawPack) error {
	seen := map[string]struct{}{}
	for _, c := range rp.Categories.List {
		if c.Name == "" {
			return fmt.Errorf("%w: category without name", ErrInvalidPack)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidPack, c.Name)
		}
		seen[c.Name] = struct{}{}

		signals, err := compileAll("category "+c.Name, c.Patterns)
		if err != nil {
			return err
		}
		subRules, err := compileRules("subcategory of "+c.Name, c.Subcategories)
		if err != nil {
			return err
		}
		subs, err := NewRegistry(subRules)
		if err != nil {
			return fmt.Errorf("category %s: %w", c.Name, err)
		}
		p.Categories = append(p.Categories, Category{
			Name:          c.Name,
			Signals:       Rule{Label: c.Name, Patterns: signals},
			Subcategories: subs,
		})
	}
	if _, ok := seen[rp.Categories.Default]; !ok {
		return fmt.Errorf("%w: default category %q is not declared", ErrInvalidPack, rp.Categories.Default)
	}
	p.DefaultCategory = rp.Categories.Default
	return nil
}

func (p *Pack) compileStatuses(rp *rawPack) error {
	rules := make([]Rule, 0, len(rp.Statuses.List))
	p.StatusBase = make(map[string]int, len(rp.Statuses.List))
	for _, s := range rp.Statuses.List {
		if s.Base < 1 || s.Base > 3 {
			return fmt.Errorf("%w: status %q base %d outside 1..3", ErrInvalidPack, s.Name, s.Base)
		}
		patterns, err := compileAll("status "+s.Name, s.Patterns)
		if err != nil {
			return err
		}
		rules = append(rules, Rule{Label: s.Name, Patterns: patterns})
		p.StatusBase[s.Name] = s.Base
	}
	reg, err := NewRegistry(rules)
	if err != nil {
		return fmt.Errorf("statuses: %w", err)
	}
	if !reg.Has(rp.Statuses.Default) {
		return fmt.Errorf("%w: default status %q is not declared", ErrInvalidPack, rp.Statuses.Default)
	}
	p.Statuses = reg
	p.DefaultStatus = rp.Statuses.Default

	p.UnknownStatusBase = rp.Statuses.UnknownBase
	if p.UnknownStatusBase == 0 {
		p.UnknownStatusBase = 1
	}
	if p.UnknownStatusBase < 1 || p.UnknownStatusBase > 3 {
		return fmt.Errorf("%w: unknown status base %d outside 1..3", ErrInvalidPack, p.UnknownStatusBase)
	}
	return nil
}

func (p *Pack) compileTiers(rp *rawPack) error {
	def, ok := domain.ParseTier(rp.Tiers.Default)
	if !ok {
		return fmt.Errorf("%w: unknown default tier %q", ErrInvalidPack, rp.Tiers.Default)
	}
	p.DefaultTier = def

	p.SourceTiers = make(map[string]domain.Tier, len(rp.Tiers.Sources))
	for source, name := range rp.Tiers.Sources {
		tier, ok := domain.ParseTier(name)
		if !ok {
			return fmt.Errorf("%w: source %q has unknown tier %q", ErrInvalidPack, source, name)
		}
		p.SourceTiers[source] = tier
	}

	rules := make([]Rule, 0, len(rp.Tiers.Patterns))
	for _, g := range rp.Tiers.Patterns {
		tier, ok := domain.ParseTier(g.Tier)
		if !ok {
			return fmt.Errorf("%w: unknown tier group %q", ErrInvalidPack, g.Tier)
		}
		patterns, err := compileAll("tier "+g.Tier, g.Patterns)
		if err != nil {
			return err
		}
		rules = append(rules, Rule{Label: string(tier), Patterns: patterns})
	}
	reg, err := NewRegistry(rules)
	if err != nil {
		return fmt.Errorf("tiers: %w", err)
	}
	p.TierPatterns = reg
	return nil
}

func (p *Pack) compileRelevance(rp *rawPack) error {
	rel := rp.Relevance
	sets := []struct {
		name string
		raw  []string
		dst  *PatternSet
	}{
		{"jurisdiction strong", rel.Jurisdiction.Strong, &p.Relevance.Jurisdiction.Strong},
		{"jurisdiction weak", rel.Jurisdiction.Weak, &p.Relevance.Jurisdiction.Weak},
		{"jurisdiction carve-out", rel.Jurisdiction.CarveOuts, &p.Relevance.Jurisdiction.CarveOuts},
		{"exclusion", rel.Exclusions, &p.Relevance.Exclusions},
		{"regulatory signal", rel.Regulatory, &p.Relevance.Regulatory},
		{"game signal", rel.Game, &p.Relevance.Game},
	}
	for _, s := range sets {
		compiled, err := compileAll(s.name, s.raw)
		if err != nil {
			return err
		}
		*s.dst = compiled
	}
	return nil
}

func compileRules(kind string, raw []rawRule) ([]Rule, error) {
	rules := make([]Rule, 0, len(raw))
	for _, r := range raw {
		patterns, err := compileAll(kind+" "+r.Name, r.Patterns)
		if err != nil {
			return nil, err
		}
		rules = append(rules, Rule{Label: r.Name, Patterns: patterns})
	}
	return rules, nil
}

func compileAll(owner string, raw []string) ([]*regexp.Regexp, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s has no patterns", ErrInvalidPack, owner)
	}
	compiled := make([]*regexp.Regexp, 0, len(raw))
	for _, expr := range raw {
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			return nil, fmt.Errorf("rulepack: compile %q for %s: %w", expr, owner, err)
		}
		if re.MatchString("") {
			return nil, fmt.Errorf("%w: pattern %q for %s matches empty text", ErrInvalidPack, expr, owner)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}
