package rules

import (
	"fmt"
	"regexp"
)

// Rule binds a label to its ordered match patterns.
type Rule struct {
	Label    string
	Patterns []*regexp.Regexp
}

// Score sums non-overlapping matches of every pattern over text.
func (r Rule) Score(text string) int {
	total := 0
	for _, re := range r.Patterns {
		total += len(re.FindAllStringIndex(text, -1))
	}
	return total
}

// PatternSet is an ordered list of patterns evaluated for presence only.
type PatternSet []*regexp.Regexp

// Any reports whether at least one pattern matches.
func (s PatternSet) Any(text string) bool {
	_, ok := s.First(text)
	return ok
}

// First returns the source of the first matching pattern.
func (s PatternSet) First(text string) (string, bool) {
	for _, re := range s {
		if re.MatchString(text) {
			return re.String(), true
		}
	}
	return "", false
}

// LabelScore is the total score of one label.
type LabelScore struct {
	Label string
	Score int
}

// Registry is an immutable, ordered set of labelled rules.
type Registry struct {
	rules []Rule
	index map[string]int
}

// NewRegistry keeps rules in the given order. Labels must be unique and non-empty.
func NewRegistry(rules []Rule) (*Registry, error) {
	reg := &Registry{
		rules: make([]Rule, 0, len(rules)),
		index: make(map[string]int, len(rules)),
	}
	for _, rule := range rules {
		if rule.Label == "" {
			return nil, fmt.Errorf("%w: empty label", ErrInvalidPack)
		}
		if _, dup := reg.index[rule.Label]; dup {
			return nil, fmt.Errorf("%w: duplicate label %q", ErrInvalidPack, rule.Label)
		}
		reg.index[rule.Label] = len(reg.rules)
		reg.rules = append(reg.rules, rule)
	}
	return reg, nil
}

// Len returns the number of labels.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.rules)
}

// Labels lists labels in declaration order.
func (r *Registry) Labels() []string {
	if r == nil {
		return nil
	}
	labels := make([]string, len(r.rules))
	for i, rule := range r.rules {
		labels[i] = rule.Label
	}
	return labels
}

// Has reports whether label is declared.
func (r *Registry) Has(label string) bool {
	if r == nil {
		return false
	}
	_, ok := r.index[label]
	return ok
}

// Scores returns the score of every label in declaration order.
func (r *Registry) Scores(text string) []LabelScore {
	if r == nil {
		return nil
	}
	scores := make([]LabelScore, len(r.rules))
	for i, rule := range r.rules {
		scores[i] = LabelScore{Label: rule.Label, Score: rule.Score(text)}
	}
	return scores
}

// Best returns the strictly highest scoring label. The first declared label
// wins ties. It returns ("", 0) when nothing scores.
func (r *Registry) Best(text string) (string, int) {
	if r == nil {
		return "", 0
	}
	bestLabel, bestScore := "", 0
	for _, rule := range r.rules {
		if score := rule.Score(text); score > bestScore {
			bestLabel, bestScore = rule.Label, score
		}
	}
	return bestLabel, bestScore
}

// BestLabel is Best with a fallback for texts that match nothing.
func (r *Registry) BestLabel(text, fallback string) string {
	if label, score := r.Best(text); score > 0 {
		return label
	}
	return fallback
}

// FirstMatch returns the first declared label with any matching pattern.
func (r *Registry) FirstMatch(text string) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, rule := range r.rules {
		if PatternSet(rule.Patterns).Any(text) {
			return rule.Label, true
		}
	}
	return "", false
}
