package classify

import (
	"strings"

	"github.com/vosslab/webwork-pgml-opl-training-set/pkg/types"
)

// Discipline bucket names for files without a usable subject tag.
const (
	DisciplineUnclassified = "unclassified"
	DisciplineNone         = "none"
)

// DisciplineRule maps normalized subject text to a discipline bucket when
// any of its substrings occurs. Rules are evaluated in order, first match
// wins, so specific disciplines must precede mathematics, whose vocabulary
// ("statistics and probability" is a math DBsubject, for example) would
// otherwise swallow them.
type DisciplineRule struct {
	Name       string   `yaml:"name"`
	Substrings []string `yaml:"substrings"`
}

// DefaultDisciplineRules is the corpus-calibrated rule table. The order
// and substrings are heuristics tuned against OPL subject tags, not
// structural invariants; deployments can override them in configuration.
var DefaultDisciplineRules = []DisciplineRule{
	{Name: "statistics", Substrings: []string{"statistic", "probability", "biostat"}},
	{Name: "computer_science", Substrings: []string{"computer science", "computing", "programming", "algorithm"}},
	{Name: "physics", Substrings: []string{"physic", "astronomy", "optics", "electricity", "magnetism", "thermodynamic"}},
	{Name: "chemistry", Substrings: []string{"chemistry", "chemical", "stoichiometry"}},
	{Name: "biology", Substrings: []string{"biology", "biochemistry", "genetics", "life science"}},
	{Name: "economics", Substrings: []string{"econom", "finance", "financial"}},
	{Name: "engineering", Substrings: []string{"engineering", "statics", "circuit"}},
	{Name: "mathematics", Substrings: []string{
		"math", "algebra", "calculus", "geometry", "trigonometry", "precalc",
		"arithmetic", "number theory", "linear", "differential equation",
		"discrete", "logic", "set theory", "combinatorics", "analysis",
		"operations research",
	}},
}

// DisciplineOrder is the fixed report order for discipline buckets.
var DisciplineOrder = []string{
	"mathematics", "statistics", "physics", "chemistry", "biology",
	"computer_science", "economics", "engineering",
	DisciplineUnclassified, DisciplineNone,
}

// discipline resolves the bucket for an extraction's subject tag.
func discipline(rules []DisciplineRule, ex *types.Extraction) string {
	tag := ex.SubjectTag()
	if tag == nil || tag.Norm == "" {
		return DisciplineNone
	}
	for _, rule := range rules {
		for _, sub := range rule.Substrings {
			if strings.Contains(tag.Norm, sub) {
				return rule.Name
			}
		}
	}
	return DisciplineUnclassified
}

// subjectNorm returns the normalized subject text, or "" when untagged.
func subjectNorm(ex *types.Extraction) string {
	if tag := ex.SubjectTag(); tag != nil {
		return tag.Norm
	}
	return ""
}
