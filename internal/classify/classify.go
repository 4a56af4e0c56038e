package classify

import (
	"math"
	"sort"

	"github.com/vosslab/webwork-pgml-opl-training-set/pkg/types"
)

// Review threshold: classifications scoring below this are always routed
// to the needs-review bucket regardless of structural signals.
const reviewConfidenceFloor = 0.55

// Classifier maps one file's extraction records to labels, buckets, and
// review routing. The zero value is not usable; call New.
type Classifier struct {
	disciplineRules []DisciplineRule
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithDisciplineRules replaces the default discipline rule table. Rules
// are evaluated in the given order, first match wins.
func WithDisciplineRules(rules []DisciplineRule) Option {
	return func(c *Classifier) {
		if len(rules) > 0 {
			c.disciplineRules = rules
		}
	}
}

// New builds a Classifier with the default rule tables.
func New(opts ...Option) *Classifier {
	c := &Classifier{disciplineRules: DefaultDisciplineRules}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify labels one extraction. Pure: the same extraction always
// produces the same classification.
func (c *Classifier) Classify(ex *types.Extraction, path, relPath string) *types.Classification {
	s := buildSignals(ex)

	var labels []types.TypeLabel
	var reasons []Reason
	for _, rule := range typeRules {
		fired := rule.Match(s)
		if len(fired) == 0 {
			continue
		}
		labels = append(labels, rule.Label)
		reasons = append(reasons, fired...)
	}
	if len(labels) == 0 {
		labels = []types.TypeLabel{types.TypeOther}
		if s.blankCount > 0 && s.inputCount == 0 && s.evaluatorCount == 0 {
			reasons = append(reasons, Reason{"pgml", "blank_markers"})
		} else {
			reasons = append(reasons, Reason{"other", "no_signals"})
		}
	}

	wired := len(ex.Wiring)
	confidence := score(s, labels, reasons, wired)

	unresolved := false
	for _, e := range ex.Evaluators {
		if e.Unresolved {
			unresolved = true
			break
		}
	}

	needsReview := confidence < reviewConfidenceFloor ||
		(wired == 0 && s.ansCallCount >= 2) ||
		unresolved

	cl := &types.Classification{
		Path:         path,
		RelPath:      relPath,
		Types:        sortLabels(labels),
		Reasons:      reasonStrings(reasons),
		Confidence:   confidence,
		NeedsReview:  needsReview,
		EvalCoverage: evalCoverage(s),
		HasWidget:    s.hasWidgets(),
		Discipline:   discipline(c.disciplineRules, ex),
		Subject:      subjectNorm(ex),
		WidgetKinds:  widgetKinds(s),
		EvalSources:  evalSources(ex),
		EvalKinds:    evalKinds(s),
		Macros:       ex.MacroNames(),
		MissingEval:  missingEvalReason(s),
		BlankCount:   s.blankCount,
		AnsCallCount: s.ansCallCount,
		InputCount:   s.totalInputs(),
		WiredCount:   wired,
		PGMLBlocks:   ex.PGMLBlockCount,

		HasRandomization: ex.HasRandomization,
		AssetSignals:     append([]string(nil), ex.AssetSignals...),

		HasSubjectTag: ex.HasTag(types.TagSubject),
		HasChapterTag: ex.HasTag(types.TagChapter),
		HasSectionTag: ex.HasTag(types.TagSection),
		TagStats:      ex.TagStats(),

		Diagnostics: append([]string(nil), ex.Diagnostics...),
	}

	if needsReview {
		if bucket := reviewBucket(s, cl.Types, wired == 0); bucket != "" {
			cl.ReviewBucket = bucket
		} else {
			cl.ReviewBucket = ReviewLowConfidenceMisc
		}
	}
	if cl.HasType(types.TypeOther) {
		cl.OtherBucket = otherBucket(s)
	}
	return cl
}

// score computes the heuristic confidence for a label set. The weights
// are calibrated against corpus spot checks, capped at 0.95 because the
// pipeline never verifies labels against rendered output.
func score(s *signals, labels []types.TypeLabel, reasons []Reason, wired int) float64 {
	v := 0.2

	kinds := map[string]bool{}
	for _, r := range reasons {
		kinds[r.Kind] = true
	}
	if kinds["macro"] && kinds["widget"] {
		v += 0.4
	}
	if kinds["evaluator_or_ctor"] {
		v += 0.2
	}
	if wired > 0 {
		v += 0.1
	}
	if s.ex.PGMLBlockCount > 0 && s.blankCount >= 1 {
		v += 0.05
	}
	if len(labels) >= 2 && !containsLabel(labels, types.TypeOther) {
		v += 0.05
	}
	if v > 0.95 {
		v = 0.95
	}
	return math.Round(v*100) / 100
}

func containsLabel(labels []types.TypeLabel, want types.TypeLabel) bool {
	for _, l := range labels {
		if l == want {
			return true
		}
	}
	return false
}

func sortLabels(labels []types.TypeLabel) []types.TypeLabel {
	seen := map[types.TypeLabel]bool{}
	out := labels[:0]
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func reasonStrings(reasons []Reason) []string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = r.String()
	}
	return out
}

func evalCoverage(s *signals) types.EvalCoverage {
	ans := s.ansCallCount > 0
	pgml := s.payloadCount > 0 || s.starSpecCount > 0
	switch {
	case ans && pgml:
		return types.CoverageBoth
	case ans:
		return types.CoverageAnsOnly
	case pgml:
		return types.CoveragePGMLOnly
	default:
		return types.CoverageNone
	}
}

func widgetKinds(s *signals) []types.WidgetKind {
	kinds := make([]types.WidgetKind, 0, len(s.widgetKindCounts)+1)
	for kind := range s.widgetKindCounts {
		kinds = append(kinds, kind)
	}
	if s.blankCount > 0 {
		kinds = append(kinds, types.WidgetPGMLBlank)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

func evalSources(ex *types.Extraction) []types.EvaluatorSource {
	seen := map[types.EvaluatorSource]bool{}
	var out []types.EvaluatorSource
	for _, e := range ex.Evaluators {
		if !seen[e.Source] {
			seen[e.Source] = true
			out = append(out, e.Source)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func evalKinds(s *signals) []string {
	kinds := make([]string, 0, len(s.evalKindCounts))
	for kind := range s.evalKindCounts {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
