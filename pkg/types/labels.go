package types

import "fmt"

// TypeLabel is one problem-type tag. Labels are multi-valued per file.
type TypeLabel string

const (
	TypeNumericEntry       TypeLabel = "numeric_entry"
	TypeMultipleChoice     TypeLabel = "multiple_choice"
	TypeMultipart          TypeLabel = "multipart"
	TypeGraphLike          TypeLabel = "graph_like"
	TypeAssignmentOrdering TypeLabel = "assignment_ordering"
	TypeFibWord            TypeLabel = "fib_word"
	TypeEssay              TypeLabel = "essay"
	TypeOther              TypeLabel = "other"
)

// AllTypeLabels lists every label in canonical report order.
var AllTypeLabels = []TypeLabel{
	TypeNumericEntry,
	TypeMultipleChoice,
	TypeMultipart,
	TypeGraphLike,
	TypeAssignmentOrdering,
	TypeFibWord,
	TypeEssay,
	TypeOther,
}

// EvalCoverage says which evaluator declaration styles a file uses.
type EvalCoverage string

const (
	CoverageNone     EvalCoverage = "none"
	CoverageAnsOnly  EvalCoverage = "ans_only"
	CoveragePGMLOnly EvalCoverage = "pgml_only"
	CoverageBoth     EvalCoverage = "both"
)

// AllEvalCoverages lists every coverage bucket in canonical report order.
var AllEvalCoverages = []EvalCoverage{
	CoverageNone,
	CoverageAnsOnly,
	CoveragePGMLOnly,
	CoverageBoth,
}

// AllWidgetKinds lists every widget kind in canonical report order.
var AllWidgetKinds = []WidgetKind{
	WidgetBlank,
	WidgetPGMLBlank,
	WidgetRadio,
	WidgetPopup,
	WidgetCheckbox,
	WidgetMatching,
	WidgetOrdering,
}

// AllEvalSources lists every evaluator source in canonical report order.
var AllEvalSources = []EvaluatorSource{
	EvalSourceAnsCall,
	EvalSourcePayload,
	EvalSourceStarSpec,
}

// CoverageKey builds the combined widget x evaluator coverage bucket key.
func CoverageKey(hasWidget bool, cov EvalCoverage) string {
	w := "none"
	if hasWidget {
		w = "some"
	}
	return fmt.Sprintf("widgets=%s,eval=%s", w, cov)
}

// AllCoverageKeys lists every combined coverage bucket in report order.
func AllCoverageKeys() []string {
	keys := make([]string, 0, 2*len(AllEvalCoverages))
	for _, hasWidget := range []bool{false, true} {
		for _, cov := range AllEvalCoverages {
			keys = append(keys, CoverageKey(hasWidget, cov))
		}
	}
	return keys
}

// CountBucket buckets a non-negative count into a fixed histogram key.
func CountBucket(n int) string {
	switch {
	case n <= 4:
		return fmt.Sprintf("%d", n)
	case n <= 9:
		return "5-9"
	case n <= 19:
		return "10-19"
	default:
		return "20+"
	}
}

// AllCountBuckets lists every count-histogram bucket in ascending order.
var AllCountBuckets = []string{"0", "1", "2", "3", "4", "5-9", "10-19", "20+"}

// ConfidenceBin buckets a confidence score into a 0.1-wide bin key such as
// "0.5-0.6". Scores are clamped to [0, 1).
func ConfidenceBin(c float64) string {
	if c < 0 {
		c = 0
	}
	if c >= 1 {
		c = 0.999
	}
	lo := int(c * 10)
	return fmt.Sprintf("%.1f-%.1f", float64(lo)/10, float64(lo+1)/10)
}

// AllConfidenceBins lists every confidence bin in ascending order.
func AllConfidenceBins() []string {
	bins := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		bins = append(bins, fmt.Sprintf("%.1f-%.1f", float64(i)/10, float64(i+1)/10))
	}
	return bins
}
