package classify

import (
	"strings"

	"github.com/vosslab/webwork-pgml-opl-training-set/internal/extract"
	"github.com/vosslab/webwork-pgml-opl-training-set/pkg/types"
)

// Review bucket labels, from most to least specific. reviewBucket walks
// them in this order and returns the first that applies.
const (
	ReviewCoverageNoSignals      = "coverage_no_signals"
	ReviewCustomChecker          = "custom_checker"
	ReviewMultipartUnclear       = "multipart_unclear"
	ReviewMacroOnlyWidgetMissing = "macro_only_widget_missing"
	ReviewWidgetNoEvaluator      = "widget_no_evaluator"
	ReviewEvaluatorNoWidget      = "evaluator_no_widget"
	ReviewLowConfidenceMisc      = "low_confidence_misc"
)

// strongWidgetMacroSubstrings mark macros that ship their own widget
// constructors; loading one without any detected widget is suspicious.
var strongWidgetMacroSubstrings = []string{
	"parserradiobuttons",
	"parserpopup",
	"parsercheckbox",
	"parsermatching",
	"parserassignment",
}

func (s *signals) totalInputs() int {
	return s.inputCount + s.blankCount
}

func (s *signals) hasWidgets() bool {
	return s.totalInputs() > 0 || len(s.widgetKindCounts) > 0
}

func (s *signals) hasEvaluators() bool {
	return s.ansCallCount > 0 || s.evaluatorCount > 0
}

func hasStrongWidgetMacro(ex *types.Extraction) bool {
	for name := range ex.Macros {
		low := strings.ToLower(name)
		for _, sub := range strongWidgetMacroSubstrings {
			if strings.Contains(low, sub) {
				return true
			}
		}
	}
	return false
}

// reviewBucket picks the single actionable triage bucket for a record
// flagged needs_review. Returns "" when none of the structural buckets
// applies; the caller substitutes ReviewLowConfidenceMisc.
func reviewBucket(s *signals, labels []types.TypeLabel, wiringEmpty bool) string {
	hasWidgets := s.hasWidgets()
	hasEvaluators := s.hasEvaluators()

	if !hasWidgets && !hasEvaluators {
		return ReviewCoverageNoSignals
	}
	if s.evalKindCounts[types.EvalKindCustom] > 0 {
		return ReviewCustomChecker
	}
	for _, label := range labels {
		if label == types.TypeMultipart {
			if wiringEmpty || !hasEvaluators || s.totalInputs() == 0 {
				return ReviewMultipartUnclear
			}
		}
	}
	if hasStrongWidgetMacro(s.ex) && !hasWidgets {
		return ReviewMacroOnlyWidgetMissing
	}
	if hasWidgets && !hasEvaluators {
		return ReviewWidgetNoEvaluator
	}
	if hasEvaluators && !hasWidgets {
		return ReviewEvaluatorNoWidget
	}
	return ""
}

// Other bucket labels; first match in this order wins.
const (
	OtherAppletLike      = "other_applet_like"
	OtherGraphLike       = "other_graph_like"
	OtherCustomEvaluator = "other_custom_evaluator"
	OtherWidgetlessAns   = "other_widgetless_ans"
	OtherCmpOnly         = "other_cmp_only"
	OtherMarkupNoBlanks  = "other_pgml_present_no_detected_blanks"
	OtherNoSignals       = "other_no_signals"
	OtherUncategorized   = "other_uncategorized"
)

func macroContainsAny(ex *types.Extraction, subs ...string) bool {
	for name := range ex.Macros {
		low := strings.ToLower(name)
		for _, sub := range subs {
			if strings.Contains(low, sub) {
				return true
			}
		}
	}
	return false
}

// otherBucket explains why a record fell through every type rule.
func otherBucket(s *signals) string {
	switch {
	case macroContainsAny(s.ex, "applet", "geogebra", "wwapplet"):
		return OtherAppletLike
	case macroContainsAny(s.ex, "pggraphmacros", "graph"):
		return OtherGraphLike
	case s.evalKindCounts[types.EvalKindCustom] > 0:
		return OtherCustomEvaluator
	case s.ansCallCount > 0 && s.totalInputs() == 0:
		return OtherWidgetlessAns
	case s.evalKindCounts[types.EvalKindCmp] > 0 && s.totalInputs() == 0:
		return OtherCmpOnly
	case s.ex.PGMLBlockCount > 0 && s.blankCount == 0:
		return OtherMarkupNoBlanks
	case s.ansCallCount == 0 && s.totalInputs() == 0 &&
		len(s.widgetKindCounts) == 0 && s.evaluatorCount == 0:
		return OtherNoSignals
	default:
		return OtherUncategorized
	}
}

// Evaluator-missing reason labels, checked in order by missingEvalReason.
const (
	MissingPGMLBlankOnly     = "none_pgml_blank_only"
	MissingCmpPresent        = "none_but_cmp_present"
	MissingAnsUnparsed       = "none_but_ans_present_unparsed"
	MissingNamedAnsPresent   = "none_but_named_ans_present"
	MissingAnsNumToName      = "none_but_ans_num_to_name_present"
	MissingCustomGrader      = "none_but_custom_grader_present"
	MissingAnswerCtorPresent = "none_but_answer_ctor_present"
	MissingTrueNoSignals     = "none_true_no_signals"
)

// missingEvalReason explains a record that produced zero evaluators by
// ranking the raw token signals still present in its code. Returns ""
// when the record has evaluators.
func missingEvalReason(s *signals) string {
	if s.evaluatorCount > 0 {
		return ""
	}
	tok := s.ex.TokenSignals
	switch {
	case s.blankCount > 0:
		return MissingPGMLBlankOnly
	case tok[extract.SignalCmp]:
		return MissingCmpPresent
	case tok[extract.SignalAns]:
		return MissingAnsUnparsed
	case tok[extract.SignalNamedAnsRule] || tok[extract.SignalNamedAns]:
		return MissingNamedAnsPresent
	case tok[extract.SignalAnsNumToName]:
		return MissingAnsNumToName
	case tok[extract.SignalInstallProblemGrader]:
		return MissingCustomGrader
	case tok[extract.SignalAnswerCtor]:
		return MissingAnswerCtorPresent
	default:
		return MissingTrueNoSignals
	}
}
