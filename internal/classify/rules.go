package classify

import "github.com/vosslab/webwork-pgml-opl-training-set/pkg/types"

// Reason is one structured justification emitted by a firing rule.
type Reason struct {
	Kind  string
	Value string
}

func (r Reason) String() string {
	return r.Kind + ":" + r.Value
}

// signals is the classifier's working view of one extraction: the raw
// records reduced to the counts and sets the rules test.
type signals struct {
	ex *types.Extraction

	widgetKindCounts map[types.WidgetKind]int
	evalKindCounts   map[string]int
	ctorCounts       map[string]int

	// inputCount counts explicit input widgets; blankCount counts PGML
	// blank markers separately because the label rules predate markup
	// blanks and must not shift when blanks are folded in.
	inputCount     int
	blankCount     int
	ansCallCount   int
	payloadCount   int
	starSpecCount  int
	evaluatorCount int
}

func buildSignals(ex *types.Extraction) *signals {
	s := &signals{
		ex:               ex,
		widgetKindCounts: map[types.WidgetKind]int{},
		evalKindCounts:   map[string]int{},
		ctorCounts:       map[string]int{},
	}
	for _, w := range ex.Widgets {
		s.widgetKindCounts[w.Kind]++
		s.inputCount++
	}
	for _, e := range ex.Evaluators {
		s.evalKindCounts[e.Kind]++
		s.evaluatorCount++
		switch e.Source {
		case types.EvalSourceAnsCall:
			s.ansCallCount++
		case types.EvalSourcePayload:
			s.payloadCount++
		case types.EvalSourceStarSpec:
			s.starSpecCount++
		}
	}
	for _, a := range ex.Answers {
		s.ctorCounts[a.Ctor]++
	}
	s.blankCount = len(ex.Blanks)
	return s
}

func (s *signals) embeddedNonStringEvaluator() bool {
	for _, e := range s.ex.Evaluators {
		if e.Source == types.EvalSourceAnsCall {
			continue
		}
		if e.Kind != types.EvalKindStrCmp {
			return true
		}
	}
	return false
}

// TypeRule pairs a label with its predicate. Match returns the reasons
// the rule fired, or nil when it does not apply.
type TypeRule struct {
	Label types.TypeLabel
	Match func(s *signals) []Reason
}

// typeRules is evaluated top to bottom; every matching rule contributes
// its label. Order determines reason ordering and is load-bearing for
// report comparability.
var typeRules = []TypeRule{
	{
		Label: types.TypeGraphLike,
		Match: func(s *signals) []Reason {
			var reasons []Reason
			for _, macro := range []string{"PGgraphmacros.pl", "PCCgraphMacros.pl"} {
				if s.ex.HasMacro(macro) {
					reasons = append(reasons, Reason{"macro", macro})
				}
			}
			return reasons
		},
	},
	{
		Label: types.TypeEssay,
		Match: func(s *signals) []Reason {
			if !s.ex.HasMacro("PGessaymacros.pl") {
				return nil
			}
			return []Reason{{"macro", "PGessaymacros.pl"}}
		},
	},
	{
		Label: types.TypeMultipleChoice,
		Match: func(s *signals) []Reason {
			var reasons []Reason
			for _, macro := range []string{
				"parserRadioButtons.pl", "parserPopUp.pl",
				"parserCheckboxList.pl", "PGchoicemacros.pl",
			} {
				if s.ex.HasMacro(macro) {
					reasons = append(reasons, Reason{"macro", macro})
				}
			}
			for _, kind := range []types.WidgetKind{types.WidgetRadio, types.WidgetPopup, types.WidgetCheckbox} {
				if s.widgetKindCounts[kind] > 0 {
					reasons = append(reasons, Reason{"widget", string(kind)})
				}
			}
			for _, kind := range []string{types.EvalKindRadioCmp, types.EvalKindCheckboxCmp, types.EvalKindPopupCmp} {
				if s.evalKindCounts[kind] > 0 {
					reasons = append(reasons, Reason{"evaluator", kind})
				}
			}
			return reasons
		},
	},
	{
		Label: types.TypeAssignmentOrdering,
		Match: func(s *signals) []Reason {
			if s.widgetKindCounts[types.WidgetOrdering] == 0 {
				return nil
			}
			return []Reason{{"widget", string(types.WidgetOrdering)}}
		},
	},
	{
		Label: types.TypeMultipart,
		Match: func(s *signals) []Reason {
			var reasons []Reason
			if s.inputCount >= 2 || s.evaluatorCount >= 2 {
				reasons = append(reasons, Reason{"count", "multipart"})
			}
			if s.ex.HasMacro("parserMultiAnswer.pl") {
				reasons = append(reasons, Reason{"macro", "parserMultiAnswer.pl"})
			}
			if s.ex.HasMultiAnswer {
				reasons = append(reasons, Reason{"multianswer", "MultiAnswer"})
			}
			return reasons
		},
	},
	{
		Label: types.TypeFibWord,
		Match: func(s *signals) []Reason {
			if s.evalKindCounts[types.EvalKindStrCmp] == 0 && s.ctorCounts["String"] == 0 {
				return nil
			}
			return []Reason{{"evaluator_or_ctor", "string"}}
		},
	},
	{
		Label: types.TypeNumericEntry,
		Match: func(s *signals) []Reason {
			if s.evalKindCounts[types.EvalKindNumCmp] > 0 ||
				s.evalKindCounts[types.EvalKindFormulaCmp] > 0 ||
				s.ctorCounts["Real"] > 0 ||
				s.ctorCounts["Formula"] > 0 ||
				s.ctorCounts["Compute"] > 0 {
				return []Reason{{"evaluator_or_ctor", "numeric"}}
			}
			if s.embeddedNonStringEvaluator() {
				return []Reason{{"evaluator_or_ctor", "pgml_embedded"}}
			}
			return nil
		},
	},
}
