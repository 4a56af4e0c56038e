package extract

import (
	"regexp"

	"github.com/vosslab/webwork-pgml-opl-training-set/pkg/types"
)

var namedRefRx = regexp.MustCompile(`\b(?:named_ans_rule|NAMED_ANS_RULE)\s*\(\s*['"]([^'"]+)['"]`)

// Wire pairs widgets with evaluators. Named references win first; any
// remaining inputs and evaluators are paired 1:1 in order, but only when
// the leftover counts match exactly, so the heuristic never invents a
// pairing it cannot defend.
func Wire(widgets []types.Widget, evaluators []types.Evaluator) []types.Wire {
	var wiring []types.Wire

	nameToWidget := map[string]int{}
	for i, w := range widgets {
		if w.Name != "" {
			if _, ok := nameToWidget[w.Name]; !ok {
				nameToWidget[w.Name] = i
			}
		}
	}

	usedWidgets := map[int]bool{}
	usedEvaluators := map[int]bool{}

	for ei, ev := range evaluators {
		m := namedRefRx.FindStringSubmatch(ev.Expr)
		if m == nil {
			continue
		}
		wi, ok := nameToWidget[m[1]]
		if !ok {
			continue
		}
		wiring = append(wiring, types.Wire{
			WidgetIndex:    wi,
			EvaluatorIndex: ei,
			Method:         types.WireNamed,
		})
		usedWidgets[wi] = true
		usedEvaluators[ei] = true
	}

	var remainingInputs, remainingEvals []int
	for i := range widgets {
		if !usedWidgets[i] {
			remainingInputs = append(remainingInputs, i)
		}
	}
	for i := range evaluators {
		if !usedEvaluators[i] {
			remainingEvals = append(remainingEvals, i)
		}
	}

	if len(remainingInputs) > 0 && len(remainingInputs) == len(remainingEvals) {
		for k := range remainingInputs {
			wiring = append(wiring, types.Wire{
				WidgetIndex:    remainingInputs[k],
				EvaluatorIndex: remainingEvals[k],
				Method:         types.WireOrder,
			})
		}
	}
	return wiring
}
