package extract

import (
	"regexp"
	"strings"

	"github.com/vosslab/webwork-pgml-opl-training-set/internal/tokenizer"
	"github.com/vosslab/webwork-pgml-opl-training-set/pkg/types"
)

var widgetCallNames = []string{
	"RadioButtons", "parserRadioButtons",
	"PopUp", "parserPopUp",
	"CheckboxList", "parserCheckboxList",
	"Match", "match_list", "matching",
	"Sort", "sortable", "draggableProof", "parserAssignment",
	"ans_rule", "ans_box", "answerRule",
	"NAMED_ANS_RULE", "named_ans_rule",
}

var (
	quotedNameRx = regexp.MustCompile(`['"]([^'"]+)['"]`)
	assignTailRx = regexp.MustCompile(`\$([A-Za-z_]\w*)\s*=\s*$`)
)

func widgetKind(callName string) types.WidgetKind {
	switch callName {
	case "ans_rule", "ans_box", "answerRule", "NAMED_ANS_RULE", "named_ans_rule":
		return types.WidgetBlank
	case "RadioButtons", "parserRadioButtons":
		return types.WidgetRadio
	case "PopUp", "parserPopUp":
		return types.WidgetPopup
	case "CheckboxList", "parserCheckboxList":
		return types.WidgetCheckbox
	case "Match", "match_list", "matching":
		return types.WidgetMatching
	default:
		return types.WidgetOrdering
	}
}

// Widgets finds answer-input constructor calls in the code view. Each
// widget carries a best-effort name: the quoted label for named rules, or
// the variable the call result was assigned to.
func Widgets(codeView string, ix *tokenizer.LineIndex) []types.Widget {
	calls := tokenizer.ScanCalls(codeView, widgetCallNames, ix)
	widgets := make([]types.Widget, 0, len(calls))
	for _, call := range calls {
		name := namedRuleLabel(call)
		if name == "" {
			name = assignmentName(codeView, call)
		}
		widgets = append(widgets, types.Widget{
			Kind: widgetKind(call.Name),
			Name: name,
			Line: call.Line,
		})
	}
	return widgets
}

func namedRuleLabel(call tokenizer.Call) string {
	if call.Name != "NAMED_ANS_RULE" && call.Name != "named_ans_rule" {
		return ""
	}
	m := quotedNameRx.FindStringSubmatch(call.ArgText)
	if m == nil {
		return ""
	}
	return m[1]
}

func assignmentName(text string, call tokenizer.Call) string {
	lineStart := strings.LastIndexByte(text[:call.Start], '\n') + 1
	prefix := text[lineStart:call.Start]
	m := assignTailRx.FindStringSubmatch(prefix)
	if m == nil {
		return ""
	}
	return m[1]
}
